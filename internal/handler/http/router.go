package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions carries the cross-cutting settings of the HTTP surface
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, inviteHandler InviteHandler, directoryHandler DirectoryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/invites", func(r chi.Router) {
			r.Get("/", inviteHandler.List)
			r.Post("/", inviteHandler.Create)
			r.Post("/create", inviteHandler.Create)
			r.Post("/respond/{id}", inviteHandler.Respond)

			r.Route("/student/{id}", func(r chi.Router) {
				r.Get("/", inviteHandler.ListForStudent)
				r.Get("/events", inviteHandler.Stream)
			})
		})

		r.Get("/teachers", directoryHandler.ListTeachers)
		r.Get("/students", directoryHandler.ListStudents)
	})

	return r
}

// NewLogger builds the JSON logger shared by request logging and the application.
func NewLogger(out io.Writer, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "lesson-invites"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)
}
