package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/config"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	appHTTP "github.com/EhsanSarboukh/Lesson-Invites-Project/internal/handler/http"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/audit"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/clock"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/database"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/sse"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/repository/postgresql"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/repository/sqlite"
	directoryService "github.com/EhsanSarboukh/Lesson-Invites-Project/internal/service/directory"
	inviteService "github.com/EhsanSarboukh/Lesson-Invites-Project/internal/service/invite"
	"github.com/redis/go-redis/v9"
)

type storage struct {
	tx        invite.Transactor
	invites   invite.InviteRepository
	directory directory.DirectoryRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer store.close()

	redisClient := connectRedis(ctx, cfg.Directory.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	hub := sse.NewHub()
	fileSink := audit.NewFileSink(audit.FileConfig{
		Path:       cfg.Audit.Path,
		MaxSizeMB:  cfg.Audit.MaxSizeMB,
		MaxBackups: cfg.Audit.MaxBackups,
	})
	defer fileSink.Close()
	sink := audit.Multi{fileSink, audit.NewLogSink(logger), audit.NewHubSink(hub)}

	lookup := directoryService.NewCachedLookup(redisClient, store.directory, cfg.Directory.CacheTTL)
	dirSvc := directoryService.NewDirectoryService(store.directory, lookup)
	invSvc := inviteService.NewInviteService(store.tx, store.invites, dirSvc, sink, clock.New())

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Logger: logger, AllowedOrigins: cfg.App.AllowedOrigins},
		appHTTP.NewInviteHandler(invSvc, hub),
		appHTTP.NewDirectoryHandler(dirSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Type {
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgresql.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &storage{
			tx:        postgresql.NewTransactor(db),
			invites:   postgresql.NewInviteRepository(db),
			directory: postgresql.NewDirectoryRepository(db),
			close:     db.Close,
		}, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &storage{
			tx:        store,
			invites:   sqlite.NewInviteRepository(store),
			directory: sqlite.NewDirectoryRepository(store),
			close:     func() { _ = store.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

// connectRedis returns nil when no URL is configured or Redis is unreachable; lookups then read the store.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("invalid REDIS_URL, running without directory cache", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not available, running without directory cache", "error", err)
		_ = client.Close()
		return nil
	}

	slog.Info("redis connected")
	return client
}
