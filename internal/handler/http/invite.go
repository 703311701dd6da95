package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/handler/http/response"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/sse"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type InviteHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Respond(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListForStudent(w http.ResponseWriter, r *http.Request)

	// SSE
	Stream(w http.ResponseWriter, r *http.Request)
}

type inviteHandlerImpl struct {
	inviteService invite.InviteService
	hub           *sse.Hub
	keepalive     time.Duration
}

// NewInviteHandler creates a new invite handler. hub feeds the per-student event stream.
func NewInviteHandler(inviteService invite.InviteService, hub *sse.Hub) InviteHandler {
	return &inviteHandlerImpl{
		inviteService: inviteService,
		hub:           hub,
		keepalive:     30 * time.Second,
	}
}

// Create implements InviteHandler.
func (h *inviteHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req invite.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.inviteService.CreateInvite(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invite sent", invite.NewInviteResponse(created))
}

// Respond implements InviteHandler.
func (h *inviteHandlerImpl) Respond(w http.ResponseWriter, r *http.Request) {
	var req invite.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	// An unparsable id stays zero and fails validation.
	req.InviteID, _ = validator.ParseID(chi.URLParam(r, "id"))

	updated, err := h.inviteService.RespondToInvite(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Invite %s", updated.Status), invite.NewInviteResponse(updated))
}

// List implements InviteHandler.
func (h *inviteHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	invites, err := h.inviteService.ListInvites(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeInviteList(w, invites)
}

// ListForStudent implements InviteHandler.
func (h *inviteHandlerImpl) ListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.HandleError(w, invite.ErrInvalidStudentID)
		return
	}

	invites, err := h.inviteService.ListInvitesForStudent(r.Context(), studentID, r.URL.Query().Get("status"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeInviteList(w, invites)
}

func writeInviteList(w http.ResponseWriter, invites []invite.InviteWithDetails) {
	data := make([]invite.InviteResponse, len(invites))
	for i, inv := range invites {
		data[i] = invite.NewInviteDetailsResponse(inv)
	}
	response.SuccessWithMeta(w, data, &response.Meta{Total: len(data)})
}

// Stream handles the SSE connection carrying one student's invite events
func (h *inviteHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	studentID, ok := validator.ParseID(chi.URLParam(r, "id"))
	if !ok {
		response.HandleError(w, invite.ErrInvalidStudentID)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(studentID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"studentId\":%d}\n\n", studentID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
