package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch invite.KindOf(err) {
	case invite.KindInvalidArgument:
		BadRequest(w, rootMessage(err), nil)
	case invite.KindNotFound:
		NotFound(w, "Invite not found")
	case invite.KindInvalidState:
		InvalidState(w, rootMessage(err))
	case invite.KindConflict:
		var conflict *invite.ConflictError
		if errors.As(err, &conflict) {
			Conflict(w, invite.ErrStudentAlreadyBooked.Error(), map[string]string{
				"inviteId":    strconv.FormatInt(conflict.InviteID, 10),
				"scheduledAt": invite.FormatTime(conflict.ScheduledAt),
			})
			return
		}
		Conflict(w, rootMessage(err), nil)
	case invite.KindUnavailable:
		slog.Warn("store unavailable", "error", err)
		ServiceUnavailable(w, "Service temporarily unavailable, please retry")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// rootMessage returns the message of the domain sentinel err wraps, without the wrapping context.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		invite.ErrInvalidInviteID,
		invite.ErrInvalidStudentID,
		invite.ErrInvalidStatus,
		invite.ErrLessonInPast,
		invite.ErrInviteAlreadyRejected,
		invite.ErrInviteAlreadyAccepted,
		invite.ErrInviteAlreadyExists,
		invite.ErrStudentAlreadyBooked,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
