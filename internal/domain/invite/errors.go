package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/validator"
)

var (
	ErrInvalidInviteID       = errors.New("invite id must be a positive integer")
	ErrInvalidStudentID      = errors.New("student id must be a positive integer")
	ErrInvalidStatus         = errors.New("status must be either accepted or rejected")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteAlreadyExists   = errors.New("invite already exists for this student/time from this teacher")
	ErrLessonInPast          = errors.New("cannot accept a lesson in the past")
	ErrInviteAlreadyRejected = errors.New("cannot accept an invite that was rejected")
	ErrInviteAlreadyAccepted = errors.New("cannot reject an invite that was accepted")
	ErrStudentAlreadyBooked  = errors.New("student already has an accepted upcoming lesson")
	ErrStoreUnavailable      = errors.New("invite store unavailable")
)

// ConflictError reports the accepted future invite that blocks an acceptance.
type ConflictError struct {
	InviteID    int64
	ScheduledAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: invite %d at %s", ErrStudentAlreadyBooked.Error(), e.InviteID, e.ScheduledAt.UTC().Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error {
	return ErrStudentAlreadyBooked
}

// Kind is the failure class a caller reacts to.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Retryable reports whether the caller may safely retry the operation.
func (k Kind) Retryable() bool {
	return k == KindUnavailable
}

// KindOf classifies err. Nil yields the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindInvalidArgument
	}

	switch {
	case errors.Is(err, ErrInvalidInviteID), errors.Is(err, ErrInvalidStudentID), errors.Is(err, ErrInvalidStatus):
		return KindInvalidArgument
	case errors.Is(err, ErrInviteNotFound):
		return KindNotFound
	case errors.Is(err, ErrLessonInPast),
		errors.Is(err, ErrInviteAlreadyRejected),
		errors.Is(err, ErrInviteAlreadyAccepted):
		return KindInvalidState
	case errors.Is(err, ErrInviteAlreadyExists), errors.Is(err, ErrStudentAlreadyBooked):
		return KindConflict
	case errors.Is(err, ErrStoreUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
