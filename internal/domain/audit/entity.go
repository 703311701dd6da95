package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind names a lifecycle event
type Kind string

const (
	KindSent         Kind = "SENT"
	KindAccepted     Kind = "ACCEPTED"
	KindRejected     Kind = "REJECTED"
	KindAutoRejected Kind = "AUTO-REJECTED"
)

// Event is one append-only audit record
type Event struct {
	ID          string
	OccurredAt  time.Time
	Kind        Kind
	InviteID    int64
	TeacherID   int64
	StudentID   int64
	ScheduledAt time.Time

	// Set on AUTO-REJECTED only: the ids rejected because InviteID was accepted.
	RejectedIDs []int64
}

// String renders the log.txt line, without the trailing newline.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s", e.OccurredAt.UTC().Format(time.RFC3339Nano), e.Kind)

	if e.Kind == KindAutoRejected {
		fmt.Fprintf(&b, " student_id=%d scheduled_at=%s due_to_accept=%d rejected_ids=%s",
			e.StudentID, e.ScheduledAt.UTC().Format(time.RFC3339Nano), e.InviteID, joinIDs(e.RejectedIDs))
		return b.String()
	}

	fmt.Fprintf(&b, " invite_id=%d teacher_id=%d student_id=%d scheduled_at=%s",
		e.InviteID, e.TeacherID, e.StudentID, e.ScheduledAt.UTC().Format(time.RFC3339Nano))
	return b.String()
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
