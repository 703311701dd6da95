package invite

import (
	"strings"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
)

// Status represents the status of a lesson invite
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Invite is a lesson slot proposed by a teacher to a student
type Invite struct {
	ID          int64
	TeacherID   int64
	StudentID   int64
	ScheduledAt time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InviteWithDetails carries the invite plus display data from the identity lookup.
// Teacher and Student are nil when the lookup has no entry for the id.
type InviteWithDetails struct {
	Invite
	Teacher *directory.Person
	Student *directory.Person
}

// IsUpcoming reports whether the lesson starts strictly after now.
func (i *Invite) IsUpcoming(now time.Time) bool {
	return i.ScheduledAt.After(now)
}

// NormalizeTime returns t in UTC truncated to milliseconds, the precision every store keeps.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ListFilter restricts a list query. Nil fields are not filtered on.
type ListFilter struct {
	StudentID *int64
	Status    *Status
}

// ParseStatusFilter turns a raw ?status= value into a filter. Empty or "all" (any case) means no filter;
// any other value is matched exactly.
func ParseStatusFilter(raw string) *Status {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "all") {
		return nil
	}
	status := Status(value)
	return &status
}
