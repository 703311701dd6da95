package invite

import (
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/validator"
)

// CreateInviteRequest - POST /invites
type CreateInviteRequest struct {
	TeacherID   int64  `json:"teacherId"`
	StudentID   int64  `json:"studentId"`
	ScheduledAt string `json:"scheduledAt"`
}

func (r *CreateInviteRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsPositiveID(r.TeacherID) {
		errs = append(errs, validator.ValidationError{
			Field:   "teacherId",
			Message: "teacherId must be a positive integer",
		})
	}

	if !validator.IsPositiveID(r.StudentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "studentId",
			Message: "studentId must be a positive integer",
		})
	}

	if validator.IsEmpty(r.ScheduledAt) {
		errs = append(errs, validator.ValidationError{
			Field:   "scheduledAt",
			Message: "scheduledAt is required",
		})
	} else if _, ok := validator.IsValidDateTime(r.ScheduledAt); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "scheduledAt",
			Message: "scheduledAt must be an ISO-8601 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ScheduledTime returns the normalized lesson start. Call after Validate.
func (r *CreateInviteRequest) ScheduledTime() time.Time {
	t, _ := validator.IsValidDateTime(r.ScheduledAt)
	return NormalizeTime(t)
}

// RespondRequest - POST /invites/respond/{id}
type RespondRequest struct {
	InviteID int64  `json:"-"` // From Chi URL param
	Status   string `json:"status"`
}

func (r *RespondRequest) Validate() error {
	if !validator.IsPositiveID(r.InviteID) {
		return ErrInvalidInviteID
	}
	switch Status(r.Status) {
	case StatusAccepted, StatusRejected:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// PersonResponse is the enrichment attached to an invite
type PersonResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InviteResponse - the invite shape returned by every endpoint
type InviteResponse struct {
	ID          int64           `json:"id"`
	TeacherID   int64           `json:"teacherId"`
	StudentID   int64           `json:"studentId"`
	ScheduledAt string          `json:"scheduledAt"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Teacher     *PersonResponse `json:"teacher"`
	Student     *PersonResponse `json:"student"`
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t the way API responses carry timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// NewInviteResponse converts an invite without enrichment.
func NewInviteResponse(inv Invite) InviteResponse {
	return InviteResponse{
		ID:          inv.ID,
		TeacherID:   inv.TeacherID,
		StudentID:   inv.StudentID,
		ScheduledAt: FormatTime(inv.ScheduledAt),
		Status:      string(inv.Status),
		CreatedAt:   FormatTime(inv.CreatedAt),
		UpdatedAt:   FormatTime(inv.UpdatedAt),
	}
}

// NewInviteDetailsResponse converts an enriched invite.
func NewInviteDetailsResponse(inv InviteWithDetails) InviteResponse {
	resp := NewInviteResponse(inv.Invite)
	resp.Teacher = newPersonResponse(inv.Teacher)
	resp.Student = newPersonResponse(inv.Student)
	return resp
}

func newPersonResponse(p *directory.Person) *PersonResponse {
	if p == nil {
		return nil
	}
	return &PersonResponse{ID: p.ID, Name: p.Name, Email: p.Email}
}
