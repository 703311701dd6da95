package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/audit"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/clock"
	"github.com/google/uuid"
)

type inviteService struct {
	tx     invite.Transactor
	repo   invite.InviteRepository
	lookup directory.Lookup
	sink   audit.Sink
	clock  clock.Clock
}

// NewInviteService creates the invite lifecycle manager.
func NewInviteService(tx invite.Transactor, repo invite.InviteRepository, lookup directory.Lookup, sink audit.Sink, clk clock.Clock) invite.InviteService {
	return &inviteService{
		tx:     tx,
		repo:   repo,
		lookup: lookup,
		sink:   sink,
		clock:  clk,
	}
}

// CreateInvite implements invite.InviteService.
func (s *inviteService) CreateInvite(ctx context.Context, req invite.CreateInviteRequest) (invite.Invite, error) {
	if err := req.Validate(); err != nil {
		return invite.Invite{}, err
	}

	scheduledAt := req.ScheduledTime()
	var created invite.Invite

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockStudent(txCtx, req.StudentID); err != nil {
			return err
		}

		_, err := s.repo.GetByTriple(txCtx, req.TeacherID, req.StudentID, scheduledAt)
		if err == nil {
			return invite.ErrInviteAlreadyExists
		}
		if !errors.Is(err, invite.ErrInviteNotFound) {
			return fmt.Errorf("failed to check existing invite: %w", err)
		}

		now := invite.NormalizeTime(s.clock.Now())
		created, err = s.repo.Create(txCtx, invite.Invite{
			TeacherID:   req.TeacherID,
			StudentID:   req.StudentID,
			ScheduledAt: scheduledAt,
			Status:      invite.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to create invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return invite.Invite{}, err
	}

	s.emit(ctx, eventFor(audit.KindSent, created))
	return created, nil
}

// RespondToInvite implements invite.InviteService.
func (s *inviteService) RespondToInvite(ctx context.Context, req invite.RespondRequest) (invite.Invite, error) {
	if err := req.Validate(); err != nil {
		return invite.Invite{}, err
	}

	if invite.Status(req.Status) == invite.StatusAccepted {
		return s.accept(ctx, req.InviteID)
	}
	return s.reject(ctx, req.InviteID)
}

func (s *inviteService) reject(ctx context.Context, id int64) (invite.Invite, error) {
	var updated invite.Invite

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.lockedInvite(txCtx, id)
		if err != nil {
			return err
		}

		if current.Status == invite.StatusAccepted {
			return invite.ErrInviteAlreadyAccepted
		}

		updated, err = s.repo.UpdateStatus(txCtx, id, invite.StatusRejected, invite.NormalizeTime(s.clock.Now()))
		if err != nil {
			return fmt.Errorf("failed to reject invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return invite.Invite{}, err
	}

	s.emit(ctx, eventFor(audit.KindRejected, updated))
	return updated, nil
}

func (s *inviteService) accept(ctx context.Context, id int64) (invite.Invite, error) {
	var (
		accepted    invite.Invite
		rejectedIDs []int64
		changed     bool
	)

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.lockedInvite(txCtx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if !current.IsUpcoming(now) {
			return invite.ErrLessonInPast
		}

		booked, err := s.repo.FindFutureAccepted(txCtx, current.StudentID, current.ID, now)
		if err == nil {
			return &invite.ConflictError{InviteID: booked.ID, ScheduledAt: booked.ScheduledAt}
		}
		if !errors.Is(err, invite.ErrInviteNotFound) {
			return fmt.Errorf("failed to check accepted invites: %w", err)
		}

		switch current.Status {
		case invite.StatusRejected:
			return invite.ErrInviteAlreadyRejected
		case invite.StatusAccepted:
			accepted = current
			return nil
		}

		updatedAt := invite.NormalizeTime(now)
		accepted, err = s.repo.UpdateStatus(txCtx, current.ID, invite.StatusAccepted, updatedAt)
		if err != nil {
			return fmt.Errorf("failed to accept invite: %w", err)
		}

		rejectedIDs, err = s.repo.RejectSiblings(txCtx, current.StudentID, current.ScheduledAt, current.ID, updatedAt)
		if err != nil {
			return fmt.Errorf("failed to auto-reject sibling invites: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return invite.Invite{}, err
	}

	if changed {
		s.emit(ctx, eventFor(audit.KindAccepted, accepted))

		summary := eventFor(audit.KindAutoRejected, accepted)
		summary.RejectedIDs = rejectedIDs
		s.emit(ctx, summary)
	}

	return accepted, nil
}

// lockedInvite takes the student lock of invite id and returns the invite as seen under it.
func (s *inviteService) lockedInvite(txCtx context.Context, id int64) (invite.Invite, error) {
	found, err := s.repo.GetByID(txCtx, id)
	if err != nil {
		return invite.Invite{}, err
	}

	if err := s.repo.LockStudent(txCtx, found.StudentID); err != nil {
		return invite.Invite{}, err
	}

	current, err := s.repo.GetByID(txCtx, id)
	if err != nil {
		return invite.Invite{}, err
	}
	return current, nil
}

// ListInvites implements invite.InviteService.
func (s *inviteService) ListInvites(ctx context.Context, status string) ([]invite.InviteWithDetails, error) {
	invites, err := s.repo.List(ctx, invite.ListFilter{Status: invite.ParseStatusFilter(status)})
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return s.enrich(ctx, invites), nil
}

// ListInvitesForStudent implements invite.InviteService.
func (s *inviteService) ListInvitesForStudent(ctx context.Context, studentID int64, status string) ([]invite.InviteWithDetails, error) {
	if studentID <= 0 {
		return nil, invite.ErrInvalidStudentID
	}

	invites, err := s.repo.List(ctx, invite.ListFilter{
		StudentID: &studentID,
		Status:    invite.ParseStatusFilter(status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list student invites: %w", err)
	}
	return s.enrich(ctx, invites), nil
}

// enrich attaches teacher and student display data. Lookup failures leave the details empty.
func (s *inviteService) enrich(ctx context.Context, invites []invite.Invite) []invite.InviteWithDetails {
	result := make([]invite.InviteWithDetails, len(invites))
	if len(invites) == 0 {
		return result
	}

	teacherIDs := make([]int64, 0, len(invites))
	studentIDs := make([]int64, 0, len(invites))
	for i, inv := range invites {
		result[i].Invite = inv
		teacherIDs = append(teacherIDs, inv.TeacherID)
		studentIDs = append(studentIDs, inv.StudentID)
	}

	if s.lookup == nil {
		return result
	}

	teachers, err := s.lookup.Lookup(ctx, directory.RoleTeacher, teacherIDs)
	if err != nil {
		slog.WarnContext(ctx, "teacher lookup failed", "error", err)
	}
	students, err := s.lookup.Lookup(ctx, directory.RoleStudent, studentIDs)
	if err != nil {
		slog.WarnContext(ctx, "student lookup failed", "error", err)
	}

	for i := range result {
		if p, ok := teachers[result[i].TeacherID]; ok {
			result[i].Teacher = &p
		}
		if p, ok := students[result[i].StudentID]; ok {
			result[i].Student = &p
		}
	}
	return result
}

func eventFor(kind audit.Kind, inv invite.Invite) audit.Event {
	return audit.Event{
		Kind:        kind,
		InviteID:    inv.ID,
		TeacherID:   inv.TeacherID,
		StudentID:   inv.StudentID,
		ScheduledAt: inv.ScheduledAt,
	}
}

// emit appends an audit record. Failures are logged and never reach the caller.
func (s *inviteService) emit(ctx context.Context, event audit.Event) {
	if s.sink == nil {
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	event.ID = id.String()
	event.OccurredAt = s.clock.Now().UTC()

	if err := s.sink.Append(context.WithoutCancel(ctx), event); err != nil {
		slog.WarnContext(ctx, "failed to append audit event",
			"kind", string(event.Kind),
			"invite_id", event.InviteID,
			"error", err,
		)
	}
}
