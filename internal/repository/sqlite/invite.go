package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
)

const inviteColumns = `id, teacher_id, student_id, scheduled_at, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type inviteRepositoryImpl struct {
	store *Store
}

// NewInviteRepository creates a SQLite-backed invite repository
func NewInviteRepository(store *Store) invite.InviteRepository {
	return &inviteRepositoryImpl{store: store}
}

func scanInvite(row scanner) (invite.Invite, error) {
	var (
		inv                               invite.Invite
		status                            string
		scheduledAt, createdAt, updatedAt int64
	)
	if err := row.Scan(&inv.ID, &inv.TeacherID, &inv.StudentID, &scheduledAt, &status, &createdAt, &updatedAt); err != nil {
		return invite.Invite{}, err
	}
	inv.Status = invite.Status(status)
	inv.ScheduledAt = fromMillis(scheduledAt)
	inv.CreatedAt = fromMillis(createdAt)
	inv.UpdatedAt = fromMillis(updatedAt)
	return inv, nil
}

// Create implements invite.InviteRepository.
func (r *inviteRepositoryImpl) Create(ctx context.Context, inv invite.Invite) (invite.Invite, error) {
	q := r.store.querier(ctx)

	query := `
		INSERT INTO lesson_invites (teacher_id, student_id, scheduled_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + inviteColumns

	created, err := scanInvite(q.QueryRowContext(ctx, query,
		inv.TeacherID, inv.StudentID, toMillis(inv.ScheduledAt), string(inv.Status),
		toMillis(inv.CreatedAt), toMillis(inv.UpdatedAt),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return invite.Invite{}, invite.ErrInviteAlreadyExists
		}
		return invite.Invite{}, wrapError("failed to create invite", err)
	}
	return created, nil
}

// GetByID implements invite.InviteRepository.
func (r *inviteRepositoryImpl) GetByID(ctx context.Context, id int64) (invite.Invite, error) {
	q := r.store.querier(ctx)

	inv, err := scanInvite(q.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM lesson_invites WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to get invite by id", err)
	}
	return inv, nil
}

// GetByTriple implements invite.InviteRepository.
func (r *inviteRepositoryImpl) GetByTriple(ctx context.Context, teacherID, studentID int64, scheduledAt time.Time) (invite.Invite, error) {
	q := r.store.querier(ctx)

	query := `
		SELECT ` + inviteColumns + `
		FROM lesson_invites
		WHERE teacher_id = ? AND student_id = ? AND scheduled_at = ?
	`

	inv, err := scanInvite(q.QueryRowContext(ctx, query, teacherID, studentID, toMillis(scheduledAt)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to get invite by slot", err)
	}
	return inv, nil
}

// FindFutureAccepted implements invite.InviteRepository.
func (r *inviteRepositoryImpl) FindFutureAccepted(ctx context.Context, studentID, excludingID int64, now time.Time) (invite.Invite, error) {
	q := r.store.querier(ctx)

	query := `
		SELECT ` + inviteColumns + `
		FROM lesson_invites
		WHERE student_id = ? AND status = 'accepted' AND scheduled_at > ? AND id <> ?
		ORDER BY scheduled_at ASC, id ASC
		LIMIT 1
	`

	inv, err := scanInvite(q.QueryRowContext(ctx, query, studentID, toMillis(now), excludingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to find accepted upcoming invite", err)
	}
	return inv, nil
}

// UpdateStatus implements invite.InviteRepository.
func (r *inviteRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status invite.Status, updatedAt time.Time) (invite.Invite, error) {
	q := r.store.querier(ctx)

	query := `
		UPDATE lesson_invites
		SET status = ?, updated_at = ?
		WHERE id = ?
		RETURNING ` + inviteColumns

	inv, err := scanInvite(q.QueryRowContext(ctx, query, string(status), toMillis(updatedAt), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to update invite status", err)
	}
	return inv, nil
}

// RejectSiblings implements invite.InviteRepository.
func (r *inviteRepositoryImpl) RejectSiblings(ctx context.Context, studentID int64, scheduledAt time.Time, excludingID int64, updatedAt time.Time) ([]int64, error) {
	q := r.store.querier(ctx)

	query := `
		UPDATE lesson_invites
		SET status = 'rejected', updated_at = ?
		WHERE student_id = ? AND scheduled_at = ? AND id <> ? AND status <> 'rejected'
		RETURNING id
	`

	rows, err := q.QueryContext(ctx, query, toMillis(updatedAt), studentID, toMillis(scheduledAt), excludingID)
	if err != nil {
		return nil, wrapError("failed to reject sibling invites", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan rejected invite id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("rows iteration error", err)
	}

	slices.Sort(ids)
	return ids, nil
}

// List implements invite.InviteRepository.
func (r *inviteRepositoryImpl) List(ctx context.Context, filter invite.ListFilter) ([]invite.Invite, error) {
	q := r.store.querier(ctx)

	var (
		conditions []string
		args       []any
	)
	if filter.StudentID != nil {
		conditions = append(conditions, "student_id = ?")
		args = append(args, *filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `SELECT ` + inviteColumns + ` FROM lesson_invites`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to list invites", err)
	}
	defer rows.Close()

	invites := make([]invite.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("rows iteration error", err)
	}

	return invites, nil
}

// LockStudent implements invite.InviteRepository. Transactions begin IMMEDIATE on the single
// connection, so holding one already excludes every other writer.
func (r *inviteRepositoryImpl) LockStudent(ctx context.Context, studentID int64) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); !ok {
		return fmt.Errorf("lock student %d: no transaction in context", studentID)
	}
	return nil
}
