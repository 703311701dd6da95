package postgresql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/invite"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const inviteColumns = `id, teacher_id, student_id, scheduled_at, status, created_at, updated_at`

type inviteRepositoryImpl struct {
	db *database.DB
}

// NewInviteRepository creates a new invite repository instance
func NewInviteRepository(db *database.DB) invite.InviteRepository {
	return &inviteRepositoryImpl{db: db}
}

func scanInvite(row pgx.Row) (invite.Invite, error) {
	var inv invite.Invite
	err := row.Scan(
		&inv.ID, &inv.TeacherID, &inv.StudentID, &inv.ScheduledAt,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return invite.Invite{}, err
	}
	inv.ScheduledAt = inv.ScheduledAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}

// Create implements invite.InviteRepository.
func (r *inviteRepositoryImpl) Create(ctx context.Context, inv invite.Invite) (invite.Invite, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO lesson_invites (
			teacher_id, student_id, scheduled_at, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + inviteColumns

	created, err := scanInvite(q.QueryRow(ctx, query,
		inv.TeacherID, inv.StudentID, inv.ScheduledAt, inv.Status, inv.CreatedAt, inv.UpdatedAt,
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
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + inviteColumns + ` FROM lesson_invites WHERE id = $1`

	inv, err := scanInvite(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to get invite by id", err)
	}

	return inv, nil
}

// GetByTriple implements invite.InviteRepository.
func (r *inviteRepositoryImpl) GetByTriple(ctx context.Context, teacherID, studentID int64, scheduledAt time.Time) (invite.Invite, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + inviteColumns + `
		FROM lesson_invites
		WHERE teacher_id = $1 AND student_id = $2 AND scheduled_at = $3
	`

	inv, err := scanInvite(q.QueryRow(ctx, query, teacherID, studentID, scheduledAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to get invite by slot", err)
	}

	return inv, nil
}

// FindFutureAccepted implements invite.InviteRepository.
func (r *inviteRepositoryImpl) FindFutureAccepted(ctx context.Context, studentID, excludingID int64, now time.Time) (invite.Invite, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + inviteColumns + `
		FROM lesson_invites
		WHERE student_id = $1 AND status = 'accepted' AND scheduled_at > $2 AND id <> $3
		ORDER BY scheduled_at ASC, id ASC
		LIMIT 1
	`

	inv, err := scanInvite(q.QueryRow(ctx, query, studentID, now, excludingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to find accepted upcoming invite", err)
	}

	return inv, nil
}

// UpdateStatus implements invite.InviteRepository.
func (r *inviteRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status invite.Status, updatedAt time.Time) (invite.Invite, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE lesson_invites
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + inviteColumns

	inv, err := scanInvite(q.QueryRow(ctx, query, status, updatedAt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invite.ErrInviteNotFound
		}
		return inv, wrapError("failed to update invite status", err)
	}

	return inv, nil
}

// RejectSiblings implements invite.InviteRepository.
func (r *inviteRepositoryImpl) RejectSiblings(ctx context.Context, studentID int64, scheduledAt time.Time, excludingID int64, updatedAt time.Time) ([]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE lesson_invites
		SET status = 'rejected', updated_at = $4
		WHERE student_id = $1 AND scheduled_at = $2 AND id <> $3 AND status <> 'rejected'
		RETURNING id
	`

	rows, err := q.Query(ctx, query, studentID, scheduledAt, excludingID, updatedAt)
	if err != nil {
		return nil, wrapError("failed to reject sibling invites", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, wrapError("failed to collect rejected invite ids", err)
	}

	slices.Sort(ids)
	return ids, nil
}

// List implements invite.InviteRepository.
func (r *inviteRepositoryImpl) List(ctx context.Context, filter invite.ListFilter) ([]invite.Invite, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + inviteColumns + ` FROM lesson_invites`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.Query(ctx, query, args...)
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

	if err = rows.Err(); err != nil {
		return nil, wrapError("rows iteration error", err)
	}

	return invites, nil
}

// LockStudent implements invite.InviteRepository with a transaction-scoped advisory lock.
func (r *inviteRepositoryImpl) LockStudent(ctx context.Context, studentID int64) error {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return fmt.Errorf("lock student %d: no transaction in context", studentID)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, studentID); err != nil {
		return wrapError("failed to lock student invites", err)
	}

	return nil
}
