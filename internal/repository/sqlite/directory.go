package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
)

type directoryRepositoryImpl struct {
	store *Store
}

// NewDirectoryRepository creates a SQLite-backed teacher/student directory
func NewDirectoryRepository(store *Store) directory.DirectoryRepository {
	return &directoryRepositoryImpl{store: store}
}

func tableFor(role directory.Role) (string, error) {
	switch role {
	case directory.RoleTeacher:
		return "teachers", nil
	case directory.RoleStudent:
		return "students", nil
	default:
		return "", fmt.Errorf("unknown directory role %q", role)
	}
}

// List implements directory.DirectoryRepository.
func (r *directoryRepositoryImpl) List(ctx context.Context, role directory.Role) ([]directory.Person, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	rows, err := r.store.querier(ctx).QueryContext(ctx, `SELECT id, name, email FROM `+table+` ORDER BY id ASC`)
	if err != nil {
		return nil, wrapError("failed to list "+table, err)
	}
	defer rows.Close()

	people := make([]directory.Person, 0)
	for rows.Next() {
		var p directory.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", role, err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("rows iteration error", err)
	}
	return people, nil
}

// GetByIDs implements directory.DirectoryRepository.
func (r *directoryRepositoryImpl) GetByIDs(ctx context.Context, role directory.Role, ids []int64) (map[int64]directory.Person, error) {
	result := make(map[int64]directory.Person, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.store.querier(ctx).QueryContext(ctx,
		`SELECT id, name, email FROM `+table+` WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, wrapError("failed to get "+table+" by ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p directory.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", role, err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("rows iteration error", err)
	}
	return result, nil
}
