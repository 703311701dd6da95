package directory

import (
	"context"
	"fmt"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
)

type directoryService struct {
	repo   directory.DirectoryRepository
	lookup directory.Lookup
}

// NewDirectoryService serves listings from repo and lookups through lookup.
// A nil lookup reads the repository directly.
func NewDirectoryService(repo directory.DirectoryRepository, lookup directory.Lookup) directory.DirectoryService {
	if lookup == nil {
		lookup = repoLookup{repo: repo}
	}
	return &directoryService{repo: repo, lookup: lookup}
}

// ListTeachers implements directory.DirectoryService.
func (s *directoryService) ListTeachers(ctx context.Context) ([]directory.Person, error) {
	teachers, err := s.repo.List(ctx, directory.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

// ListStudents implements directory.DirectoryService.
func (s *directoryService) ListStudents(ctx context.Context) ([]directory.Person, error) {
	students, err := s.repo.List(ctx, directory.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// Lookup implements directory.Lookup.
func (s *directoryService) Lookup(ctx context.Context, role directory.Role, ids []int64) (map[int64]directory.Person, error) {
	return s.lookup.Lookup(ctx, role, ids)
}

type repoLookup struct {
	repo directory.DirectoryRepository
}

func (l repoLookup) Lookup(ctx context.Context, role directory.Role, ids []int64) (map[int64]directory.Person, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[int64]directory.Person{}, nil
	}
	return l.repo.GetByIDs(ctx, role, ids)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
