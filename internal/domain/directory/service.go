package directory

import "context"

// Lookup resolves foreign ids to display data for invite enrichment
type Lookup interface {
	Lookup(ctx context.Context, role Role, ids []int64) (map[int64]Person, error)
}

// DirectoryService serves the teacher and student listings
type DirectoryService interface {
	Lookup

	ListTeachers(ctx context.Context) ([]Person, error)
	ListStudents(ctx context.Context) ([]Person, error)
}
