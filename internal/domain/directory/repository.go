package directory

import "context"

// DirectoryRepository reads teachers and students
type DirectoryRepository interface {
	// List returns everyone with the role ordered by id
	List(ctx context.Context, role Role) ([]Person, error)

	// GetByIDs returns the people found among ids, keyed by id. Missing ids are simply absent.
	GetByIDs(ctx context.Context, role Role, ids []int64) (map[int64]Person, error)
}
