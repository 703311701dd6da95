package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/database"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL, migrates it and empties the invite tables.
// Tests are skipped when the variable is not set.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, postgresql.Migrate(ctx, db))
	truncateAllTables(t, db)

	return db
}

func truncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()

	_, err := db.Exec(context.Background(), `TRUNCATE TABLE lesson_invites, teachers, students RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
