package postgresql

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/database"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/repository/postgresql/migrations"
)

// Migrate applies the embedded schema files in name order. Every file is idempotent DDL.
func Migrate(ctx context.Context, db *database.DB) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		// No arguments, so pgx sends the file over the simple protocol and multiple statements are fine.
		if _, err := db.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}

	return nil
}
