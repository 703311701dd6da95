package migrations

import "embed"

// FS contains embedded SQLite migrations for lesson invites.
//
//go:embed *.sql
var FS embed.FS
