package migrations

import "embed"

// FS contains the PostgreSQL schema for lesson invites.
//
//go:embed *.sql
var FS embed.FS
