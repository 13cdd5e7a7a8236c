package migrations

import "embed"

// FS contains embedded SQLite migrations, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
