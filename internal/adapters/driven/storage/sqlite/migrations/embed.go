// Package migrations holds the versioned schema of the SQLite vector store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql files applied in order.
//
//go:embed *.sql
var FS embed.FS
