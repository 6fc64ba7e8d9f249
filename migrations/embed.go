// Package migrations embeds the SQL schema. Files named NNN_name.up.sql are
// applied in order by database.Pool.Migrate; the .down.sql files are for
// manual rollback.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
