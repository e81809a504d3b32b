// Package migrations embeds the SQL migration files applied by goose when
// the repository manager starts.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
