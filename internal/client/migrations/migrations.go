// Package migrations embeds the goose migrations for the CLI's local
// SQLite database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
