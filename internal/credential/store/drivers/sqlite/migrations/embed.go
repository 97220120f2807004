// Package migrations embeds the SQLite schema migration files so a single
// binary can bring any database file up to date.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
