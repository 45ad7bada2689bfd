// Package migrations holds the embedded sqlite schema migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
