// Package migrations embeds the SQL schema for the key-value table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
