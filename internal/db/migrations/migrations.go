// Package migrations embeds the goose SQL migrations of the marks registry.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
