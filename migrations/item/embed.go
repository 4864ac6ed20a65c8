// Package item embeds the goose migrations of the item schema.
package item

import "embed"

//go:embed *.sql
var FS embed.FS
