// Package migrations holds the session schema, applied in filename order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
