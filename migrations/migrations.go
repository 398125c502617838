// migrations/migrations.go
package migrations

import "embed"

// FS holds the SQL migrations so the binary can migrate without shipping
// loose files.
//
//go:embed *.sql
var FS embed.FS
