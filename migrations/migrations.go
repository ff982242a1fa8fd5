// Package migrations embeds the ordered SQL migrations for postgres. They are
// applied in sequence with goose and must stay replayable against an existing
// database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
