// Package migrations embeds the SQL schema of the SQLite store.
package migrations

import "embed"

//go:embed events/*.sql
var EventsFS embed.FS
