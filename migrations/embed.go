// Package migrations embeds the SQL schema for the database-backed storage providers.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
