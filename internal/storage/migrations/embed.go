// Package migrations embeds and applies the SQL schema for the server backends.
// SQLite is migrated in place by its own package on open.
package migrations

import "embed"

// PostgresFS holds the trade_records schema.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the capture_events schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
