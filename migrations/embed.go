package migrations

import "embed"

// SQLite and Postgres disagree on identity columns and timestamp types, so each driver keeps its
// own directory with matching version numbers.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Dir returns the migration directory for a database/sql driver name.
func Dir(driver string) string {
	if driver == "pgx" || driver == "postgres" {
		return "postgres"
	}
	return "sqlite"
}
