package sqlite

import (
	"embed"

	"github.com/reg4rd/classroom-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationSource returns the embedded schema migrations for the
// booking database.
func MigrationSource() migration.Source {
	return migration.NewFSSource(migrationsFS, "migrations")
}
