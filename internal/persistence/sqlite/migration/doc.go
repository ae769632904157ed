// Package migration provides a versioned schema migration system for
// SQLite databases.
//
// Migrations are .sql files embedded in the binary and named
// {version}_{description}.sql (e.g. "001_initial_schema.sql"). They are
// applied sequentially, each inside its own transaction, and recorded in
// a schema_migrations table to prevent duplicate execution.
//
// Example usage:
//
//	source := NewFSSource(migrationsFS, "sql")
//	manager := NewManager(source, NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		log.Fatalf("migration failed: %v", err)
//	}
package migration
