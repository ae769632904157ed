package migration

import (
	"context"
	"time"
)

// Migration represents a schema migration with its metadata and SQL content.
type Migration struct {
	Version     string // Version identifier (e.g., "001", "002")
	Description string // Human-readable description of the migration
	SQL         string // SQL statements to execute
	Name        string // Source file name inside the migration FS
	Checksum    string // SHA-256 of the SQL content
}

// Manager orchestrates the migration process.
type Manager interface {
	// RunMigrations executes all pending migrations in sequential order.
	RunMigrations(ctx context.Context) error

	// GetAppliedVersions returns the migration versions already applied.
	GetAppliedVersions(ctx context.Context) ([]string, error)

	// GetPendingMigrations returns the migrations that still need to run.
	GetPendingMigrations(ctx context.Context) ([]Migration, error)

	// GetStatus returns status information about migrations.
	GetStatus(ctx context.Context) (*Status, error)
}

// Source provides the set of available migrations.
type Source interface {
	// Migrations returns all migrations sorted by version.
	Migrations() ([]Migration, error)
}

// Executor handles the actual execution of migrations against the database.
type Executor interface {
	// ExecuteMigration runs a single migration within a transaction.
	ExecuteMigration(ctx context.Context, migration Migration) error

	// InitializeVersionTable creates the schema_migrations table if needed.
	InitializeVersionTable(ctx context.Context) error

	// RecordMigration records a successful migration in the version table.
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error

	// GetAppliedVersions returns all applied migrations with timestamps.
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

// Status provides information about the current migration state.
type Status struct {
	CurrentVersion    string             // Latest applied migration version
	PendingCount      int                // Number of pending migrations
	AppliedMigrations []AppliedMigration // List of applied migrations
	PendingMigrations []Migration        // List of pending migrations
}

// AppliedMigration represents a migration that has been applied.
type AppliedMigration struct {
	Version       string        // Migration version
	AppliedAt     time.Time     // When the migration was applied
	ExecutionTime time.Duration // How long the migration took to execute
	Checksum      string        // Checksum of the migration when applied
}
