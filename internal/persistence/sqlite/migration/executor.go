package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SQLiteExecutor implements the Executor interface for SQLite databases.
type SQLiteExecutor struct {
	db *sql.DB
}

// NewSQLiteExecutor creates a new SQLite migration executor.
func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db}
}

// ExecuteMigration runs a single migration within a transaction.
func (e *SQLiteExecutor) ExecuteMigration(ctx context.Context, migration Migration) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "", "begin transaction", err)
	}

	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		tx.Rollback()
		return NewMigrationError(migration.Version, migration.Name, "parse SQL",
			fmt.Errorf("no SQL statements found in migration"))
	}

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			tx.Rollback()
			return NewDatabaseError(migration.Version, stmt, fmt.Sprintf("execute statement %d", i+1), execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewDatabaseError(migration.Version, "", "commit transaction", err)
	}

	return nil
}

// InitializeVersionTable creates the schema_migrations table if needed.
func (e *SQLiteExecutor) InitializeVersionTable(ctx context.Context) error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			checksum TEXT,
			execution_time_ms INTEGER
		);
	`

	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", createTableSQL, "create schema_migrations table", err)
	}

	return nil
}

// RecordMigration records a successful migration in the version table.
func (e *SQLiteExecutor) RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error {
	insertSQL := `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)
	`

	appliedAt := time.Now().UTC().Format(time.RFC3339)

	_, err := e.db.ExecContext(ctx, insertSQL, migration.Version, appliedAt, migration.Checksum, executionTime.Milliseconds())
	if err != nil {
		return NewDatabaseError(migration.Version, insertSQL, "record migration", err)
	}

	return nil
}

// GetAppliedVersions returns all applied migrations with timestamps.
func (e *SQLiteExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	querySQL := `
		SELECT version, applied_at, checksum, execution_time_ms
		FROM schema_migrations
		ORDER BY version ASC
	`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewDatabaseError("", querySQL, "query applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			migration    AppliedMigration
			appliedAtStr string
			checksum     sql.NullString
			executionMs  sql.NullInt64
		)
		if err := rows.Scan(&migration.Version, &appliedAtStr, &checksum, &executionMs); err != nil {
			return nil, NewDatabaseError("", querySQL, "scan applied version", err)
		}
		if migration.AppliedAt, err = time.Parse(time.RFC3339, appliedAtStr); err != nil {
			return nil, NewDatabaseError(migration.Version, "", "parse applied_at",
				fmt.Errorf("%w: %v", ErrVersionTableCorrupt, err))
		}
		if checksum.Valid {
			migration.Checksum = checksum.String
		}
		if executionMs.Valid {
			migration.ExecutionTime = time.Duration(executionMs.Int64) * time.Millisecond
		}
		applied = append(applied, migration)
	}

	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", querySQL, "iterate applied versions", err)
	}

	return applied, nil
}

// splitStatements splits a migration script into individual statements.
// Semicolons inside string literals are not supported in migration files.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || isOnlyComments(stmt) {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

func isOnlyComments(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}
	return true
}
