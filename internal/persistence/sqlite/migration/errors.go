package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration execution failed.
	ErrMigrationFailed = errors.New("migration execution failed")

	// ErrInvalidMigrationFile indicates that a migration file is malformed.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")

	// ErrVersionConflict indicates a conflict with migration versions.
	ErrVersionConflict = errors.New("migration version conflict")

	// ErrInvalidVersion indicates that a migration version is malformed.
	ErrInvalidVersion = errors.New("invalid migration version")

	// ErrDuplicateVersion indicates multiple migrations share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrVersionTableCorrupt indicates the schema_migrations table holds
	// entries the available migrations cannot account for.
	ErrVersionTableCorrupt = errors.New("schema_migrations table is corrupted")
)

// MigrationError wraps migration-specific errors with additional context.
type MigrationError struct {
	Version   string // Migration version that caused the error
	Name      string // Migration file name
	Operation string // Operation being performed (scan, execute, etc.)
	Err       error  // Underlying error
}

func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.Name, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration error (%s): %s: %v", e.Name, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func (e *MigrationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewMigrationError creates a new MigrationError with context.
func NewMigrationError(version, name, operation string, err error) *MigrationError {
	return &MigrationError{
		Version:   version,
		Name:      name,
		Operation: operation,
		Err:       err,
	}
}

// FileSystemError wraps filesystem errors during migration operations.
type FileSystemError struct {
	Path      string // File or directory path
	Operation string // File operation (read, scan, etc.)
	Err       error  // Underlying error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("filesystem error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// NewFileSystemError creates a new FileSystemError.
func NewFileSystemError(path, operation string, err error) *FileSystemError {
	return &FileSystemError{
		Path:      path,
		Operation: operation,
		Err:       err,
	}
}

// DatabaseError wraps database errors during migration operations.
type DatabaseError struct {
	Version   string // Migration version (if applicable)
	Query     string // SQL query that failed (if applicable)
	Operation string // Database operation (execute, query, etc.)
	Err       error  // Underlying error
}

func (e *DatabaseError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("database error in migration %s during %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(version, query, operation string, err error) *DatabaseError {
	return &DatabaseError{
		Version:   version,
		Query:     query,
		Operation: operation,
		Err:       err,
	}
}
