package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig holds SQLite-specific database configuration.
type SQLiteConfig struct {
	// DSN is the database file path or connection string
	DSN string

	// BusyTimeout sets how long to wait for database locks
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	// CacheSize sets the page cache size in KB (negative for pages)
	CacheSize int

	// MaxOpenConns sets the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum lifetime of connections
	ConnMaxLifetime time.Duration
}

// ConnectionManager manages SQLite database connections with proper configuration.
type ConnectionManager interface {
	// GetConnection returns a configured SQLite database connection
	GetConnection() (*sql.DB, error)

	// ConfigureDatabase applies SQLite-specific settings to an existing connection
	ConfigureDatabase(db *sql.DB) error

	// CreateDatabaseFile creates the database file if it doesn't exist
	CreateDatabaseFile() error

	// ValidateConfig validates the SQLite configuration
	ValidateConfig() error
}

type sqliteConnectionManager struct {
	config SQLiteConfig
}

// NewConnectionManager creates a new SQLite connection manager.
func NewConnectionManager(config SQLiteConfig) ConnectionManager {
	return &sqliteConnectionManager{
		config: config,
	}
}

// GetConnection returns a configured SQLite database connection.
func (cm *sqliteConnectionManager) GetConnection() (*sql.DB, error) {
	if err := cm.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}

	if err := cm.CreateDatabaseFile(); err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}

	db, err := sql.Open("sqlite", cm.config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if cm.config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cm.config.MaxOpenConns)
	}
	if cm.config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cm.config.MaxIdleConns)
	}
	if cm.config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cm.config.ConnMaxLifetime)
	}

	if err := cm.ConfigureDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase applies SQLite-specific settings to an existing connection.
func (cm *sqliteConnectionManager) ConfigureDatabase(db *sql.DB) error {
	pragmas := []struct {
		name  string
		value interface{}
	}{
		{"busy_timeout", int(cm.config.BusyTimeout.Milliseconds())},
		{"journal_mode", cm.config.JournalMode},
		{"synchronous", cm.config.Synchronous},
	}

	if cm.config.EnableForeignKeys {
		pragmas = append(pragmas, struct {
			name  string
			value interface{}
		}{"foreign_keys", "ON"})
	}

	if cm.config.CacheSize != 0 {
		pragmas = append(pragmas, struct {
			name  string
			value interface{}
		}{"cache_size", cm.config.CacheSize})
	}

	for _, pragma := range pragmas {
		var stmt string
		switch v := pragma.value.(type) {
		case string:
			stmt = fmt.Sprintf("PRAGMA %s = %s", pragma.name, v)
		case int:
			stmt = fmt.Sprintf("PRAGMA %s = %d", pragma.name, v)
		default:
			stmt = fmt.Sprintf("PRAGMA %s = %v", pragma.name, v)
		}

		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
	}

	return nil
}

// CreateDatabaseFile creates the database file if it doesn't exist.
func (cm *sqliteConnectionManager) CreateDatabaseFile() error {
	if cm.config.DSN == ":memory:" {
		return nil
	}

	dbDir := filepath.Dir(cm.config.DSN)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	if _, err := os.Stat(cm.config.DSN); err == nil {
		return nil
	}

	file, err := os.OpenFile(cm.config.DSN, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create database file %s: %w", cm.config.DSN, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close database file %s: %w", cm.config.DSN, err)
	}

	return nil
}

// ValidateConfig validates the SQLite configuration.
func (cm *sqliteConnectionManager) ValidateConfig() error {
	if cm.config.DSN == "" {
		return fmt.Errorf("DSN cannot be empty")
	}

	if cm.config.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}

	validJournalModes := map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}
	if cm.config.JournalMode != "" && !validJournalModes[cm.config.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", cm.config.JournalMode)
	}

	validSyncModes := map[string]bool{
		"OFF":    true,
		"NORMAL": true,
		"FULL":   true,
		"EXTRA":  true,
	}
	if cm.config.Synchronous != "" && !validSyncModes[cm.config.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", cm.config.Synchronous)
	}

	if cm.config.MaxOpenConns < 0 {
		return fmt.Errorf("MaxOpenConns cannot be negative")
	}
	if cm.config.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}
	if cm.config.ConnMaxLifetime < 0 {
		return fmt.Errorf("ConnMaxLifetime cannot be negative")
	}

	return nil
}

// DefaultSQLiteConfig returns a SQLite configuration with sensible defaults.
func DefaultSQLiteConfig(databasePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:               databasePath,
		BusyTimeout:       30 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		CacheSize:         -2000, // 2000 pages
		MaxOpenConns:      25,
		MaxIdleConns:      5,
		ConnMaxLifetime:   5 * time.Minute,
	}
}

// InMemoryTestSQLiteConfig returns a SQLite configuration for in-memory testing.
func InMemoryTestSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		DSN:               ":memory:",
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		MaxOpenConns:      1,
		MaxIdleConns:      1,
		ConnMaxLifetime:   time.Minute,
	}
}

// TempFileTestSQLiteConfig returns a SQLite configuration for temporary
// file-based testing, where concurrent connections are needed.
func TempFileTestSQLiteConfig(tempFilePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:               tempFilePath,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		Synchronous:       "OFF",
		CacheSize:         -1000,
		MaxOpenConns:      5,
		MaxIdleConns:      2,
		ConnMaxLifetime:   time.Minute,
	}
}
