package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

type manager struct {
	source   Source
	executor Executor
	logger   *slog.Logger
}

// NewManager creates a Manager applying migrations from source via executor.
func NewManager(source Source, executor Executor, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &manager{
		source:   source,
		executor: executor,
		logger:   logger,
	}
}

// RunMigrations executes all pending migrations in sequential order.
func (m *manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date")
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations", slog.Int("pending", len(pending)))

	for _, migration := range pending {
		migrationStart := time.Now()

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				slog.String("version", migration.Version),
				slog.String("name", migration.Name),
				slog.Any("error", err))
			return NewMigrationError(migration.Version, migration.Name,
				"execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		executionTime := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, executionTime); err != nil {
			return NewMigrationError(migration.Version, migration.Name,
				"record migration", fmt.Errorf("failed to record migration: %w", err))
		}

		m.logger.InfoContext(ctx, "migration applied",
			slog.String("version", migration.Version),
			slog.String("description", migration.Description),
			slog.Duration("took", executionTime))
	}

	m.logger.InfoContext(ctx, "migrations complete",
		slog.Int("applied", len(pending)),
		slog.Duration("took", time.Since(start)))

	return nil
}

// GetAppliedVersions returns the migration versions already applied.
func (m *manager) GetAppliedVersions(ctx context.Context) ([]string, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	versions := make([]string, len(applied))
	for i, migration := range applied {
		versions[i] = migration.Version
	}

	return versions, nil
}

// GetPendingMigrations returns the migrations that still need to run.
func (m *manager) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	available, err := m.source.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	appliedVersions, err := m.GetAppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	appliedMap := make(map[string]bool, len(appliedVersions))
	for _, version := range appliedVersions {
		appliedMap[version] = true
	}

	// Every applied version must still exist in the available set.
	availableMap := make(map[string]bool, len(available))
	for _, migration := range available {
		availableMap[migration.Version] = true
	}
	for _, version := range appliedVersions {
		if !availableMap[version] {
			return nil, fmt.Errorf("%w: applied migration %s not found in available migrations",
				ErrVersionConflict, version)
		}
	}

	var pending []Migration
	for _, migration := range available {
		if !appliedMap[migration.Version] {
			pending = append(pending, migration)
		}
	}

	return pending, nil
}

// GetStatus returns status information about migrations.
func (m *manager) GetStatus(ctx context.Context) (*Status, error) {
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending migrations: %w", err)
	}

	currentVersion := ""
	maxVersion := 0
	for _, migration := range applied {
		if version, err := strconv.Atoi(migration.Version); err == nil && version > maxVersion {
			maxVersion = version
			currentVersion = migration.Version
		}
	}

	return &Status{
		CurrentVersion:    currentVersion,
		PendingCount:      len(pending),
		AppliedMigrations: applied,
		PendingMigrations: pending,
	}, nil
}
