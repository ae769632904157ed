package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

type mockSource struct {
	migrations []Migration
	err        error
}

func (m *mockSource) Migrations() ([]Migration, error) {
	return m.migrations, m.err
}

type mockExecutor struct {
	applied        []AppliedMigration
	executed       []string
	recorded       []string
	initialized    bool
	executeErr     error
	executeErrOn   string
	recordErr      error
	initializeErr  error
	appliedErr     error
	executionOrder []string
}

func (m *mockExecutor) ExecuteMigration(_ context.Context, migration Migration) error {
	if m.executeErr != nil && (m.executeErrOn == "" || m.executeErrOn == migration.Version) {
		return m.executeErr
	}
	m.executed = append(m.executed, migration.Version)
	m.executionOrder = append(m.executionOrder, "execute:"+migration.Version)
	return nil
}

func (m *mockExecutor) InitializeVersionTable(_ context.Context) error {
	if m.initializeErr != nil {
		return m.initializeErr
	}
	m.initialized = true
	return nil
}

func (m *mockExecutor) RecordMigration(_ context.Context, migration Migration, _ time.Duration) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, migration.Version)
	m.executionOrder = append(m.executionOrder, "record:"+migration.Version)
	return nil
}

func (m *mockExecutor) GetAppliedVersions(_ context.Context) ([]AppliedMigration, error) {
	if m.appliedErr != nil {
		return nil, m.appliedErr
	}
	return m.applied, nil
}

func testMigrations() []Migration {
	return []Migration{
		{Version: "001", Description: "initial schema", SQL: "CREATE TABLE a (id TEXT);", Name: "001_initial_schema.sql", Checksum: "aaa"},
		{Version: "002", Description: "add sessions", SQL: "CREATE TABLE b (id TEXT);", Name: "002_add_sessions.sql", Checksum: "bbb"},
		{Version: "003", Description: "add indexes", SQL: "CREATE INDEX i ON a(id);", Name: "003_add_indexes.sql", Checksum: "ccc"},
	}
}

func testManager(source Source, executor Executor) Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(source, executor, logger)
}

func TestManager_RunMigrations_AppliesPendingInOrder(t *testing.T) {
	executor := &mockExecutor{
		applied: []AppliedMigration{{Version: "001", AppliedAt: time.Now()}},
	}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	if err := manager.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if !executor.initialized {
		t.Error("expected version table to be initialized")
	}
	wantOrder := []string{"execute:002", "record:002", "execute:003", "record:003"}
	if len(executor.executionOrder) != len(wantOrder) {
		t.Fatalf("expected order %v, got %v", wantOrder, executor.executionOrder)
	}
	for i, step := range wantOrder {
		if executor.executionOrder[i] != step {
			t.Fatalf("expected order %v, got %v", wantOrder, executor.executionOrder)
		}
	}
}

func TestManager_RunMigrations_NoPendingIsNoOp(t *testing.T) {
	executor := &mockExecutor{
		applied: []AppliedMigration{{Version: "001"}, {Version: "002"}, {Version: "003"}},
	}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	if err := manager.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if len(executor.executed) != 0 {
		t.Errorf("expected no executions, got %v", executor.executed)
	}
}

func TestManager_RunMigrations_ExecutionFailureStopsRun(t *testing.T) {
	boom := errors.New("syntax error near CREATE")
	executor := &mockExecutor{executeErr: boom, executeErrOn: "002"}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	err := manager.RunMigrations(context.Background())
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	var migErr *MigrationError
	if !errors.As(err, &migErr) {
		t.Fatalf("expected MigrationError, got %T", err)
	}
	if migErr.Version != "002" {
		t.Errorf("expected failure at version 002, got %s", migErr.Version)
	}
	if len(executor.recorded) != 1 || executor.recorded[0] != "001" {
		t.Errorf("expected only 001 recorded before the failure, got %v", executor.recorded)
	}
}

func TestManager_RunMigrations_RecordFailurePropagates(t *testing.T) {
	executor := &mockExecutor{recordErr: errors.New("disk full")}
	manager := testManager(&mockSource{migrations: testMigrations()[:1]}, executor)

	err := manager.RunMigrations(context.Background())
	if err == nil {
		t.Fatal("expected error when recording fails")
	}
	var migErr *MigrationError
	if !errors.As(err, &migErr) {
		t.Fatalf("expected MigrationError, got %T: %v", err, err)
	}
}

func TestManager_RunMigrations_InitializationFailure(t *testing.T) {
	executor := &mockExecutor{initializeErr: errors.New("table is locked")}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	if err := manager.RunMigrations(context.Background()); err == nil {
		t.Fatal("expected error when version table cannot be initialized")
	}
	if len(executor.executed) != 0 {
		t.Errorf("expected no executions, got %v", executor.executed)
	}
}

func TestManager_GetPendingMigrations_DetectsMissingAppliedVersion(t *testing.T) {
	executor := &mockExecutor{
		applied: []AppliedMigration{{Version: "001"}, {Version: "099"}},
	}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	_, err := manager.GetPendingMigrations(context.Background())
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestManager_GetPendingMigrations_SourceFailure(t *testing.T) {
	sourceErr := fmt.Errorf("%w: bad file", ErrInvalidMigrationFile)
	manager := testManager(&mockSource{err: sourceErr}, &mockExecutor{})

	_, err := manager.GetPendingMigrations(context.Background())
	if !errors.Is(err, ErrInvalidMigrationFile) {
		t.Fatalf("expected source error to propagate, got %v", err)
	}
}

func TestManager_GetAppliedVersions(t *testing.T) {
	executor := &mockExecutor{
		applied: []AppliedMigration{{Version: "001"}, {Version: "002"}},
	}
	manager := testManager(&mockSource{}, executor)

	versions, err := manager.GetAppliedVersions(context.Background())
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(versions) != 2 || versions[0] != "001" || versions[1] != "002" {
		t.Errorf("unexpected versions: %v", versions)
	}
}

func TestManager_GetStatus(t *testing.T) {
	executor := &mockExecutor{
		applied: []AppliedMigration{
			{Version: "001", ExecutionTime: 5 * time.Millisecond},
			{Version: "002", ExecutionTime: 3 * time.Millisecond},
		},
	}
	manager := testManager(&mockSource{migrations: testMigrations()}, executor)

	status, err := manager.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.CurrentVersion != "002" {
		t.Errorf("expected current version 002, got %s", status.CurrentVersion)
	}
	if status.PendingCount != 1 {
		t.Errorf("expected one pending migration, got %d", status.PendingCount)
	}
	if len(status.PendingMigrations) != 1 || status.PendingMigrations[0].Version != "003" {
		t.Errorf("unexpected pending migrations: %+v", status.PendingMigrations)
	}
	if len(status.AppliedMigrations) != 2 {
		t.Errorf("unexpected applied migrations: %+v", status.AppliedMigrations)
	}
}
