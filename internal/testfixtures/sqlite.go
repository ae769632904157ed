package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/reg4rd/classroom-booking/internal/persistence/sqlite"
	"github.com/reg4rd/classroom-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool         *sqlite.ConnectionPool
	Teachers     *sqlite.TeacherRepository
	Rooms        *sqlite.RoomRepository
	Reservations *sqlite.ReservationRepository
	Sessions     *sqlite.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	pool, err := sqlite.NewConnectionPool(migration.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := migration.NewManager(sqlite.MigrationSource(), migration.NewSQLiteExecutor(pool.DB()), quiet)
	if err := manager.RunMigrations(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:         pool,
		Teachers:     sqlite.NewTeacherRepository(pool),
		Rooms:        sqlite.NewRoomRepository(pool),
		Reservations: sqlite.NewReservationRepository(pool),
		Sessions:     sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
