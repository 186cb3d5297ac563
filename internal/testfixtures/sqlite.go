package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users      persistence.UserRepository
	Events     persistence.EventRepository
	BusyLevels persistence.BusyLevelRepository
	Sessions   persistence.SessionRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but
// the helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "attendance.db")

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:      sqlite.NewUserRepository(pool),
		Events:     sqlite.NewEventRepository(pool),
		BusyLevels: sqlite.NewBusyLevelRepository(pool),
		Sessions:   sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// NewMemoryHarness constructs the same repository surface backed by the
// in-memory storage implementation. Useful for tests that do not need the
// real database semantics.
func NewMemoryHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open("")
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Users:      storage,
		Events:     storage,
		BusyLevels: storage,
		Sessions:   storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
