package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the ordered schema definition. Each entry runs inside its
// own transaction and is recorded in schema_migrations so reopening an
// existing database only applies the tail.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_events (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id),
		work_date   TEXT NOT NULL,
		check_in    TEXT,
		check_out   TEXT,
		break_start TEXT,
		break_end   TEXT,
		recorded_at TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_events_user_date
		ON attendance_events (user_id, work_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_events_date
		ON attendance_events (work_date)`,
	`CREATE TABLE IF NOT EXISTS busy_levels (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		work_date  TEXT NOT NULL,
		level      INTEGER NOT NULL CHECK (level BETWEEN 1 AND 5),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (user_id, work_date)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id),
		token       TEXT NOT NULL UNIQUE,
		fingerprint TEXT NOT NULL DEFAULT '',
		expires_at  TEXT NOT NULL,
		revoked_at  TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
}

// Migrate brings the database schema up to the current version.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	_, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err = cp.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		statement := migrations[version-1]
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(statement); err != nil {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`,
				version,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
