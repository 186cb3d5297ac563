package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
)

// BusyLevelRepository implements persistence.BusyLevelRepository using SQLite
type BusyLevelRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBusyLevelRepository creates a new SQLite busy level repository
func NewBusyLevelRepository(pool *ConnectionPool) *BusyLevelRepository {
	return &BusyLevelRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const busyColumns = "id, user_id, work_date, level, created_at, updated_at"

// UpsertBusyLevel creates or replaces the workload level for one user and day.
// CreatedAt of an existing row is preserved.
func (r *BusyLevelRepository) UpsertBusyLevel(ctx context.Context, entry persistence.BusyLevelEntry) error {
	if entry.ID == "" || entry.UserID == "" || entry.WorkDate == "" {
		return persistence.ErrConstraintViolation
	}
	if entry.Level < 1 || entry.Level > 5 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO busy_levels (` + busyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, work_date) DO UPDATE SET
			level = excluded.level,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.WorkDate,
		entry.Level,
		entry.CreatedAt.UTC().Format(time.RFC3339),
		entry.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetBusyLevel returns the workload level for one user and day.
func (r *BusyLevelRepository) GetBusyLevel(ctx context.Context, userID, workDate string) (persistence.BusyLevelEntry, error) {
	if userID == "" || workDate == "" {
		return persistence.BusyLevelEntry{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx,
		`SELECT `+busyColumns+` FROM busy_levels WHERE user_id = ? AND work_date = ?`,
		userID, workDate,
	)
	return scanBusyLevel(row)
}

// ListBusyLevels returns the user's levels within the inclusive date range
// ordered by work_date.
func (r *BusyLevelRepository) ListBusyLevels(ctx context.Context, userID, fromDate, toDate string) ([]persistence.BusyLevelEntry, error) {
	query := `SELECT ` + busyColumns + ` FROM busy_levels WHERE user_id = ?`
	args := []interface{}{userID}

	if fromDate != "" {
		query += " AND work_date >= ?"
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += " AND work_date <= ?"
		args = append(args, toDate)
	}

	query += " ORDER BY work_date ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.BusyLevelEntry
	for rows.Next() {
		entry, err := scanBusyLevel(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return entries, nil
}

func scanBusyLevel(row rowScanner) (persistence.BusyLevelEntry, error) {
	var entry persistence.BusyLevelEntry
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.WorkDate,
		&entry.Level,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.BusyLevelEntry{}, persistence.ErrNotFound
		}
		return persistence.BusyLevelEntry{}, err
	}

	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.BusyLevelEntry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.BusyLevelEntry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return entry, nil
}
