package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite. The
// attendance_events table is append-only: corrections are stored as new rows
// and reconciled by the worktime engine at read time.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite attendance event repository
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventColumns = "id, user_id, work_date, check_in, check_out, break_start, break_end, recorded_at, created_at"

// AppendEvent inserts a new attendance event row.
func (r *EventRepository) AppendEvent(ctx context.Context, event persistence.AttendanceEvent) error {
	if event.ID == "" || event.UserID == "" || event.WorkDate == "" {
		return persistence.ErrConstraintViolation
	}
	if event.RecordedAt.IsZero() {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO attendance_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.WorkDate,
		formatTimePtr(event.CheckIn),
		formatTimePtr(event.CheckOut),
		formatTimePtr(event.BreakStart),
		formatTimePtr(event.BreakEnd),
		event.RecordedAt.UTC().Format(time.RFC3339),
		event.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// ListEvents returns event rows matching the filter ordered by recorded_at
// then ID. The order matters: the reconciliation pass replays rows in
// submission order.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.AttendanceEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM attendance_events WHERE 1=1`
	args := make([]interface{}, 0, 3)

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.FromDate != "" {
		query += " AND work_date >= ?"
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += " AND work_date <= ?"
		args = append(args, filter.ToDate)
	}

	query += " ORDER BY recorded_at ASC, id ASC"

	return r.queryEvents(ctx, query, args...)
}

// ListEventsForDate returns every user's event rows for one business day.
func (r *EventRepository) ListEventsForDate(ctx context.Context, workDate string) ([]persistence.AttendanceEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM attendance_events
		WHERE work_date = ?
		ORDER BY recorded_at ASC, id ASC`
	return r.queryEvents(ctx, query, workDate)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]persistence.AttendanceEvent, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.AttendanceEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return events, nil
}

func scanEvent(rows *sql.Rows) (persistence.AttendanceEvent, error) {
	var event persistence.AttendanceEvent
	var checkIn, checkOut, breakStart, breakEnd sql.NullString
	var recordedAtStr, createdAtStr string

	err := rows.Scan(
		&event.ID,
		&event.UserID,
		&event.WorkDate,
		&checkIn,
		&checkOut,
		&breakStart,
		&breakEnd,
		&recordedAtStr,
		&createdAtStr,
	)
	if err != nil {
		return persistence.AttendanceEvent{}, err
	}

	if event.CheckIn, err = parseNullTime(checkIn, "check_in"); err != nil {
		return persistence.AttendanceEvent{}, err
	}
	if event.CheckOut, err = parseNullTime(checkOut, "check_out"); err != nil {
		return persistence.AttendanceEvent{}, err
	}
	if event.BreakStart, err = parseNullTime(breakStart, "break_start"); err != nil {
		return persistence.AttendanceEvent{}, err
	}
	if event.BreakEnd, err = parseNullTime(breakEnd, "break_end"); err != nil {
		return persistence.AttendanceEvent{}, err
	}

	if event.RecordedAt, err = time.Parse(time.RFC3339, recordedAtStr); err != nil {
		return persistence.AttendanceEvent{}, fmt.Errorf("failed to parse recorded_at: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.AttendanceEvent{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return event, nil
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(v sql.NullString, column string) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return &t, nil
}
