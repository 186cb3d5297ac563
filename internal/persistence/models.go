package persistence

import "time"

// User represents an employee account in the attendance domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttendanceEvent is one append-only attendance row as submitted by a client.
// The checkout and break columns are optional; a row with a populated
// CheckOut supersedes an open row sharing the same check-in instant.
type AttendanceEvent struct {
	ID         string
	UserID     string
	WorkDate   string
	CheckIn    *time.Time
	CheckOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	RecordedAt time.Time
	CreatedAt  time.Time
}

// BusyLevelEntry stores a self-reported workload level for one user and day.
// Level is constrained to the 1..5 range by the schema.
type BusyLevelEntry struct {
	ID        string
	UserID    string
	WorkDate  string
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}
