package persistence

import "context"
import "time"

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// EventFilter narrows attendance event queries. WorkDate strings use the
// yyyy-mm-dd form; zero fields impose no bound.
type EventFilter struct {
	UserID   string
	FromDate string
	ToDate   string
}

// EventRepository stores the append-only attendance event log. Rows are
// never updated in place; corrections arrive as new rows and the engine
// reconciles them at read time.
type EventRepository interface {
	AppendEvent(ctx context.Context, event AttendanceEvent) error
	ListEvents(ctx context.Context, filter EventFilter) ([]AttendanceEvent, error)
	ListEventsForDate(ctx context.Context, workDate string) ([]AttendanceEvent, error)
}

// BusyLevelRepository stores one workload level per user and day.
type BusyLevelRepository interface {
	UpsertBusyLevel(ctx context.Context, entry BusyLevelEntry) error
	GetBusyLevel(ctx context.Context, userID, workDate string) (BusyLevelEntry, error)
	ListBusyLevels(ctx context.Context, userID, fromDate, toDate string) ([]BusyLevelEntry, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
