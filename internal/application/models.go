package application

import (
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// User represents an employee account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
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

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
}

// RecordAttendanceParams captures a raw attendance submission. Timestamp
// strings are accepted in the forms the worktime parser understands; Date
// falls back to the check-in's calendar day when empty.
type RecordAttendanceParams struct {
	Principal  Principal
	UserID     string
	Date       string
	CheckIn    string
	CheckOut   string
	BreakStart string
	BreakEnd   string
}

// AttendanceRecord is one stored attendance row as seen by callers.
type AttendanceRecord struct {
	ID         string
	UserID     string
	Date       worktime.Date
	CheckIn    *time.Time
	CheckOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	RecordedAt time.Time
}

// TodayStatus summarises the principal's current day.
type TodayStatus struct {
	Date          worktime.Date
	CheckedIn     bool
	OnBreak       bool
	Complete      bool
	Sessions      []worktime.Session
	WorkedMinutes int
	BusyLevel     int
}

// SetBusyLevelParams captures a self-reported workload level for one day.
type SetBusyLevelParams struct {
	Principal Principal
	Date      string
	Level     int
}

// BusyLevel is a workload level reported for one day. Level ranges 1 to 5.
type BusyLevel struct {
	Date  worktime.Date
	Level int
}

// ReportPeriod identifies the aggregation window of a report request.
type ReportPeriod string

const (
	// ReportPeriodDay constrains the report to a single day.
	ReportPeriodDay ReportPeriod = "day"
	// ReportPeriodWeek constrains the report to the Monday-start week containing the reference date.
	ReportPeriodWeek ReportPeriod = "week"
	// ReportPeriodMonth constrains the report to one calendar month.
	ReportPeriodMonth ReportPeriod = "month"
	// ReportPeriodYear constrains the report to one calendar year.
	ReportPeriodYear ReportPeriod = "year"
)

// ReportParams identifies the subject and window of a work report.
type ReportParams struct {
	Principal Principal
	UserID    string
	Period    ReportPeriod
	Reference string
}

// DailyReportEntry is one day inside a period report.
type DailyReportEntry struct {
	Date          worktime.Date
	WorkMinutes   int
	BreakMinutes  int
	Complete      bool
	FirstCheckIn  *time.Time
	LastCheckOut  *time.Time
	BusyLevel     int
	LongWorkAlert bool
}

// Report aggregates one user's working time over a period.
type Report struct {
	UserID          string
	Period          ReportPeriod
	From            worktime.Date
	To              worktime.Date
	TotalMinutes    int
	WorkDays        int
	AverageMinutes  int
	LongestDay      int
	EarliestCheckIn *time.Time
	LatestCheckOut  *time.Time
	Days            []DailyReportEntry
}

// HeadcountParams identifies the day of an attendance headcount query.
type HeadcountParams struct {
	Principal Principal
	Date      string
}

// Headcount reports how many distinct users have any check-in on a day.
// Presence counts regardless of whether the day's minutes are zero.
type Headcount struct {
	Date    worktime.Date
	Count   int
	UserIDs []string
}
