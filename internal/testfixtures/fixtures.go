package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

var (
	userCounter    uint64
	eventCounter   uint64
	busyCounter    uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.April, 1, 9, 0, 0, 0, worktime.Location())

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls at 09:00 on a Tuesday so week and month windows derived from it
// stay within a single period.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar day of ReferenceTime.
func ReferenceDate() worktime.Date {
	return worktime.DateOf(referenceTime)
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserDisabled marks the fixture's credentials as disabled.
func WithUserDisabled() UserOption {
	return func(f *UserFixture) {
		f.Disabled = true
	}
}

// WithUserCreatedAt sets the created timestamp on the fixture.
func WithUserCreatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = t
	}
}

// WithUserUpdatedAt sets the updated timestamp on the fixture.
func WithUserUpdatedAt(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.UpdatedAt = t
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents one deterministic attendance event row. The default
// fixture is a closed nine-to-six workday on the reference date with no
// break recorded.
type EventFixture struct {
	ID         string
	UserID     string
	Date       worktime.Date
	CheckIn    *time.Time
	CheckOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	RecordedAt time.Time
	CreatedAt  time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic attendance event with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	checkIn := referenceTime
	checkOut := checkIn.Add(9 * time.Hour)
	fixture := EventFixture{
		ID:         fmt.Sprintf("event-%03d", idx),
		UserID:     fmt.Sprintf("user-%03d", idx),
		Date:       worktime.DateOf(checkIn),
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
		RecordedAt: checkOut,
		CreatedAt:  checkOut,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventUserID sets the owning user ID.
func WithEventUserID(id string) EventOption {
	return func(f *EventFixture) {
		f.UserID = id
	}
}

// WithEventDate sets the civil work date of the row.
func WithEventDate(date worktime.Date) EventOption {
	return func(f *EventFixture) {
		f.Date = date
	}
}

// WithEventCheckIn sets the check-in instant and aligns the work date with it.
func WithEventCheckIn(t time.Time) EventOption {
	return func(f *EventFixture) {
		checkIn := t
		f.CheckIn = &checkIn
		f.Date = worktime.DateOf(checkIn)
	}
}

// WithEventCheckOut sets the checkout instant and moves RecordedAt to match.
func WithEventCheckOut(t time.Time) EventOption {
	return func(f *EventFixture) {
		checkOut := t
		f.CheckOut = &checkOut
		f.RecordedAt = checkOut
	}
}

// WithoutEventCheckOut clears the checkout, producing an open row. RecordedAt
// falls back to the check-in instant when one is present.
func WithoutEventCheckOut() EventOption {
	return func(f *EventFixture) {
		f.CheckOut = nil
		if f.CheckIn != nil {
			f.RecordedAt = *f.CheckIn
		}
	}
}

// WithEventBreak sets a closed break window on the row.
func WithEventBreak(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		s, e := start, end
		f.BreakStart = &s
		f.BreakEnd = &e
	}
}

// WithEventBreakStart sets an open break on the row.
func WithEventBreakStart(t time.Time) EventOption {
	return func(f *EventFixture) {
		start := t
		f.BreakStart = &start
		f.BreakEnd = nil
	}
}

// WithoutEventBreak clears any break window on the row.
func WithoutEventBreak() EventOption {
	return func(f *EventFixture) {
		f.BreakStart = nil
		f.BreakEnd = nil
	}
}

// WithEventRecordedAt sets the write time of the row.
func WithEventRecordedAt(t time.Time) EventOption {
	return func(f *EventFixture) {
		f.RecordedAt = t
	}
}

// WithEventCreatedAt sets the created timestamp on the fixture.
func WithEventCreatedAt(t time.Time) EventOption {
	return func(f *EventFixture) {
		f.CreatedAt = t
	}
}

// Worktime returns the fixture as a worktime.Event ready for reconciliation.
func (f EventFixture) Worktime() worktime.Event {
	return worktime.Event{
		UserID:     f.UserID,
		Date:       f.Date,
		CheckIn:    copyTimePtr(f.CheckIn),
		CheckOut:   copyTimePtr(f.CheckOut),
		BreakStart: copyTimePtr(f.BreakStart),
		BreakEnd:   copyTimePtr(f.BreakEnd),
		RecordedAt: f.RecordedAt,
	}
}

// Application returns the fixture as an application.AttendanceRecord value.
func (f EventFixture) Application() application.AttendanceRecord {
	return application.AttendanceRecord{
		ID:         f.ID,
		UserID:     f.UserID,
		Date:       f.Date,
		CheckIn:    copyTimePtr(f.CheckIn),
		CheckOut:   copyTimePtr(f.CheckOut),
		BreakStart: copyTimePtr(f.BreakStart),
		BreakEnd:   copyTimePtr(f.BreakEnd),
		RecordedAt: f.RecordedAt,
	}
}

// Persistence returns the fixture as a persistence.AttendanceEvent value.
func (f EventFixture) Persistence() persistence.AttendanceEvent {
	return persistence.AttendanceEvent{
		ID:         f.ID,
		UserID:     f.UserID,
		WorkDate:   f.Date.String(),
		CheckIn:    copyTimePtr(f.CheckIn),
		CheckOut:   copyTimePtr(f.CheckOut),
		BreakStart: copyTimePtr(f.BreakStart),
		BreakEnd:   copyTimePtr(f.BreakEnd),
		RecordedAt: f.RecordedAt,
		CreatedAt:  f.CreatedAt,
	}
}

// --------------------------- Busy level fixtures --------------------------

// BusyLevelFixture represents a deterministic self-reported workload entry.
type BusyLevelFixture struct {
	ID        string
	UserID    string
	Date      worktime.Date
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BusyLevelOption configures the generated busy level fixture.
type BusyLevelOption func(*BusyLevelFixture)

// NewBusyLevelFixture returns a deterministic busy level fixture with optional overrides.
func NewBusyLevelFixture(opts ...BusyLevelOption) BusyLevelFixture {
	idx := atomic.AddUint64(&busyCounter, 1)
	fixture := BusyLevelFixture{
		ID:        fmt.Sprintf("busy-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Date:      ReferenceDate(),
		Level:     3,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBusyLevelID overrides the generated entry ID.
func WithBusyLevelID(id string) BusyLevelOption {
	return func(f *BusyLevelFixture) {
		f.ID = id
	}
}

// WithBusyLevelUserID sets the owning user ID.
func WithBusyLevelUserID(id string) BusyLevelOption {
	return func(f *BusyLevelFixture) {
		f.UserID = id
	}
}

// WithBusyLevelDate sets the civil date of the entry.
func WithBusyLevelDate(date worktime.Date) BusyLevelOption {
	return func(f *BusyLevelFixture) {
		f.Date = date
	}
}

// WithBusyLevel sets the reported level.
func WithBusyLevel(level int) BusyLevelOption {
	return func(f *BusyLevelFixture) {
		f.Level = level
	}
}

// WithBusyLevelTimestamps sets both created and updated timestamps.
func WithBusyLevelTimestamps(created, updated time.Time) BusyLevelOption {
	return func(f *BusyLevelFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.BusyLevel value.
func (f BusyLevelFixture) Application() application.BusyLevel {
	return application.BusyLevel{
		Date:  f.Date,
		Level: f.Level,
	}
}

// Persistence returns the fixture as a persistence.BusyLevelEntry value.
func (f BusyLevelFixture) Persistence() persistence.BusyLevelEntry {
	return persistence.BusyLevelEntry{
		ID:        f.ID,
		UserID:    f.UserID,
		WorkDate:  f.Date.String(),
		Level:     f.Level,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Session fixtures -------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	userID := fmt.Sprintf("user-%03d", idx)
	created := referenceTime
	fixture := SessionFixture{
		ID:          id,
		UserID:      userID,
		Token:       fmt.Sprintf("token-%03d", idx),
		Fingerprint: fmt.Sprintf("fingerprint-%03d", idx),
		ExpiresAt:   created.Add(8 * time.Hour),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionFingerprint sets the session fingerprint.
func WithSessionFingerprint(fp string) SessionOption {
	return func(f *SessionFixture) {
		f.Fingerprint = fp
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionTimestamps sets both created and updated timestamps.
func WithSessionTimestamps(created, updated time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// WithoutSessionRevoked clears any revoked timestamp.
func WithoutSessionRevoked() SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = nil
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   copyTimePtr(f.RevokedAt),
	}
}

// helper to deep copy optional instants.
func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
