package sqlite

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
)

// Storage provides an in-memory persistence layer implementation with the
// same semantics as the SQLite repositories. Services depend on the
// repository interfaces, so tests can swap this in without a database file.
type Storage struct {
	mu         sync.RWMutex
	users      map[string]persistence.User
	events     []persistence.AttendanceEvent
	busyLevels map[string]persistence.BusyLevelEntry
	sessions   map[string]persistence.Session
}

// Open returns a new Storage instance. The dsn is accepted for API compatibility.
func Open(_ string) (*Storage, error) {
	return &Storage{
		users:      make(map[string]persistence.User),
		busyLevels: make(map[string]persistence.BusyLevelEntry),
		sessions:   make(map[string]persistence.Session),
	}, nil
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	s.users[user.ID] = user
	return nil
}

// UpdateUser updates an existing user.
func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := normalizeEmail(email)
	for _, user := range s.users {
		if user.Email == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by CreatedAt ascending.
func (s *Storage) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// DeleteUser removes a user. Users that already have attendance rows cannot
// be deleted because the event log is append-only.
func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}

	for _, event := range s.events {
		if event.UserID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.users, id)

	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	for key, entry := range s.busyLevels {
		if entry.UserID == id {
			delete(s.busyLevels, key)
		}
	}

	return nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	lower := normalizeEmail(email)
	for existingID, user := range s.users {
		if existingID == id {
			continue
		}
		if user.Email == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- EventRepository implementation ---

// AppendEvent stores a new attendance event row.
func (s *Storage) AppendEvent(ctx context.Context, event persistence.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" || event.UserID == "" || event.WorkDate == "" || event.RecordedAt.IsZero() {
		return persistence.ErrConstraintViolation
	}
	for _, existing := range s.events {
		if existing.ID == event.ID {
			return persistence.ErrDuplicate
		}
	}
	if _, ok := s.users[event.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.events = append(s.events, cloneEvent(event))
	return nil
}

// ListEvents returns event rows matching the filter ordered by RecordedAt then ID.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.AttendanceEvent, 0)
	for _, event := range s.events {
		if filter.UserID != "" && event.UserID != filter.UserID {
			continue
		}
		if filter.FromDate != "" && event.WorkDate < filter.FromDate {
			continue
		}
		if filter.ToDate != "" && event.WorkDate > filter.ToDate {
			continue
		}
		events = append(events, cloneEvent(event))
	}

	sortEvents(events)
	return events, nil
}

// ListEventsForDate returns every user's event rows for one business day.
func (s *Storage) ListEventsForDate(ctx context.Context, workDate string) ([]persistence.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.AttendanceEvent, 0)
	for _, event := range s.events {
		if event.WorkDate == workDate {
			events = append(events, cloneEvent(event))
		}
	}

	sortEvents(events)
	return events, nil
}

func sortEvents(events []persistence.AttendanceEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].RecordedAt.Equal(events[j].RecordedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].RecordedAt.Before(events[j].RecordedAt)
	})
}

// --- BusyLevelRepository implementation ---

func busyKey(userID, workDate string) string {
	return userID + "|" + workDate
}

// UpsertBusyLevel creates or replaces the workload level for one user and day.
func (s *Storage) UpsertBusyLevel(ctx context.Context, entry persistence.BusyLevelEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" || entry.UserID == "" || entry.WorkDate == "" {
		return persistence.ErrConstraintViolation
	}
	if entry.Level < 1 || entry.Level > 5 {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.users[entry.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	key := busyKey(entry.UserID, entry.WorkDate)
	if existing, ok := s.busyLevels[key]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	}
	s.busyLevels[key] = entry
	return nil
}

// GetBusyLevel returns the workload level for one user and day.
func (s *Storage) GetBusyLevel(ctx context.Context, userID, workDate string) (persistence.BusyLevelEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.busyLevels[busyKey(userID, workDate)]
	if !ok {
		return persistence.BusyLevelEntry{}, persistence.ErrNotFound
	}
	return entry, nil
}

// ListBusyLevels returns the user's levels within the inclusive date range.
func (s *Storage) ListBusyLevels(ctx context.Context, userID, fromDate, toDate string) ([]persistence.BusyLevelEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.BusyLevelEntry, 0)
	for _, entry := range s.busyLevels {
		if entry.UserID != userID {
			continue
		}
		if fromDate != "" && entry.WorkDate < fromDate {
			continue
		}
		if toDate != "" && entry.WorkDate > toDate {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WorkDate < entries[j].WorkDate
	})

	return entries, nil
}

// --- SessionRepository implementation ---

// CreateSession stores a new session token for a user.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizeSession(session)
	if err != nil {
		return persistence.Session{}, err
	}
	if _, ok := s.users[normalized.UserID]; !ok {
		return persistence.Session{}, persistence.ErrForeignKeyViolation
	}
	if _, ok := s.sessions[normalized.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}

	s.sessions[normalized.Token] = cloneSession(normalized)
	return normalized, nil
}

// GetSession retrieves a session by its token value.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[strings.TrimSpace(token)]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

// UpdateSession updates mutable fields of an existing session.
func (s *Storage) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current persistence.Session
	var currentToken string
	found := false
	for token, existing := range s.sessions {
		if existing.ID == session.ID {
			current, currentToken, found = existing, token, true
			break
		}
	}
	if !found {
		return persistence.Session{}, persistence.ErrNotFound
	}

	session.UserID = current.UserID
	session.CreatedAt = current.CreatedAt

	normalized, err := normalizeSession(session)
	if err != nil {
		return persistence.Session{}, err
	}

	delete(s.sessions, currentToken)
	s.sessions[normalized.Token] = cloneSession(normalized)
	return normalized, nil
}

// RevokeSession marks a session as revoked based on its token value.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(token)
	session, ok := s.sessions[key]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}

	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	session.UpdatedAt = revoked
	s.sessions[key] = cloneSession(session)
	return cloneSession(session), nil
}

// DeleteExpiredSessions removes sessions that expired on or before the provided timestamp.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.UTC()
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- Helpers ---

func cloneEvent(event persistence.AttendanceEvent) persistence.AttendanceEvent {
	clone := event
	clone.CheckIn = cloneTimePtr(event.CheckIn)
	clone.CheckOut = cloneTimePtr(event.CheckOut)
	clone.BreakStart = cloneTimePtr(event.BreakStart)
	clone.BreakEnd = cloneTimePtr(event.BreakEnd)
	return clone
}

func cloneSession(session persistence.Session) persistence.Session {
	clone := session
	clone.RevokedAt = cloneTimePtr(session.RevokedAt)
	return clone
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
