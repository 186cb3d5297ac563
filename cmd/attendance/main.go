package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
	"github.com/kurodev-web-tools/attendance-management-system/internal/config"
	httptransport "github.com/kurodev-web-tools/attendance-management-system/internal/http"
	"github.com/kurodev-web-tools/attendance-management-system/internal/logging"
	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence"
	"github.com/kurodev-web-tools/attendance-management-system/internal/persistence/sqlite"
	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

func main() {
	logger := logging.NewLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool))
	eventRepo := newAttendanceRepositoryAdapter(sqlite.NewEventRepository(pool))
	busyStore := newBusyLevelStoreAdapter(sqlite.NewBusyLevelRepository(pool), idGenerator, now)
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))

	userService := application.NewUserService(userRepo, nil, idGenerator, now, logger)
	authService := application.NewAuthService(credentialStore, sessionRepo, nil, cfg.IsAdminEmail, tokenGenerator, now, cfg.SessionTTL, logger)
	attendanceService := application.NewAttendanceService(eventRepo, busyStore, idGenerator, now, logger)
	reportService := application.NewReportService(eventRepo, busyStore, cfg.LongWorkThresholdMin, now, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	userHandler := httptransport.NewUserHandler(userService, logger)
	attendanceHandler := httptransport.NewAttendanceHandler(attendanceService, reportService, logger)
	reportHandler := httptransport.NewReportHandler(reportService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:       authHandler,
		Users:      userHandler,
		Attendance: attendanceHandler,
		Reports:    reportHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Login is the only route reachable without a session token.
		if strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("attendance API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// mapPersistenceError translates storage sentinels into the application
// package's vocabulary so services can branch on errors.Is.
func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	default:
		return err
	}
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if passwordHash == "" {
		current, err := a.repo.GetUser(ctx, user.ID)
		if err != nil {
			return application.User{}, mapPersistenceError(err)
		}
		passwordHash = current.PasswordHash
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteUser(ctx, id))
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type attendanceRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newAttendanceRepositoryAdapter(repo persistence.EventRepository) *attendanceRepositoryAdapter {
	return &attendanceRepositoryAdapter{repo: repo}
}

func (a *attendanceRepositoryAdapter) AppendEvent(ctx context.Context, record application.AttendanceRecord) (application.AttendanceRecord, error) {
	if err := a.repo.AppendEvent(ctx, toPersistenceEvent(record)); err != nil {
		return application.AttendanceRecord{}, mapPersistenceError(err)
	}
	return record, nil
}

func (a *attendanceRepositoryAdapter) ListEvents(ctx context.Context, filter application.AttendanceFilter) ([]application.AttendanceRecord, error) {
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{
		UserID:   filter.UserID,
		FromDate: formatDate(filter.From),
		ToDate:   formatDate(filter.To),
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	records := make([]application.AttendanceRecord, 0, len(models))
	for _, model := range models {
		record, err := toApplicationRecord(model)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

type busyLevelStoreAdapter struct {
	repo        persistence.BusyLevelRepository
	idGenerator func() string
	now         func() time.Time
}

func newBusyLevelStoreAdapter(repo persistence.BusyLevelRepository, idGenerator func() string, now func() time.Time) *busyLevelStoreAdapter {
	return &busyLevelStoreAdapter{repo: repo, idGenerator: idGenerator, now: now}
}

func (a *busyLevelStoreAdapter) UpsertBusyLevel(ctx context.Context, userID string, level application.BusyLevel) (application.BusyLevel, error) {
	timestamp := a.now()
	entry := persistence.BusyLevelEntry{
		ID:        a.idGenerator(),
		UserID:    userID,
		WorkDate:  level.Date.String(),
		Level:     level.Level,
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
	}
	if err := a.repo.UpsertBusyLevel(ctx, entry); err != nil {
		return application.BusyLevel{}, mapPersistenceError(err)
	}
	return level, nil
}

func (a *busyLevelStoreAdapter) GetBusyLevel(ctx context.Context, userID string, date worktime.Date) (application.BusyLevel, error) {
	entry, err := a.repo.GetBusyLevel(ctx, userID, date.String())
	if err != nil {
		return application.BusyLevel{}, mapPersistenceError(err)
	}
	return toApplicationBusyLevel(entry)
}

func (a *busyLevelStoreAdapter) ListBusyLevels(ctx context.Context, userID string, from, to worktime.Date) ([]application.BusyLevel, error) {
	entries, err := a.repo.ListBusyLevels(ctx, userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	levels := make([]application.BusyLevel, 0, len(entries))
	for _, entry := range entries {
		level, err := toApplicationBusyLevel(entry)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	created, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(created), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	updated, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(updated), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	revoked, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(revoked), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapPersistenceError(a.repo.DeleteExpiredSessions(ctx, reference))
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapPersistenceError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationRecord(model persistence.AttendanceEvent) (application.AttendanceRecord, error) {
	date, err := worktime.ParseDate(model.WorkDate)
	if err != nil {
		return application.AttendanceRecord{}, fmt.Errorf("invalid work date %q: %w", model.WorkDate, err)
	}
	return application.AttendanceRecord{
		ID:         model.ID,
		UserID:     model.UserID,
		Date:       date,
		CheckIn:    cloneTime(model.CheckIn),
		CheckOut:   cloneTime(model.CheckOut),
		BreakStart: cloneTime(model.BreakStart),
		BreakEnd:   cloneTime(model.BreakEnd),
		RecordedAt: model.RecordedAt,
	}, nil
}

func toPersistenceEvent(record application.AttendanceRecord) persistence.AttendanceEvent {
	return persistence.AttendanceEvent{
		ID:         record.ID,
		UserID:     record.UserID,
		WorkDate:   record.Date.String(),
		CheckIn:    cloneTime(record.CheckIn),
		CheckOut:   cloneTime(record.CheckOut),
		BreakStart: cloneTime(record.BreakStart),
		BreakEnd:   cloneTime(record.BreakEnd),
		RecordedAt: record.RecordedAt,
		CreatedAt:  record.RecordedAt,
	}
}

func toApplicationBusyLevel(entry persistence.BusyLevelEntry) (application.BusyLevel, error) {
	date, err := worktime.ParseDate(entry.WorkDate)
	if err != nil {
		return application.BusyLevel{}, fmt.Errorf("invalid work date %q: %w", entry.WorkDate, err)
	}
	return application.BusyLevel{Date: date, Level: entry.Level}, nil
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		UserID:      model.UserID,
		Token:       model.Token,
		Fingerprint: model.Fingerprint,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		RevokedAt:   cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   cloneTime(session.RevokedAt),
	}
}

func formatDate(date worktime.Date) string {
	if date.IsZero() {
		return ""
	}
	return date.String()
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
