package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

// AttendanceRepository captures the persistence interactions needed by the
// attendance service. The store is append only: corrections are new rows,
// never updates of old ones.
type AttendanceRepository interface {
	AppendEvent(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	ListEvents(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
}

// AttendanceFilter narrows queries issued to the attendance repository.
// Zero-valued dates leave the corresponding bound open.
type AttendanceFilter struct {
	UserID string
	From   worktime.Date
	To     worktime.Date
}

// BusyLevelStore captures the persistence interactions for self-reported
// workload levels.
type BusyLevelStore interface {
	UpsertBusyLevel(ctx context.Context, userID string, level BusyLevel) (BusyLevel, error)
	GetBusyLevel(ctx context.Context, userID string, date worktime.Date) (BusyLevel, error)
	ListBusyLevels(ctx context.Context, userID string, from, to worktime.Date) ([]BusyLevel, error)
}

// AttendanceService orchestrates the daily check-in, checkout, and break
// operations plus manual corrections.
type AttendanceService struct {
	events      AttendanceRepository
	busyLevels  BusyLevelStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for attendance operations.
func NewAttendanceService(events AttendanceRepository, busyLevels BusyLevelStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		events:      events,
		busyLevels:  busyLevels,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CheckIn opens a new work session for the principal at the current instant.
// Checking in is always permitted; a forgotten checkout leaves the previous
// session open for a later correction rather than blocking the new day.
func (s *AttendanceService) CheckIn(ctx context.Context, principal Principal) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "attendance", "check_in", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.Warn("check-in failed", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("checked in", "event_id", record.ID)
	}()

	now := s.now().In(worktime.Location())
	in := now
	record = AttendanceRecord{
		ID:         s.idGenerator(),
		UserID:     principal.UserID,
		Date:       worktime.DateOf(now),
		CheckIn:    &in,
		RecordedAt: now,
	}
	return s.events.AppendEvent(ctx, record)
}

// CheckOut closes the latest open session of the principal's current day. The
// new row is a full snapshot of the session so reconciliation keeps seeing a
// single coherent row per check-in instant. An open break is closed at the
// checkout instant.
func (s *AttendanceService) CheckOut(ctx context.Context, principal Principal) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "attendance", "check_out", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.Warn("checkout failed", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("checked out", "event_id", record.ID)
	}()

	now := s.now().In(worktime.Location())
	session, err := s.latestOpenSession(ctx, principal.UserID, worktime.DateOf(now))
	if err != nil {
		return AttendanceRecord{}, err
	}

	out := now
	record = s.snapshot(session, principal.UserID, worktime.DateOf(now), now)
	record.CheckOut = &out
	if record.BreakStart != nil && record.BreakEnd == nil {
		record.BreakEnd = &out
	}
	return s.events.AppendEvent(ctx, record)
}

// StartBreak records the start of a break on the latest open session. A
// session carries at most one break.
func (s *AttendanceService) StartBreak(ctx context.Context, principal Principal) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "attendance", "start_break", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.Warn("break start failed", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("break started", "event_id", record.ID)
	}()

	now := s.now().In(worktime.Location())
	session, err := s.latestOpenSession(ctx, principal.UserID, worktime.DateOf(now))
	if err != nil {
		return AttendanceRecord{}, err
	}
	if session.BreakStart != nil {
		return AttendanceRecord{}, ErrBreakAlreadyStarted
	}

	start := now
	record = s.snapshot(session, principal.UserID, worktime.DateOf(now), now)
	record.BreakStart = &start
	return s.events.AppendEvent(ctx, record)
}

// EndBreak records the end of the break in progress on the latest open session.
func (s *AttendanceService) EndBreak(ctx context.Context, principal Principal) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "attendance", "end_break", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.Warn("break end failed", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("break ended", "event_id", record.ID)
	}()

	now := s.now().In(worktime.Location())
	session, err := s.latestOpenSession(ctx, principal.UserID, worktime.DateOf(now))
	if err != nil {
		return AttendanceRecord{}, err
	}
	if session.BreakStart == nil || session.BreakEnd != nil {
		return AttendanceRecord{}, ErrNoActiveBreak
	}

	end := now
	record = s.snapshot(session, principal.UserID, worktime.DateOf(now), now)
	record.BreakEnd = &end
	return s.events.AppendEvent(ctx, record)
}

// Record stores a manual attendance entry. Administrators can record for
// anyone; other users only for themselves. A row targeting an existing
// check-in instant acts as a correction of that session.
func (s *AttendanceService) Record(ctx context.Context, params RecordAttendanceParams) (record AttendanceRecord, err error) {
	if s == nil {
		return AttendanceRecord{}, fmt.Errorf("AttendanceService is nil")
	}

	userID := params.UserID
	if userID == "" {
		userID = params.Principal.UserID
	}
	if userID != params.Principal.UserID && !params.Principal.IsAdmin {
		return AttendanceRecord{}, ErrUnauthorized
	}

	logger := serviceLogger(ctx, s.logger, "attendance", "record", "user_id", userID)
	defer func() {
		if err != nil {
			logger.Warn("manual record failed", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("attendance recorded", "event_id", record.ID)
	}()

	parsed, vErr := parseRecordParams(params)
	if vErr.HasErrors() {
		return AttendanceRecord{}, vErr
	}

	parsed.ID = s.idGenerator()
	parsed.UserID = userID
	parsed.RecordedAt = s.now().In(worktime.Location())
	return s.events.AppendEvent(ctx, parsed)
}

// Today summarises the principal's current working day.
func (s *AttendanceService) Today(ctx context.Context, principal Principal) (TodayStatus, error) {
	if s == nil {
		return TodayStatus{}, fmt.Errorf("AttendanceService is nil")
	}

	now := s.now().In(worktime.Location())
	today := worktime.DateOf(now)

	records, err := s.events.ListEvents(ctx, AttendanceFilter{UserID: principal.UserID, From: today, To: today})
	if err != nil {
		return TodayStatus{}, err
	}

	sessions := worktime.Reconcile(recordsToEvents(records))
	status := TodayStatus{Date: today, Sessions: sessions}

	reference := worktime.LiveReference(s.now)
	for _, session := range sessions {
		status.WorkedMinutes += session.Minutes(reference(session))
		if session.Open() {
			status.CheckedIn = true
			if session.BreakStart != nil && session.BreakEnd == nil {
				status.OnBreak = true
			}
		}
	}
	status.Complete = len(sessions) > 0 && !status.CheckedIn

	if s.busyLevels != nil {
		level, err := s.busyLevels.GetBusyLevel(ctx, principal.UserID, today)
		if err == nil {
			status.BusyLevel = level.Level
		} else if !isNotFound(err) {
			return TodayStatus{}, err
		}
	}
	return status, nil
}

// ListAttendance returns the raw stored rows for a user over an inclusive
// date range. Administrators can inspect anyone; other users only themselves.
func (s *AttendanceService) ListAttendance(ctx context.Context, principal Principal, userID string, from, to worktime.Date) ([]AttendanceRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("AttendanceService is nil")
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	return s.events.ListEvents(ctx, AttendanceFilter{UserID: userID, From: from, To: to})
}

// SetBusyLevel stores the principal's self-reported workload level for a day.
// An empty date targets the current day.
func (s *AttendanceService) SetBusyLevel(ctx context.Context, params SetBusyLevelParams) (BusyLevel, error) {
	if s == nil {
		return BusyLevel{}, fmt.Errorf("AttendanceService is nil")
	}
	if s.busyLevels == nil {
		return BusyLevel{}, fmt.Errorf("busy level store not configured")
	}

	vErr := &ValidationError{}
	date := worktime.DateOf(s.now().In(worktime.Location()))
	if params.Date != "" {
		parsed, err := worktime.ParseDate(params.Date)
		if err != nil {
			vErr.add("date", "日付の形式が不正です")
		} else {
			date = parsed
		}
	}
	if params.Level < 1 || params.Level > 5 {
		vErr.add("level", "忙しさレベルは1から5の範囲で指定してください")
	}
	if vErr.HasErrors() {
		return BusyLevel{}, vErr
	}

	return s.busyLevels.UpsertBusyLevel(ctx, params.Principal.UserID, BusyLevel{Date: date, Level: params.Level})
}

// GetBusyLevel returns the principal's workload level for a day, if reported.
func (s *AttendanceService) GetBusyLevel(ctx context.Context, principal Principal, rawDate string) (BusyLevel, error) {
	if s == nil {
		return BusyLevel{}, fmt.Errorf("AttendanceService is nil")
	}
	if s.busyLevels == nil {
		return BusyLevel{}, ErrNotFound
	}

	date := worktime.DateOf(s.now().In(worktime.Location()))
	if rawDate != "" {
		parsed, err := worktime.ParseDate(rawDate)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("date", "日付の形式が不正です")
			return BusyLevel{}, vErr
		}
		date = parsed
	}
	return s.busyLevels.GetBusyLevel(ctx, principal.UserID, date)
}

// latestOpenSession reconciles the day's rows and returns the open session
// with the most recent check-in.
func (s *AttendanceService) latestOpenSession(ctx context.Context, userID string, date worktime.Date) (worktime.Session, error) {
	records, err := s.events.ListEvents(ctx, AttendanceFilter{UserID: userID, From: date, To: date})
	if err != nil {
		return worktime.Session{}, err
	}

	sessions := worktime.Reconcile(recordsToEvents(records))
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Open() {
			return sessions[i], nil
		}
	}
	return worktime.Session{}, ErrNotCheckedIn
}

// snapshot builds a correction row carrying the session's current state. The
// check-in instant is copied verbatim so reconciliation folds the new row
// into the same session.
func (s *AttendanceService) snapshot(session worktime.Session, userID string, date worktime.Date, recordedAt time.Time) AttendanceRecord {
	in := session.CheckIn
	record := AttendanceRecord{
		ID:         s.idGenerator(),
		UserID:     userID,
		Date:       date,
		CheckIn:    &in,
		RecordedAt: recordedAt,
	}
	if session.BreakStart != nil {
		start := *session.BreakStart
		record.BreakStart = &start
	}
	if session.BreakEnd != nil {
		end := *session.BreakEnd
		record.BreakEnd = &end
	}
	return record
}

// parseRecordParams validates and canonicalizes a manual attendance entry.
func parseRecordParams(params RecordAttendanceParams) (AttendanceRecord, *ValidationError) {
	vErr := &ValidationError{}
	record := AttendanceRecord{}

	if params.CheckIn == "" {
		vErr.add("check_in", "出勤時刻は必須です")
		return record, vErr
	}

	checkIn, err := worktime.ParseInstant(params.CheckIn)
	if err != nil && params.Date != "" {
		if date, dateErr := worktime.ParseDate(params.Date); dateErr == nil {
			checkIn, err = worktime.ParseInstantOn(date, params.CheckIn)
		}
	}
	if err != nil {
		vErr.add("check_in", "出勤時刻の形式が不正です")
		return record, vErr
	}
	record.CheckIn = &checkIn

	record.Date = worktime.DateOf(checkIn)
	if params.Date != "" {
		date, err := worktime.ParseDate(params.Date)
		if err != nil {
			vErr.add("date", "日付の形式が不正です")
		} else {
			record.Date = date
		}
	}

	parseField := func(raw, field string) *time.Time {
		if raw == "" {
			return nil
		}
		t, err := worktime.ParseInstantOn(record.Date, raw)
		if err != nil {
			vErr.add(field, "時刻の形式が不正です")
			return nil
		}
		return &t
	}

	record.CheckOut = parseField(params.CheckOut, "check_out")
	record.BreakStart = parseField(params.BreakStart, "break_start")
	record.BreakEnd = parseField(params.BreakEnd, "break_end")

	if record.CheckOut != nil && record.CheckOut.Before(*record.CheckIn) {
		vErr.add("check_out", "退勤時刻は出勤時刻より後でなければなりません")
	}
	if record.BreakStart != nil && record.BreakEnd != nil && record.BreakEnd.Before(*record.BreakStart) {
		vErr.add("break_end", "休憩終了時刻は休憩開始時刻より後でなければなりません")
	}
	if record.BreakEnd != nil && record.BreakStart == nil {
		vErr.add("break_start", "休憩開始時刻は必須です")
	}

	return record, vErr
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// recordsToEvents converts stored rows into the reconciliation input form.
func recordsToEvents(records []AttendanceRecord) []worktime.Event {
	events := make([]worktime.Event, 0, len(records))
	for _, record := range records {
		events = append(events, worktime.Event{
			Date:       record.Date,
			CheckIn:    record.CheckIn,
			CheckOut:   record.CheckOut,
			BreakStart: record.BreakStart,
			BreakEnd:   record.BreakEnd,
			RecordedAt: record.RecordedAt,
		})
	}
	return events
}
