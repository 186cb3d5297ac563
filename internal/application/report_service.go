package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kurodev-web-tools/attendance-management-system/internal/worktime"
)

// ReportService computes per-user working time reports and organization wide
// headcount statistics from the append-only attendance log.
type ReportService struct {
	events            AttendanceRepository
	busyLevels        BusyLevelStore
	cache             *reportCache
	longWorkThreshold int
	now               func() time.Time
	logger            *slog.Logger
}

// NewReportService wires dependencies for reporting. A longWorkThreshold of
// zero disables long-work alerts.
func NewReportService(events AttendanceRepository, busyLevels BusyLevelStore, longWorkThreshold int, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		events:            events,
		busyLevels:        busyLevels,
		cache:             newReportCache(30*time.Second, 256, now),
		longWorkThreshold: longWorkThreshold,
		now:               now,
		logger:            defaultLogger(logger),
	}
}

// InvalidateCache drops all cached reports. Callers invoke it after any
// attendance write so reports never serve stale rows beyond the cache TTL.
func (s *ReportService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// Report aggregates one user's working time over the requested period.
// Administrators can query anyone; other users only themselves.
func (s *ReportService) Report(ctx context.Context, params ReportParams) (report Report, err error) {
	if s == nil {
		return Report{}, fmt.Errorf("ReportService is nil")
	}

	userID := params.UserID
	if userID == "" {
		userID = params.Principal.UserID
	}
	if userID != params.Principal.UserID && !params.Principal.IsAdmin {
		return Report{}, ErrUnauthorized
	}

	logger := serviceLogger(ctx, s.logger, "report", "report", "user_id", userID, "period", string(params.Period))
	defer func() {
		if err != nil {
			logger.Warn("report failed", "error_kind", ErrorKind(err))
		}
	}()

	period := params.Period
	if period == "" {
		period = ReportPeriodDay
	}

	reference := worktime.DateOf(s.now().In(worktime.Location()))
	if params.Reference != "" {
		parsed, parseErr := worktime.ParseDate(params.Reference)
		if parseErr != nil {
			vErr := &ValidationError{}
			vErr.add("reference", "日付の形式が不正です")
			return Report{}, vErr
		}
		reference = parsed
	}

	from, to, err := resolvePeriod(period, reference)
	if err != nil {
		return Report{}, err
	}

	key := buildReportCacheKey(userID, period, from, to)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	records, err := s.events.ListEvents(ctx, AttendanceFilter{UserID: userID, From: from, To: to})
	if err != nil {
		return Report{}, err
	}

	eventsByDate := make(map[worktime.Date][]worktime.Event)
	for _, event := range recordsToEvents(records) {
		eventsByDate[event.Date] = append(eventsByDate[event.Date], event)
	}

	busyByDate := make(map[worktime.Date]int)
	if s.busyLevels != nil {
		levels, listErr := s.busyLevels.ListBusyLevels(ctx, userID, from, to)
		if listErr != nil {
			return Report{}, listErr
		}
		for _, level := range levels {
			busyByDate[level.Date] = level.Level
		}
	}

	dates := worktime.DaysBetween(from, to)
	dailyAggs := make([]worktime.DailyAggregate, 0, len(dates))
	breakByDate := make(map[worktime.Date]int, len(dates))
	for _, date := range dates {
		sessions := worktime.Reconcile(eventsByDate[date])
		dailyAggs = append(dailyAggs, worktime.AggregateDay(date, sessions, nil))
		for _, session := range sessions {
			breakByDate[date] += session.BreakMinutes()
		}
	}

	periodAgg := worktime.AggregatePeriod(dailyAggs)

	report = Report{
		UserID:          userID,
		Period:          period,
		From:            from,
		To:              to,
		TotalMinutes:    periodAgg.TotalMinutes,
		WorkDays:        periodAgg.WorkDayCount,
		AverageMinutes:  periodAgg.AverageMinutes,
		LongestDay:      periodAgg.LongestDayMinutes,
		EarliestCheckIn: periodAgg.EarliestCheckIn,
		LatestCheckOut:  periodAgg.LatestCheckOut,
		Days:            make([]DailyReportEntry, 0, len(periodAgg.DailyData)),
	}

	for _, day := range periodAgg.DailyData {
		entry := DailyReportEntry{
			Date:         day.Date,
			WorkMinutes:  day.TotalMinutes,
			BreakMinutes: breakByDate[day.Date],
			Complete:     day.Complete,
			FirstCheckIn: day.FirstCheckIn,
			LastCheckOut: day.LastCheckOut,
			BusyLevel:    busyByDate[day.Date],
		}
		if s.longWorkThreshold > 0 && day.TotalMinutes >= s.longWorkThreshold {
			entry.LongWorkAlert = true
		}
		report.Days = append(report.Days, entry)
	}

	s.cache.Store(key, report)
	return report, nil
}

// Headcount reports how many distinct users have a check-in on the given day.
// Presence counts even when the day's reported minutes are zero. Admin only.
func (s *ReportService) Headcount(ctx context.Context, params HeadcountParams) (Headcount, error) {
	if s == nil {
		return Headcount{}, fmt.Errorf("ReportService is nil")
	}
	if !params.Principal.IsAdmin {
		return Headcount{}, ErrUnauthorized
	}

	date := worktime.DateOf(s.now().In(worktime.Location()))
	if params.Date != "" {
		parsed, err := worktime.ParseDate(params.Date)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("date", "日付の形式が不正です")
			return Headcount{}, vErr
		}
		date = parsed
	}

	records, err := s.events.ListEvents(ctx, AttendanceFilter{From: date, To: date})
	if err != nil {
		return Headcount{}, err
	}

	present := make(map[string]struct{})
	for _, record := range records {
		if record.CheckIn == nil {
			continue
		}
		present[record.UserID] = struct{}{}
	}

	userIDs := make([]string, 0, len(present))
	for userID := range present {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	return Headcount{Date: date, Count: len(userIDs), UserIDs: userIDs}, nil
}

// resolvePeriod maps a period keyword and reference date to an inclusive
// date range.
func resolvePeriod(period ReportPeriod, reference worktime.Date) (worktime.Date, worktime.Date, error) {
	switch period {
	case ReportPeriodDay:
		return reference, reference, nil
	case ReportPeriodWeek:
		from, to := worktime.WeekRange(reference)
		return from, to, nil
	case ReportPeriodMonth:
		from, to := worktime.MonthRange(reference.Year, reference.Month)
		return from, to, nil
	case ReportPeriodYear:
		from, to := worktime.YearRange(reference.Year)
		return from, to, nil
	default:
		vErr := &ValidationError{}
		vErr.add("period", "期間の指定が不正です")
		return worktime.Date{}, worktime.Date{}, vErr
	}
}
