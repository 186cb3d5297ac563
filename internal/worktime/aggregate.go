package worktime

import "time"

// DailyAggregate summarises the reconciled sessions of one calendar date.
type DailyAggregate struct {
	Date         Date
	Sessions     []Session
	TotalMinutes int
	// Complete is true when the date has at least one session and none of
	// them is still open.
	Complete     bool
	FirstCheckIn *time.Time
	LastCheckOut *time.Time
}

// AggregateDay sums session durations for one date. A date with no sessions
// yields a zero row that is retained in range listings but never counted as
// a worked day.
func AggregateDay(date Date, sessions []Session, ref ReferenceFunc) DailyAggregate {
	if ref == nil {
		ref = HistoricalReference
	}

	agg := DailyAggregate{Date: date}
	if len(sessions) == 0 {
		return agg
	}

	agg.Sessions = make([]Session, len(sessions))
	copy(agg.Sessions, sessions)
	agg.Complete = true

	for _, session := range agg.Sessions {
		agg.TotalMinutes += session.Minutes(ref(session))
		if session.Open() {
			agg.Complete = false
		}

		if agg.FirstCheckIn == nil || session.CheckIn.Before(*agg.FirstCheckIn) {
			in := session.CheckIn
			agg.FirstCheckIn = &in
		}
		if session.CheckOut != nil {
			if agg.LastCheckOut == nil || session.CheckOut.After(*agg.LastCheckOut) {
				out := *session.CheckOut
				agg.LastCheckOut = &out
			}
		}
	}

	return agg
}

// PeriodAggregate folds daily aggregates over a contiguous date range into
// summary statistics. Day, week, month and year reports are all just
// different range lengths.
type PeriodAggregate struct {
	TotalMinutes      int
	WorkDayCount      int
	AverageMinutes    int
	LongestDayMinutes int
	EarliestCheckIn   *time.Time
	LatestCheckOut    *time.Time
	DailyData         []DailyAggregate
}

// AggregatePeriod computes period statistics from per-day aggregates.
//
// WorkDayCount here is duration based: a day counts when its total is
// positive. This is distinct from the attendance-based WorkDays set and the
// two must not be conflated; headcount statistics use WorkDays.
func AggregatePeriod(days []DailyAggregate) PeriodAggregate {
	agg := PeriodAggregate{}
	if len(days) == 0 {
		return agg
	}

	agg.DailyData = make([]DailyAggregate, len(days))
	copy(agg.DailyData, days)

	for _, day := range agg.DailyData {
		agg.TotalMinutes += day.TotalMinutes
		if day.TotalMinutes > 0 {
			agg.WorkDayCount++
		}
		if day.TotalMinutes > agg.LongestDayMinutes {
			agg.LongestDayMinutes = day.TotalMinutes
		}

		for _, session := range day.Sessions {
			if agg.EarliestCheckIn == nil || session.CheckIn.Before(*agg.EarliestCheckIn) {
				in := session.CheckIn
				agg.EarliestCheckIn = &in
			}
			if session.CheckOut != nil {
				if agg.LatestCheckOut == nil || session.CheckOut.After(*agg.LatestCheckOut) {
					out := *session.CheckOut
					agg.LatestCheckOut = &out
				}
			}
		}
	}

	// Guard the empty range; averages never divide by zero.
	if agg.WorkDayCount > 0 {
		agg.AverageMinutes = (agg.TotalMinutes + agg.WorkDayCount/2) / agg.WorkDayCount
	}

	return agg
}
