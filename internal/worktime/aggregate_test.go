package worktime

import (
	"testing"
	"time"
)

func TestAggregateDay(t *testing.T) {
	t.Parallel()

	t.Run("sums closed sessions", func(t *testing.T) {
		t.Parallel()

		sessions := []Session{
			{CheckIn: jstTime(9, 0), CheckOut: timePtr(jstTime(12, 0))},
			{CheckIn: jstTime(13, 0), CheckOut: timePtr(jstTime(18, 0))},
		}

		agg := AggregateDay(testDate, sessions, HistoricalReference)
		if agg.TotalMinutes != 480 {
			t.Fatalf("expected 180+300=480 minutes, got %d", agg.TotalMinutes)
		}
		if !agg.Complete {
			t.Fatalf("expected the day to be complete")
		}
		if len(agg.Sessions) != 2 {
			t.Fatalf("expected two sessions, got %d", len(agg.Sessions))
		}
		if agg.FirstCheckIn == nil || !agg.FirstCheckIn.Equal(jstTime(9, 0)) {
			t.Fatalf("unexpected first check-in: %v", agg.FirstCheckIn)
		}
		if agg.LastCheckOut == nil || !agg.LastCheckOut.Equal(jstTime(18, 0)) {
			t.Fatalf("unexpected last checkout: %v", agg.LastCheckOut)
		}
	})

	t.Run("an open session leaves the day incomplete", func(t *testing.T) {
		t.Parallel()

		sessions := []Session{
			{CheckIn: jstTime(9, 0), RecordedAt: jstTime(9, 5)},
		}

		agg := AggregateDay(testDate, sessions, HistoricalReference)
		if agg.Complete {
			t.Fatalf("expected an incomplete day")
		}
		if agg.TotalMinutes != 5 {
			t.Fatalf("expected open session to count its recorded span, got %d", agg.TotalMinutes)
		}
		if agg.LastCheckOut != nil {
			t.Fatalf("did not expect a last checkout, got %v", agg.LastCheckOut)
		}
	})

	t.Run("a day without sessions is a zero row", func(t *testing.T) {
		t.Parallel()

		agg := AggregateDay(testDate, nil, nil)
		if agg.TotalMinutes != 0 || agg.Complete {
			t.Fatalf("expected an empty incomplete day, got %+v", agg)
		}
	})
}

func TestAggregatePeriod(t *testing.T) {
	t.Parallel()

	day := func(offset, minutes int) DailyAggregate {
		d := DateOf(testDate.Time().AddDate(0, 0, offset))
		agg := DailyAggregate{Date: d, TotalMinutes: minutes}
		if minutes > 0 {
			out := d.Time().Add(time.Duration(9*60+minutes) * time.Minute)
			agg.Sessions = []Session{{
				CheckIn:  d.Time().Add(9 * time.Hour),
				CheckOut: &out,
			}}
		}
		return agg
	}

	t.Run("folds a week of daily totals", func(t *testing.T) {
		t.Parallel()

		week := []DailyAggregate{
			day(0, 0), day(1, 480), day(2, 0), day(3, 540), day(4, 0), day(5, 0), day(6, 0),
		}

		agg := AggregatePeriod(week)
		if agg.TotalMinutes != 1020 {
			t.Fatalf("expected 1020 total minutes, got %d", agg.TotalMinutes)
		}
		if agg.WorkDayCount != 2 {
			t.Fatalf("expected 2 work days, got %d", agg.WorkDayCount)
		}
		if agg.AverageMinutes != 510 {
			t.Fatalf("expected average of 510, got %d", agg.AverageMinutes)
		}
		if agg.LongestDayMinutes != 540 {
			t.Fatalf("expected longest day of 540, got %d", agg.LongestDayMinutes)
		}
		if len(agg.DailyData) != 7 {
			t.Fatalf("expected all seven days retained, got %d", len(agg.DailyData))
		}
	})

	t.Run("longest day dominates every individual total", func(t *testing.T) {
		t.Parallel()

		days := []DailyAggregate{day(0, 120), day(1, 480), day(2, 45)}
		agg := AggregatePeriod(days)
		for _, d := range agg.DailyData {
			if d.TotalMinutes > agg.LongestDayMinutes {
				t.Fatalf("day %s exceeds the longest-day figure", d.Date)
			}
		}
	})

	t.Run("tracks check-in and checkout extremes across sessions", func(t *testing.T) {
		t.Parallel()

		open := DailyAggregate{
			Date:         testDate.Next(),
			TotalMinutes: 30,
			Sessions:     []Session{{CheckIn: jstTime(7, 30), RecordedAt: jstTime(8, 0)}},
		}
		agg := AggregatePeriod([]DailyAggregate{day(0, 480), open})

		if agg.EarliestCheckIn == nil || !agg.EarliestCheckIn.Equal(jstTime(7, 30)) {
			t.Fatalf("unexpected earliest check-in: %v", agg.EarliestCheckIn)
		}
		// Open sessions never contribute a checkout extreme.
		if agg.LatestCheckOut == nil || !agg.LatestCheckOut.Equal(day(0, 480).Sessions[0].CheckOut.In(jst)) {
			t.Fatalf("unexpected latest checkout: %v", agg.LatestCheckOut)
		}
	})

	t.Run("an empty range yields the zero aggregate", func(t *testing.T) {
		t.Parallel()

		agg := AggregatePeriod(nil)
		if agg.TotalMinutes != 0 || agg.WorkDayCount != 0 || agg.AverageMinutes != 0 {
			t.Fatalf("expected zero aggregate, got %+v", agg)
		}
		if agg.EarliestCheckIn != nil || agg.LatestCheckOut != nil {
			t.Fatalf("expected no extremes, got %+v", agg)
		}
	})

	t.Run("recomputation from the same snapshot is identical", func(t *testing.T) {
		t.Parallel()

		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), CheckOut: timePtr(jstTime(17, 0)), RecordedAt: jstTime(17, 0)},
		}

		build := func() PeriodAggregate {
			daily := AggregateDay(testDate, Reconcile(events), HistoricalReference)
			return AggregatePeriod([]DailyAggregate{daily})
		}

		first, second := build(), build()
		if first.TotalMinutes != second.TotalMinutes ||
			first.WorkDayCount != second.WorkDayCount ||
			first.AverageMinutes != second.AverageMinutes ||
			first.LongestDayMinutes != second.LongestDayMinutes {
			t.Fatalf("recomputation diverged: %+v vs %+v", first, second)
		}
		if first.TotalMinutes != 480 {
			t.Fatalf("expected 480 minutes, got %d", first.TotalMinutes)
		}
	})
}
