package worktime

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	t.Run("accepts the canonical form", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDate("2025-04-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != (Date{Year: 2025, Month: time.April, Day: 1}) {
			t.Fatalf("unexpected date: %+v", d)
		}
		if d.String() != "2025-04-01" {
			t.Fatalf("round trip produced %q", d.String())
		}
	})

	t.Run("rejects impossible dates", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"2025-13-01", "2025-02-30", "20250401", ""} {
			if _, err := ParseDate(raw); err == nil {
				t.Fatalf("expected %q to be rejected", raw)
			}
		}
	})
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	t.Run("midnight anchors to the fixed zone", func(t *testing.T) {
		t.Parallel()

		d := Date{Year: 2025, Month: time.April, Day: 1}
		midnight := d.Time()
		if zone, offset := midnight.Zone(); zone != "JST" || offset != 9*60*60 {
			t.Fatalf("unexpected zone %s offset %d", zone, offset)
		}
		if DateOf(midnight) != d {
			t.Fatalf("DateOf did not round trip: %+v", DateOf(midnight))
		}
	})

	t.Run("next crosses month boundaries", func(t *testing.T) {
		t.Parallel()

		d := Date{Year: 2025, Month: time.April, Day: 30}
		if next := d.Next(); next != (Date{Year: 2025, Month: time.May, Day: 1}) {
			t.Fatalf("unexpected next day: %+v", next)
		}
	})

	t.Run("days between is inclusive and ordered", func(t *testing.T) {
		t.Parallel()

		from := Date{Year: 2025, Month: time.April, Day: 1}
		to := Date{Year: 2025, Month: time.April, Day: 3}
		days := DaysBetween(from, to)
		if len(days) != 3 {
			t.Fatalf("expected three days, got %d", len(days))
		}
		if days[0] != from || days[2] != to {
			t.Fatalf("unexpected bounds: %+v", days)
		}
		if got := DaysBetween(to, from); got != nil {
			t.Fatalf("reversed range should be empty, got %+v", got)
		}
	})
}

func TestPeriodRanges(t *testing.T) {
	t.Parallel()

	t.Run("month range covers the whole month", func(t *testing.T) {
		t.Parallel()

		from, to := MonthRange(2025, time.February)
		if from != (Date{Year: 2025, Month: time.February, Day: 1}) {
			t.Fatalf("unexpected start: %+v", from)
		}
		if to != (Date{Year: 2025, Month: time.February, Day: 28}) {
			t.Fatalf("unexpected end: %+v", to)
		}
	})

	t.Run("month range honors leap years", func(t *testing.T) {
		t.Parallel()

		_, to := MonthRange(2024, time.February)
		if to.Day != 29 {
			t.Fatalf("expected 29 days in February 2024, got %d", to.Day)
		}
	})

	t.Run("week range starts on Monday", func(t *testing.T) {
		t.Parallel()

		// 2025-04-03 is a Thursday.
		from, to := WeekRange(Date{Year: 2025, Month: time.April, Day: 3})
		if from != (Date{Year: 2025, Month: time.March, Day: 31}) {
			t.Fatalf("unexpected week start: %+v", from)
		}
		if to != (Date{Year: 2025, Month: time.April, Day: 6}) {
			t.Fatalf("unexpected week end: %+v", to)
		}
		if from.Weekday() != time.Monday {
			t.Fatalf("week must start on Monday, got %v", from.Weekday())
		}
	})

	t.Run("year range spans January through December", func(t *testing.T) {
		t.Parallel()

		from, to := YearRange(2025)
		if from != (Date{Year: 2025, Month: time.January, Day: 1}) || to != (Date{Year: 2025, Month: time.December, Day: 31}) {
			t.Fatalf("unexpected bounds: %+v .. %+v", from, to)
		}
	})
}
