package worktime

import (
	"fmt"
	"time"
)

// jst is the single civil timezone in which every wall-clock instant in the
// attendance domain is interpreted.
var jst = time.FixedZone("JST", 9*60*60)

// Location returns the civil timezone used for all attendance timestamps.
func Location() *time.Location {
	return jst
}

// Date identifies the business day an attendance event belongs to. It is a
// comparable value type suitable for use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a yyyy-mm-dd string into a Date. Impossible calendar
// dates such as 2025-13-40 are rejected.
func ParseDate(value string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, value, jst)
	if err != nil {
		return Date{}, fmt.Errorf("worktime: invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// DateOf returns the civil calendar date containing the instant.
func DateOf(t time.Time) Date {
	y, m, d := t.In(jst).Date()
	return Date{Year: y, Month: m, Day: d}
}

// String formats the date as yyyy-mm-dd.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// Time returns midnight of the date in the civil timezone.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, jst)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return DateOf(d.Time().AddDate(0, 0, 1))
}

// Before reports whether d falls earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d falls later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Weekday returns the day of week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// DaysBetween enumerates every calendar day from from to to inclusive. An
// inverted range yields nil.
func DaysBetween(from, to Date) []Date {
	if to.Before(from) {
		return nil
	}
	days := make([]Date, 0, 31)
	for d := from; !to.Before(d); d = d.Next() {
		days = append(days, d)
	}
	return days
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (Date, Date) {
	first := Date{Year: year, Month: month, Day: 1}
	last := DateOf(first.Time().AddDate(0, 1, -1))
	return first, last
}

// WeekRange returns the Monday-start week containing the reference date.
func WeekRange(reference Date) (Date, Date) {
	// In Go, Monday == 1 and Sunday == 0.
	offset := (int(reference.Weekday()) + 6) % 7
	first := DateOf(reference.Time().AddDate(0, 0, -offset))
	last := DateOf(first.Time().AddDate(0, 0, 6))
	return first, last
}

// YearRange returns January 1st and December 31st of the given year.
func YearRange(year int) (Date, Date) {
	return Date{Year: year, Month: time.January, Day: 1},
		Date{Year: year, Month: time.December, Day: 31}
}
