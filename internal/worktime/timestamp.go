package worktime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedTimestamp is returned when a raw timestamp string cannot be
// interpreted as a valid instant under the fixed civil timezone rule.
var ErrMalformedTimestamp = errors.New("worktime: malformed timestamp")

// Layouts carrying an explicit zone marker. These are honoured and the
// resulting instant converted into the civil timezone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// Layouts with no zone marker. These are wall-clock times already expressed
// in the civil timezone and are parsed there directly, never as UTC. Mixing
// the two interpretations is what produced the recurring nine-hour offset in
// stored durations; every timestamp gets exactly one rule here.
var civilLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
}

// Bare clock readings, combined with a caller-supplied date.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ParseInstant canonicalizes a raw timestamp string into an instant in the
// civil timezone. It accepts RFC3339 forms with an explicit zone and
// zone-less date-time forms; bare clock readings require ParseInstantOn.
func ParseInstant(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrMalformedTimestamp)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.In(jst), nil
		}
	}

	for _, layout := range civilLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, jst); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}

// ParseInstantOn behaves like ParseInstant and additionally accepts bare
// HH:MM[:SS] readings, which are combined with the supplied business date.
func ParseInstantOn(date Date, raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range clockLayouts {
		clock, err := time.ParseInLocation(layout, trimmed, jst)
		if err != nil {
			continue
		}
		return time.Date(date.Year, date.Month, date.Day,
			clock.Hour(), clock.Minute(), clock.Second(), 0, jst), nil
	}
	return ParseInstant(raw)
}
