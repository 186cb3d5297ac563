package worktime

import "time"

// ReferenceFunc chooses the instant that substitutes for the checkout when
// computing the duration of an open session.
type ReferenceFunc func(Session) time.Time

// HistoricalReference reports open sessions against their own RecordedAt, so
// re-running a historical report later never changes the reported past.
func HistoricalReference(s Session) time.Time {
	return s.RecordedAt
}

// LiveReference reports open sessions against the current wall-clock instant
// supplied by now. A nil now falls back to time.Now.
func LiveReference(now func() time.Time) ReferenceFunc {
	if now == nil {
		now = time.Now
	}
	return func(Session) time.Time {
		return now().In(jst)
	}
}

// Minutes computes the session's elapsed whole minutes. For an open session
// the reference instant substitutes for the checkout.
//
// The numeric policy is exact and deliberate: whole seconds first, then
// rounded up to minutes, then floored at one. A session that exists is never
// reported as zero minutes, so accidental double taps within the same second
// still register instead of vanishing from totals.
func (s Session) Minutes(reference time.Time) int {
	end := reference
	if s.CheckOut != nil {
		end = *s.CheckOut
	}

	seconds := int64(end.Sub(s.CheckIn) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	minutes := int((seconds + 59) / 60)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// BreakMinutes computes the whole minutes spent on break during the session.
// A session with no break, or with a break still in progress, reports zero.
// Unlike Minutes there is no one-minute floor: a break that closed within the
// same second it opened counts as nothing.
func (s Session) BreakMinutes() int {
	if s.BreakStart == nil || s.BreakEnd == nil {
		return 0
	}
	seconds := int64(s.BreakEnd.Sub(*s.BreakStart) / time.Second)
	if seconds <= 0 {
		return 0
	}
	return int((seconds + 59) / 60)
}
