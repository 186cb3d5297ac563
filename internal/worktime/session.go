package worktime

import (
	"sort"
	"time"
)

// Event is one raw attendance row as supplied by the event store. Rows are
// append-only and may be partial, duplicated, or recorded out of order; the
// reconciler resolves them into sessions.
type Event struct {
	UserID     string
	Date       Date
	CheckIn    *time.Time
	CheckOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	RecordedAt time.Time
}

// Session is one reconstructed check-in/check-out pair for a user on one
// date. A nil CheckOut means the session is still open. RecordedAt carries
// the source event's write time, which stands in for the checkout when an
// open session is reported historically.
type Session struct {
	CheckIn    time.Time
	CheckOut   *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	RecordedAt time.Time
}

// Open reports whether the session has no recorded checkout yet.
func (s Session) Open() bool {
	return s.CheckOut == nil
}

// Reconcile resolves the raw events of one user and one calendar date into
// an ordered list of non-overlapping sessions.
//
// Events are processed in RecordedAt order (stable, so insertion order breaks
// ties) and deduplicated by check-in instant: the store emits multiple
// partial rows for what is logically one session, and the row that finally
// carries the checkout wins over its open predecessors. Events without a
// check-in never yield sessions. Anomalies such as several open sessions on
// one date are surfaced as-is rather than rejected, so operators can see and
// correct the underlying rows.
func Reconcile(events []Event) []Session {
	if len(events) == 0 {
		return nil
	}

	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RecordedAt.Before(ordered[j].RecordedAt)
	})

	kept := make(map[int64]Event)
	keys := make([]int64, 0, len(ordered))
	for _, event := range ordered {
		if event.CheckIn == nil {
			continue
		}
		key := event.CheckIn.UnixNano()
		existing, ok := kept[key]
		if !ok {
			kept[key] = event
			keys = append(keys, key)
			continue
		}
		// A row that already carries a checkout is final for its key.
		if existing.CheckOut == nil {
			kept[key] = event
		}
	}

	if len(keys) == 0 {
		return nil
	}

	sessions := make([]Session, 0, len(keys))
	for _, key := range keys {
		event := kept[key]
		session := Session{
			CheckIn:    *event.CheckIn,
			RecordedAt: event.RecordedAt,
		}
		if event.CheckOut != nil {
			out := *event.CheckOut
			session.CheckOut = &out
		}
		if event.BreakStart != nil {
			start := *event.BreakStart
			session.BreakStart = &start
		}
		if event.BreakEnd != nil {
			end := *event.BreakEnd
			session.BreakEnd = &end
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CheckIn.Equal(sessions[j].CheckIn) {
			return sessions[i].RecordedAt.Before(sessions[j].RecordedAt)
		}
		return sessions[i].CheckIn.Before(sessions[j].CheckIn)
	})

	return sessions
}

// WorkDays derives the set of distinct calendar dates with at least one
// check-in. Membership is attendance based and deliberately independent of
// computed durations: a day whose only session collapses to the one-minute
// floor still counts for headcount-style reporting.
func WorkDays(events []Event) map[Date]struct{} {
	days := make(map[Date]struct{})
	for _, event := range events {
		if event.CheckIn == nil {
			continue
		}
		days[event.Date] = struct{}{}
	}
	return days
}
