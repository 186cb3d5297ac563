package worktime

import (
	"testing"
	"time"
)

func jstTime(hour, minute int) time.Time {
	return time.Date(2025, time.April, 1, hour, minute, 0, 0, jst)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

var testDate = Date{Year: 2025, Month: time.April, Day: 1}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("collapses partial rows for one session", func(t *testing.T) {
		t.Parallel()

		// The store writes an open row at check-in and a second row for the
		// same check-in once the checkout is known.
		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), CheckOut: timePtr(jstTime(17, 0)), RecordedAt: jstTime(17, 0)},
		}

		sessions := Reconcile(events)
		if len(sessions) != 1 {
			t.Fatalf("expected one session, got %d", len(sessions))
		}
		if sessions[0].Open() {
			t.Fatalf("expected a closed session")
		}
		if !sessions[0].CheckOut.Equal(jstTime(17, 0)) {
			t.Fatalf("expected checkout 17:00, got %s", sessions[0].CheckOut)
		}
	})

	t.Run("a closed row is final for its check-in key", func(t *testing.T) {
		t.Parallel()

		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), CheckOut: timePtr(jstTime(12, 0)), RecordedAt: jstTime(12, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(13, 0)},
		}

		sessions := Reconcile(events)
		if len(sessions) != 1 {
			t.Fatalf("expected one session, got %d", len(sessions))
		}
		if sessions[0].CheckOut == nil || !sessions[0].CheckOut.Equal(jstTime(12, 0)) {
			t.Fatalf("expected the closed row to win, got %+v", sessions[0])
		}
	})

	t.Run("sorts internally when rows arrive out of order", func(t *testing.T) {
		t.Parallel()

		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(13, 0)), CheckOut: timePtr(jstTime(18, 0)), RecordedAt: jstTime(18, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), CheckOut: timePtr(jstTime(12, 0)), RecordedAt: jstTime(12, 0)},
		}

		sessions := Reconcile(events)
		if len(sessions) != 2 {
			t.Fatalf("expected two sessions, got %d", len(sessions))
		}
		if !sessions[0].CheckIn.Equal(jstTime(9, 0)) || !sessions[1].CheckIn.Equal(jstTime(13, 0)) {
			t.Fatalf("expected sessions ordered by check-in, got %+v", sessions)
		}
	})

	t.Run("keeps a re-check-in distinct from the abandoned session", func(t *testing.T) {
		t.Parallel()

		// Someone checked in, never checked out, then checked in again.
		// Operators need to see both rows to correct the data manually.
		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(14, 0)), RecordedAt: jstTime(14, 0)},
		}

		sessions := Reconcile(events)
		if len(sessions) != 2 {
			t.Fatalf("expected both sessions to survive, got %d", len(sessions))
		}
		for i, session := range sessions {
			if !session.Open() {
				t.Fatalf("expected session %d to be open", i)
			}
		}
		// The abandoned session reports against its own write time, not the
		// second session's check-in.
		if !sessions[0].RecordedAt.Equal(jstTime(9, 0)) {
			t.Fatalf("expected first session to keep its own RecordedAt, got %s", sessions[0].RecordedAt)
		}
	})

	t.Run("carries break fields from the winning row", func(t *testing.T) {
		t.Parallel()

		events := []Event{
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), BreakStart: timePtr(jstTime(12, 0)), RecordedAt: jstTime(12, 0)},
			{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), BreakStart: timePtr(jstTime(12, 0)), BreakEnd: timePtr(jstTime(13, 0)), RecordedAt: jstTime(13, 0)},
		}

		sessions := Reconcile(events)
		if len(sessions) != 1 {
			t.Fatalf("expected one session, got %d", len(sessions))
		}
		if sessions[0].BreakStart == nil || !sessions[0].BreakStart.Equal(jstTime(12, 0)) {
			t.Fatalf("expected break start 12:00, got %+v", sessions[0].BreakStart)
		}
		if sessions[0].BreakEnd == nil || !sessions[0].BreakEnd.Equal(jstTime(13, 0)) {
			t.Fatalf("expected break end 13:00, got %+v", sessions[0].BreakEnd)
		}
	})

	t.Run("ignores rows without a check-in", func(t *testing.T) {
		t.Parallel()

		events := []Event{
			{Date: testDate, CheckOut: timePtr(jstTime(17, 0)), RecordedAt: jstTime(17, 0)},
		}
		if sessions := Reconcile(events); sessions != nil {
			t.Fatalf("expected no sessions, got %+v", sessions)
		}
	})

	t.Run("returns nil for no events", func(t *testing.T) {
		t.Parallel()

		if sessions := Reconcile(nil); sessions != nil {
			t.Fatalf("expected nil, got %+v", sessions)
		}
	})
}

func TestWorkDays(t *testing.T) {
	t.Parallel()

	second := testDate.Next()
	events := []Event{
		{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
		{Date: testDate, CheckIn: timePtr(jstTime(9, 0)), CheckOut: timePtr(jstTime(9, 0)), RecordedAt: jstTime(9, 0)},
		{Date: second, CheckOut: timePtr(jstTime(17, 0)), RecordedAt: jstTime(17, 0)},
	}

	days := WorkDays(events)
	if len(days) != 1 {
		t.Fatalf("expected one work day, got %d", len(days))
	}
	if _, ok := days[testDate]; !ok {
		t.Fatalf("expected %s in the work-day set", testDate)
	}
	// A checkout-only row never makes the day an attendance day.
	if _, ok := days[second]; ok {
		t.Fatalf("did not expect %s in the work-day set", second)
	}
}
