package worktime

import (
	"testing"
	"time"
)

func TestSessionMinutes(t *testing.T) {
	t.Parallel()

	t.Run("closed eight hour session", func(t *testing.T) {
		t.Parallel()

		session := Session{CheckIn: jstTime(9, 0), CheckOut: timePtr(jstTime(17, 0))}
		if got := session.Minutes(time.Time{}); got != 480 {
			t.Fatalf("expected 480 minutes, got %d", got)
		}
	})

	t.Run("open session reports against the reference instant", func(t *testing.T) {
		t.Parallel()

		session := Session{CheckIn: jstTime(9, 0), RecordedAt: jstTime(9, 5)}
		if got := session.Minutes(HistoricalReference(session)); got != 5 {
			t.Fatalf("expected 5 minutes, got %d", got)
		}

		now := func() time.Time { return jstTime(10, 0) }
		if got := session.Minutes(LiveReference(now)(session)); got != 60 {
			t.Fatalf("expected 60 minutes, got %d", got)
		}
	})

	t.Run("partial minutes round up", func(t *testing.T) {
		t.Parallel()

		out := jstTime(9, 1).Add(30 * time.Second)
		session := Session{CheckIn: jstTime(9, 0), CheckOut: &out}
		if got := session.Minutes(time.Time{}); got != 2 {
			t.Fatalf("expected 90 seconds to round up to 2 minutes, got %d", got)
		}
	})

	t.Run("a session never reports zero minutes", func(t *testing.T) {
		t.Parallel()

		// Accidental double tap within the same second.
		session := Session{CheckIn: jstTime(9, 0), CheckOut: timePtr(jstTime(9, 0))}
		if got := session.Minutes(time.Time{}); got != 1 {
			t.Fatalf("expected floor of 1 minute, got %d", got)
		}
	})

	t.Run("negative raw deltas clamp to the floor", func(t *testing.T) {
		t.Parallel()

		session := Session{CheckIn: jstTime(9, 0), CheckOut: timePtr(jstTime(8, 0))}
		if got := session.Minutes(time.Time{}); got != 1 {
			t.Fatalf("expected 1 minute, got %d", got)
		}
	})
}

func TestSessionBreakMinutes(t *testing.T) {
	t.Parallel()

	t.Run("closed break", func(t *testing.T) {
		t.Parallel()

		session := Session{
			CheckIn:    jstTime(9, 0),
			BreakStart: timePtr(jstTime(12, 0)),
			BreakEnd:   timePtr(jstTime(13, 0)),
		}
		if got := session.BreakMinutes(); got != 60 {
			t.Fatalf("expected 60 break minutes, got %d", got)
		}
	})

	t.Run("open break counts as nothing yet", func(t *testing.T) {
		t.Parallel()

		session := Session{CheckIn: jstTime(9, 0), BreakStart: timePtr(jstTime(12, 0))}
		if got := session.BreakMinutes(); got != 0 {
			t.Fatalf("expected 0 break minutes, got %d", got)
		}
	})

	t.Run("no one minute floor for breaks", func(t *testing.T) {
		t.Parallel()

		session := Session{
			CheckIn:    jstTime(9, 0),
			BreakStart: timePtr(jstTime(12, 0)),
			BreakEnd:   timePtr(jstTime(12, 0)),
		}
		if got := session.BreakMinutes(); got != 0 {
			t.Fatalf("expected 0 break minutes, got %d", got)
		}
	})
}
