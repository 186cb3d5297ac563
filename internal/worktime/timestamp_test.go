package worktime

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstant(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, time.April, 1, 9, 0, 0, 0, jst)

	t.Run("honours explicit UTC markers and converts to the civil zone", func(t *testing.T) {
		t.Parallel()

		got, err := ParseInstant("2025-04-01T00:00:00Z")
		if err != nil {
			t.Fatalf("ParseInstant returned error: %v", err)
		}
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
		if got.Location() != jst {
			t.Fatalf("expected civil zone, got %s", got.Location())
		}
	})

	t.Run("parses zone-less date-times as civil wall clock", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"2025-04-01T09:00:00",
			"2025-04-01 09:00:00",
			"2025/4/1 9:00:00",
		} {
			got, err := ParseInstant(raw)
			if err != nil {
				t.Fatalf("ParseInstant(%q) returned error: %v", raw, err)
			}
			if !got.Equal(want) {
				t.Fatalf("ParseInstant(%q): expected %s, got %s", raw, want, got)
			}
		}
	})

	t.Run("tagged and untagged forms of the same wall clock agree", func(t *testing.T) {
		t.Parallel()

		// The recurring 540 minute defect came from mixing these two.
		tagged, err := ParseInstant("2025-04-01T09:00:00+09:00")
		if err != nil {
			t.Fatalf("ParseInstant returned error: %v", err)
		}
		untagged, err := ParseInstant("2025-04-01T09:00:00")
		if err != nil {
			t.Fatalf("ParseInstant returned error: %v", err)
		}
		if !tagged.Equal(untagged) {
			t.Fatalf("tagged %s and untagged %s diverged", tagged, untagged)
		}
	})

	t.Run("rejects impossible calendar instants", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"2025-13-40", "", "not-a-time", "2025-02-30T09:00:00"} {
			if _, err := ParseInstant(raw); !errors.Is(err, ErrMalformedTimestamp) {
				t.Fatalf("ParseInstant(%q): expected ErrMalformedTimestamp, got %v", raw, err)
			}
		}
	})
}

func TestParseInstantOn(t *testing.T) {
	t.Parallel()

	date := Date{Year: 2025, Month: time.April, Day: 1}

	t.Run("combines bare clock readings with the business date", func(t *testing.T) {
		t.Parallel()

		got, err := ParseInstantOn(date, "09:30")
		if err != nil {
			t.Fatalf("ParseInstantOn returned error: %v", err)
		}
		want := time.Date(2025, time.April, 1, 9, 30, 0, 0, jst)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}

		got, err = ParseInstantOn(date, "09:30:45")
		if err != nil {
			t.Fatalf("ParseInstantOn returned error: %v", err)
		}
		want = time.Date(2025, time.April, 1, 9, 30, 45, 0, jst)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("falls back to full forms", func(t *testing.T) {
		t.Parallel()

		got, err := ParseInstantOn(date, "2025-04-02T01:00:00")
		if err != nil {
			t.Fatalf("ParseInstantOn returned error: %v", err)
		}
		// The explicit date wins over the supplied business date.
		want := time.Date(2025, time.April, 2, 1, 0, 0, 0, jst)
		if !got.Equal(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	})

	t.Run("propagates malformed input", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseInstantOn(date, "25:99"); !errors.Is(err, ErrMalformedTimestamp) {
			t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
		}
	})
}
