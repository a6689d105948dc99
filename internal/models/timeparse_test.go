package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"naive date-time", "2024-01-01T00:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"naive with fraction", "2024-12-31T23:59:59.123456", time.Date(2024, 12, 31, 23, 59, 59, 123456000, time.UTC)},
		{"zulu", "2024-06-15T10:30:00Z", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"offset converted to utc", "2024-06-15T12:30:00+02:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"minute precision", "2024-06-15T10:30", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"space separator", "2024-06-15 10:30:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2024-06-15  ", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"nanos truncated", "2024-06-15T10:30:00.123456789Z", time.Date(2024, 6, 15, 10, 30, 0, 123456000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp("start_date", tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%q) location = %v, want UTC", tt.in, got.Location())
			}
		})
	}
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "2024/01/01", "01-01-2024"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTimestamp("end_date", in)
			if err == nil {
				t.Fatalf("ParseTimestamp(%q) should fail", in)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if perr.Field != "end_date" || perr.Value != in {
				t.Errorf("ParseError = {%q, %q}, want {end_date, %q}", perr.Field, perr.Value, in)
			}
		})
	}
}

func TestParseOptionalTimestamp(t *testing.T) {
	got, err := ParseOptionalTimestamp("test_next_update", "  ")
	if err != nil || got != nil {
		t.Fatalf("blank value: got (%v, %v), want (nil, nil)", got, err)
	}

	got, err = ParseOptionalTimestamp("test_next_update", "2025-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || !got.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v, want 2025-02-01", got)
	}

	if _, err := ParseOptionalTimestamp("test_next_update", "soon"); err == nil {
		t.Error("malformed value should fail")
	}
}
