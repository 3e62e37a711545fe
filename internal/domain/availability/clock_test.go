package availability

import (
	"errors"
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "09:30", 570},
		{"midnight", "00:00", 0},
		{"last minute", "23:59", 1439},
		{"with seconds", "09:30:45", 570},
		{"iso datetime", "2024-05-01T09:30:00Z", 570},
		{"iso with offset", "2024-05-01T09:30:00+02:00", 570},
		{"sql datetime", "2024-05-01 14:15:00", 855},
		{"leading whitespace", "  08:00", 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if err != nil {
				t.Fatalf("ParseClockTime(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseClockTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClockTime_Idempotent(t *testing.T) {
	// Re-parsing the canonical rendering must give the same minute value.
	for _, in := range []string{"00:00", "09:30", "2024-05-01T23:59:00Z"} {
		first, err := ParseClockTime(in)
		if err != nil {
			t.Fatalf("ParseClockTime(%q) error: %v", in, err)
		}
		second, err := ParseClockTime(FormatClockTime(first))
		if err != nil {
			t.Fatalf("ParseClockTime(FormatClockTime(%d)) error: %v", first, err)
		}
		if first != second {
			t.Errorf("round trip of %q: %d != %d", in, first, second)
		}
	}
}

func TestParseClockTime_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no colon", "0930"},
		{"hour out of range", "24:00"},
		{"minute out of range", "12:60"},
		{"negative hour", "-1:30"},
		{"garbage", "half past nine"},
		{"non-numeric minute", "09:xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClockTime(tt.in)
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Errorf("ParseClockTime(%q) error = %v, want ErrInvalidTimeFormat", tt.in, err)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-05-06", "2024-05-06T14:30:00Z", " 2024-05-06 "} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "06/05/2024", "2024-13-40", "yesterday"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidTimeFormat", in, err)
		}
	}
}

func TestFormatClockTime(t *testing.T) {
	if got := FormatClockTime(0); got != "00:00" {
		t.Errorf("FormatClockTime(0) = %q", got)
	}
	if got := FormatClockTime(570); got != "09:30" {
		t.Errorf("FormatClockTime(570) = %q", got)
	}
	if got := FormatClockTime(1439); got != "23:59" {
		t.Errorf("FormatClockTime(1439) = %q", got)
	}
}
