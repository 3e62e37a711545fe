package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClockTime normalizes a time-of-day string into minutes since midnight.
// Accepted representations:
//
//	"09:30"                    plain wall-clock time
//	"2024-05-01T09:30:00Z"     ISO 8601 datetime
//	"2024-05-01 09:30:00"      SQL datetime
//
// Datetime forms contribute only their time-of-day; the date part is ignored.
// Seconds, fractions, and timezone suffixes after the minute component are
// ignored as well. The result is in [0, 1439].
func ParseClockTime(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTimeFormat)
	}

	// Strip the date part of datetime representations.
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[i+1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	// The minute component may carry trailing seconds/zone text in compact
	// forms like "09:30:00+02:00"; two leading digits are authoritative.
	minStr := parts[1]
	if len(minStr) > 2 {
		minStr = minStr[:2]
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}
	return hour*60 + minute, nil
}

// FormatClockTime renders minutes since midnight as "HH:MM".
func FormatClockTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate normalizes a calendar date string to midnight UTC. Both the
// plain "2006-01-02" form and RFC 3339 timestamps are accepted; timestamp
// forms contribute only their date part.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidTimeFormat, raw)
}
