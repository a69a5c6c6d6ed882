package util

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date layout used by FRED and the local store.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TruncateDay drops the time-of-day component and normalizes to UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
