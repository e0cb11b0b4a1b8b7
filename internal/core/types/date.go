package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for business dates (day precision).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayStart truncates a time to UTC midnight of the same calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the UTC midnight of the following calendar day.
func NextDay(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// SameDay reports whether two times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}
