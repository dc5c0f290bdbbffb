package util

import (
	"strconv"
	"time"
)

// DateLayout is the wire format for trade dates.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDate parses a YYYY-MM-DD trade date (UTC midnight).
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateDefault parses a trade date or returns def if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// DayBounds returns UTC midnight of the given date and of the next day,
// the range the market data provider expects for one full session.
func DayBounds(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}

// SessionOpen returns the session open instant for the given trade date.
// Moscow Exchange equities open at 10:00 MSK, which is 07:00 UTC.
func SessionOpen(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 7, 0, 0, 0, time.UTC)
}

// PrevTradingDay steps back to the most recent weekday before date.
func PrevTradingDay(date time.Time) time.Time {
	d := date.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
