package models

import "time"

// DayLayout is the serialized form of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date with no time-of-day component, stored as a
// YYYY-MM-DD string in local time. The empty string means "no date".
// Lexicographic comparison of two valid Days matches chronological order.
type Day string

// Today returns the current local calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// DayOf truncates t to its local calendar day.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// ParseDay validates s as a YYYY-MM-DD date. The second return value
// reports whether the string parsed.
func ParseDay(s string) (Day, bool) {
	t, err := time.ParseInLocation(DayLayout, s, time.Local)
	// Round-trip through time so lenient forms like "2024-1-5" and overflow
	// days like 2024-02-31 are rejected, not normalized.
	if err != nil || s != t.Format(DayLayout) {
		return "", false
	}
	return Day(s), true
}

// IsZero reports whether d carries no date.
func (d Day) IsZero() bool {
	return d == ""
}

// AddDays returns the day n days after d. A zero Day is treated as today.
func (d Day) AddDays(n int) Day {
	base, ok := ParseDay(string(d))
	if !ok {
		base = Today()
	}
	t, _ := time.ParseInLocation(DayLayout, string(base), time.Local)
	return DayOf(t.AddDate(0, 0, n))
}

// OnOrBefore reports whether d is the same day as other or earlier.
// A zero Day is never on or before anything.
func (d Day) OnOrBefore(other Day) bool {
	return !d.IsZero() && string(d) <= string(other)
}
