package ledger

import "time"

// Calendar days are UTC days. A transaction stamped 2024-03-01T23:30:00-05:00
// belongs to 2024-03-02.

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// MinDate and MaxDate bound the calendar dates the API accepts (years 1 to 9999).
var (
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// DateOf truncates t to midnight of its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (both truncated to dates).
// It works on Unix seconds, so spans longer than a time.Duration can hold are exact.
func DaysBetween(a, b time.Time) int {
	return int((DateOf(b).Unix() - DateOf(a).Unix()) / secondsPerDay)
}

// InRange reports whether t's calendar day lies within [MinDate, MaxDate].
func InRange(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(MinDate) && !d.After(MaxDate)
}

// MonthBounds returns the first and last calendar day of the given month.
// The last day is found by jumping past day 28 into the next month and stepping
// back by that day-of-month, which handles 28/29/30/31-day months alike.
func MonthBounds(year int, month time.Month) (first, last time.Time) {
	first = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(year, month, 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	last = next.AddDate(0, 0, -next.Day())
	return first, last
}

// IsMonthStart reports whether t falls on the first day of a month.
func IsMonthStart(t time.Time) bool { return t.Day() == 1 }
