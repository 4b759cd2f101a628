package calendar

import (
	"fmt"
	"iter"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// Policy decides which days of a range count towards an absence.
type Policy string

const (
	BusinessDays Policy = "business_days"
	CalendarDays Policy = "calendar_days"
)

func (p Policy) Valid() bool {
	return p == BusinessDays || p == CalendarDays
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Counts reports whether day d is counted under policy p.
func Counts(p Policy, d time.Time) bool {
	if p == BusinessDays {
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return true
}

// ExpandDays yields every counted date in [start, end] inclusive. The sequence
// is finite and can be ranged over any number of times.
func ExpandDays(start, end time.Time, p Policy) iter.Seq[time.Time] {
	from, to := Date(start), Date(end)
	return func(yield func(time.Time) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !Counts(p, d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// DaysBetween returns the number of calendar days from start to end. It works
// on civil dates, so ranges longer than time.Duration can hold are exact.
func DaysBetween(start, end time.Time) int {
	return int((Date(end).Unix() - Date(start).Unix()) / secondsPerDay)
}

// DayCount returns how many days of [start, end] count under policy p.
func DayCount(start, end time.Time, p Policy) int {
	from, to := Date(start), Date(end)
	if to.Before(from) {
		return 0
	}

	if p != BusinessDays {
		return DaysBetween(from, to) + 1
	}

	n := 0
	for range ExpandDays(from, to, p) {
		n++
	}
	return n
}
