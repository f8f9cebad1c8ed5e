package planner

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWeek is returned for malformed week identifiers.
var ErrInvalidWeek = errors.New("invalid week identifier")

// WeekKey returns the ISO-8601 week identifier of t, e.g. "2026-W43".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeek returns the Monday (00:00 UTC) of an ISO week identifier.
func ParseWeek(key string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, key)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, key)
	}

	// Week 1 is the week containing January 4th.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if WeekKey(monday) != key {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, key)
	}
	return monday, nil
}

// MondayOf returns the Monday starting the week that contains t.
func MondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// GetNextMonday returns the first Monday strictly after t.
func GetNextMonday(t time.Time) time.Time {
	return MondayOf(t).AddDate(0, 0, 7)
}

// ShiftWeek moves a week identifier by n weeks.
func ShiftWeek(key string, n int) (string, error) {
	monday, err := ParseWeek(key)
	if err != nil {
		return "", err
	}
	return WeekKey(monday.AddDate(0, 0, 7*n)), nil
}

// DayDate returns the calendar date of a day index within a week.
func DayDate(key string, day int) (time.Time, error) {
	monday, err := ParseWeek(key)
	if err != nil {
		return time.Time{}, err
	}
	return monday.AddDate(0, 0, day), nil
}
