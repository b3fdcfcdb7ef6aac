package services

import (
	"fmt"
	"time"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// NextWeekStart returns the Sunday opening the week to schedule: the next
// Sunday strictly after now.
func NextWeekStart(now time.Time) time.Time {
	return nextSunday(now)
}

// ParseWeekStart parses a YYYY-MM-DD date that must fall on a Sunday
func ParseWeekStart(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: week start %q is not a YYYY-MM-DD date", ErrInvalidInput, s)
	}
	if t.Weekday() != time.Sunday {
		return time.Time{}, fmt.Errorf("%w: week start %s is a %s, not a Sunday", ErrInvalidInput, s, t.Weekday())
	}
	return t, nil
}

// previousWeekStart is the start of the week before weekStart
func previousWeekStart(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, -7)
}

// nextSunday returns the next Sunday from the given date
func nextSunday(from time.Time) time.Time {
	// Normalize to start of day to avoid time-of-day issues
	normalized := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	// Sunday is 0, so we need (7 - weekday) days, but if already Sunday, add 7
	daysUntilSunday := (7 - int(normalized.Weekday())) % 7
	if daysUntilSunday == 0 {
		daysUntilSunday = 7
	}

	return normalized.AddDate(0, 0, daysUntilSunday)
}
