package businesstime

import (
	"context"
	"time"
)

// Calendar reports whether a civil date is a holiday. Implementations may
// answer from memory or block on a remote lookup; the engine calls it
// sequentially, one date at a time, and stops on the first error.
type Calendar interface {
	IsHoliday(ctx context.Context, d Date) (bool, error)
}

// CalendarFunc adapts a function to the Calendar interface.
type CalendarFunc func(ctx context.Context, d Date) (bool, error)

func (f CalendarFunc) IsHoliday(ctx context.Context, d Date) (bool, error) {
	return f(ctx, d)
}

// HolidaySet is a pre-materialized set of holidays. A nil set has no holidays.
// It is safe for concurrent reads once built.
type HolidaySet map[Date]struct{}

func NewHolidaySet(days ...Date) HolidaySet {
	s := make(HolidaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s HolidaySet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Merge copies every date of other into s.
func (s HolidaySet) Merge(other HolidaySet) {
	for d := range other {
		s[d] = struct{}{}
	}
}

func (s HolidaySet) IsHoliday(_ context.Context, d Date) (bool, error) {
	return s.Contains(d), nil
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d Date) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// IsWorkingDay reports whether d is neither a weekend day nor a holiday.
// The holiday lookup is skipped for weekends.
func IsWorkingDay(ctx context.Context, cal Calendar, d Date) (bool, error) {
	if IsWeekend(d) {
		return false, nil
	}
	if cal == nil {
		return true, nil
	}
	holiday, err := cal.IsHoliday(ctx, d)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}
