// Package businesstime adds business days and business hours to instants
// under a fixed two-block daily schedule and a holiday calendar.
//
// All arithmetic happens on the civil representation of the instant in the
// schedule's reference location. Every operation returns a new time.Time.
package businesstime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("invalid business quantity")
	ErrNoWorkingDay    = errors.New("no working day within search window")
)

// Quantity is an amount of business time: whole days followed by hours.
// Hours may be fractional and are rounded once to whole minutes.
type Quantity struct {
	Days  int
	Hours float64
}

func (q Quantity) Validate() error {
	if q.Days < 0 {
		return fmt.Errorf("%w: days must be non-negative", ErrInvalidQuantity)
	}
	return validateHours(q.Hours)
}

// maxMinutes keeps round(hours*60) representable as an int64.
const maxMinutes = float64(math.MaxInt64 >> 1)

func validateHours(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return fmt.Errorf("%w: hours must be a finite non-negative number", ErrInvalidQuantity)
	}
	if hours*60 > maxMinutes {
		return fmt.Errorf("%w: hours too large", ErrInvalidQuantity)
	}
	return nil
}

// Engine performs business-time arithmetic. It holds no per-call state and
// is safe for concurrent use if its Calendar is.
type Engine struct {
	schedule Schedule
	calendar Calendar
}

func New(calendar Calendar, schedule Schedule) *Engine {
	return &Engine{schedule: schedule.withDefaults(), calendar: calendar}
}

// IsWorkingDay reports whether the civil date of t in the reference location
// is a working day.
func (e *Engine) IsWorkingDay(ctx context.Context, t time.Time) (bool, error) {
	return IsWorkingDay(ctx, e.calendar, DateOf(t.In(e.schedule.Location)))
}

// Compute normalizes t backward, then adds q.Days business days, then
// q.Hours business hours.
func (e *Engine) Compute(ctx context.Context, t time.Time, q Quantity) (time.Time, error) {
	if err := q.Validate(); err != nil {
		return time.Time{}, err
	}
	cur, err := e.NormalizeBackward(ctx, t)
	if err != nil {
		return time.Time{}, fmt.Errorf("normalize: %w", err)
	}
	if q.Days > 0 {
		cur, err = e.AddBusinessDays(ctx, cur, q.Days)
		if err != nil {
			return time.Time{}, fmt.Errorf("add business days: %w", err)
		}
	}
	if q.Hours > 0 {
		cur, err = e.AddBusinessHours(ctx, cur, q.Hours)
		if err != nil {
			return time.Time{}, fmt.Errorf("add business hours: %w", err)
		}
	}
	return cur, nil
}

// NormalizeBackward maps t to the latest working instant not after it.
// Instants on non-working days or before the morning block move to 17:00 of
// the previous working day; the lunch gap clamps to its start; evenings clamp
// to the end of the afternoon block.
func (e *Engine) NormalizeBackward(ctx context.Context, t time.Time) (time.Time, error) {
	s := e.schedule
	cur := t.In(s.Location)

	working, err := e.IsWorkingDay(ctx, cur)
	if err != nil {
		return time.Time{}, err
	}
	if !working || cur.Hour() < s.MorningStart {
		return e.previousWorkingDay(ctx, cur)
	}

	hour := cur.Hour()
	switch {
	case hour >= s.MorningEnd && hour < s.AfternoonStart:
		return s.at(cur, s.MorningEnd), nil
	case hour >= s.AfternoonEnd:
		return s.at(cur, s.AfternoonEnd), nil
	}
	return cur.Truncate(time.Second), nil
}

// AddBusinessDays moves t forward n business days keeping its wall-clock time.
// n == 0 returns t unchanged.
func (e *Engine) AddBusinessDays(ctx context.Context, t time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: days must be non-negative", ErrInvalidQuantity)
	}
	if n == 0 {
		return t, nil
	}

	cur := t.In(e.schedule.Location)
	for i := 0; i < n; i++ {
		next, err := e.seekWorkingDay(ctx, cur.AddDate(0, 0, 1), 1)
		if err != nil {
			return time.Time{}, err
		}
		cur = next
	}
	return cur, nil
}

// AddBusinessHours consumes round(hours*60) business minutes starting at t,
// walking through the morning and afternoon blocks of working days.
// hours that round to zero minutes return t unchanged.
func (e *Engine) AddBusinessHours(ctx context.Context, t time.Time, hours float64) (time.Time, error) {
	if err := validateHours(hours); err != nil {
		return time.Time{}, err
	}
	remaining := int64(math.Round(hours * 60))
	if remaining == 0 {
		return t, nil
	}

	s := e.schedule
	cur := t.In(s.Location)
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		working, err := e.IsWorkingDay(ctx, cur)
		if err != nil {
			return time.Time{}, err
		}
		if !working {
			if cur, err = e.nextWorkingMorning(ctx, cur); err != nil {
				return time.Time{}, err
			}
			continue
		}

		morningStart := s.at(cur, s.MorningStart)
		morningEnd := s.at(cur, s.MorningEnd)
		afternoonStart := s.at(cur, s.AfternoonStart)
		afternoonEnd := s.at(cur, s.AfternoonEnd)

		var intervalEnd time.Time
		switch {
		case cur.Before(morningStart):
			cur = morningStart
			intervalEnd = morningEnd
		case cur.Before(morningEnd):
			intervalEnd = morningEnd
		case cur.Before(afternoonStart):
			cur = afternoonStart
			intervalEnd = afternoonEnd
		case cur.Before(afternoonEnd):
			intervalEnd = afternoonEnd
		default:
			if cur, err = e.nextWorkingMorning(ctx, cur); err != nil {
				return time.Time{}, err
			}
			continue
		}

		available := int64(intervalEnd.Sub(cur) / time.Minute)
		if available == 0 {
			cur = intervalEnd
			continue
		}
		take := min(available, remaining)
		cur = cur.Add(time.Duration(take) * time.Minute)
		remaining -= take
	}
	return cur, nil
}

// previousWorkingDay returns 17:00 of the closest working day strictly
// before t's date.
func (e *Engine) previousWorkingDay(ctx context.Context, t time.Time) (time.Time, error) {
	s := e.schedule
	day, err := e.seekWorkingDay(ctx, DateOf(t).In(s.Location).AddDate(0, 0, -1), -1)
	if err != nil {
		return time.Time{}, err
	}
	return s.at(day, s.AfternoonEnd), nil
}

// nextWorkingMorning returns the start of the morning block of the closest
// working day strictly after t's date.
func (e *Engine) nextWorkingMorning(ctx context.Context, t time.Time) (time.Time, error) {
	s := e.schedule
	y, m, d := t.Date()
	return e.seekWorkingDay(ctx, time.Date(y, m, d+1, s.MorningStart, 0, 0, 0, s.Location), 1)
}

// seekWorkingDay steps from t one calendar day at a time in direction step
// until it reaches a working day, keeping the wall-clock time. t itself is
// checked first.
func (e *Engine) seekWorkingDay(ctx context.Context, t time.Time, step int) (time.Time, error) {
	cur := t
	for skipped := 0; ; skipped++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		working, err := e.IsWorkingDay(ctx, cur)
		if err != nil {
			return time.Time{}, err
		}
		if working {
			return cur, nil
		}
		if skipped >= e.schedule.MaxSearchDays {
			return time.Time{}, fmt.Errorf("%w: %d consecutive days from %s", ErrNoWorkingDay, skipped+1, DateOf(t))
		}
		cur = cur.AddDate(0, 0, step)
	}
}
