package businesstime

import "time"

// DefaultMaxSearchDays bounds how many consecutive non-working days a single
// day search may cross before giving up with ErrNoWorkingDay.
const DefaultMaxSearchDays = 3660

// Schedule is the fixed weekly work schedule: a morning block
// [MorningStart, MorningEnd) and an afternoon block
// [AfternoonStart, AfternoonEnd), in whole hours of the reference timezone.
type Schedule struct {
	Location       *time.Location
	MorningStart   int
	MorningEnd     int
	AfternoonStart int
	AfternoonEnd   int
	MaxSearchDays  int
}

// DefaultSchedule returns the 08-12 / 13-17 schedule in loc.
func DefaultSchedule(loc *time.Location) Schedule {
	if loc == nil {
		loc = time.UTC
	}
	return Schedule{
		Location:       loc,
		MorningStart:   8,
		MorningEnd:     12,
		AfternoonStart: 13,
		AfternoonEnd:   17,
		MaxSearchDays:  DefaultMaxSearchDays,
	}
}

func (s Schedule) withDefaults() Schedule {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.MaxSearchDays <= 0 {
		s.MaxSearchDays = DefaultMaxSearchDays
	}
	return s
}

// at returns the instant on t's civil date at hour:00:00.000.
func (s Schedule) at(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, s.Location)
}
