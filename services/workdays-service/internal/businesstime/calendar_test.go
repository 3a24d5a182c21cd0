package businesstime

import (
	"context"
	"math"
	"testing"
	"time"
)

func nan() float64 { return math.NaN() }
func inf() float64 { return math.Inf(1) }

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-08")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d != (Date{2025, time.December, 8}) {
		t.Fatalf("unexpected date %+v", d)
	}
	if d.String() != "2025-12-08" {
		t.Fatalf("unexpected String %q", d.String())
	}
	for _, bad := range []string{"", "2025-13-01", "2025/12/08", "08-12-2025"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestDateOf_UsesLocation(t *testing.T) {
	// 03:00 UTC on Jan 2 is still Jan 1 in Bogota.
	utc := time.Date(2025, time.January, 2, 3, 0, 0, 0, time.UTC)
	if got := DateOf(utc.In(bogota)); got != (Date{2025, time.January, 1}) {
		t.Fatalf("DateOf = %s", got)
	}
}

func TestHolidaySet(t *testing.T) {
	s := NewHolidaySet(Date{2025, time.January, 1}, Date{2025, time.January, 6})
	other := NewHolidaySet(Date{2025, time.March, 24})
	s.Merge(other)

	for _, d := range []Date{{2025, time.January, 1}, {2025, time.January, 6}, {2025, time.March, 24}} {
		ok, err := s.IsHoliday(context.Background(), d)
		if err != nil || !ok {
			t.Fatalf("expected %s to be a holiday", d)
		}
	}
	if s.Contains(Date{2025, time.January, 2}) {
		t.Fatal("unexpected holiday")
	}

	var empty HolidaySet
	if empty.Contains(Date{2025, time.January, 1}) {
		t.Fatal("nil set should be empty")
	}
}

func TestIsWorkingDay(t *testing.T) {
	cal := NewHolidaySet(Date{2025, time.April, 17})
	tests := []struct {
		d    Date
		want bool
	}{
		{Date{2025, time.April, 16}, true},
		{Date{2025, time.April, 17}, false},
		{Date{2025, time.April, 19}, false},
		{Date{2025, time.April, 20}, false},
		{Date{2025, time.April, 21}, true},
	}
	for _, tt := range tests {
		got, err := IsWorkingDay(context.Background(), cal, tt.d)
		if err != nil {
			t.Fatalf("IsWorkingDay: %v", err)
		}
		if got != tt.want {
			t.Errorf("IsWorkingDay(%s) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestIsWorkingDay_SkipsCalendarOnWeekends(t *testing.T) {
	calls := 0
	cal := CalendarFunc(func(context.Context, Date) (bool, error) {
		calls++
		return false, nil
	})
	if _, err := IsWorkingDay(context.Background(), cal, Date{2025, time.April, 19}); err != nil {
		t.Fatalf("IsWorkingDay: %v", err)
	}
	if calls != 0 {
		t.Fatalf("calendar consulted for a weekend day")
	}
}
