// Package holidays supplies holiday calendars to the business-time engine.
// Upstream payloads never leave this package; callers only see dates.
package holidays

import (
	"context"
	"errors"
	"strconv"

	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
)

// ErrSourceUnavailable marks failures to obtain holidays from the backing
// source (network, timeout, bad payload, database).
var ErrSourceUnavailable = errors.New("holiday source unavailable")

// Source returns the holidays of one calendar year.
type Source interface {
	YearHolidays(ctx context.Context, year int) ([]businesstime.Date, error)
}

// filterYear parses ISO date candidates and keeps the ones in year. Invalid
// candidates are dropped.
func filterYear(candidates []string, year int) []businesstime.Date {
	prefix := strconv.Itoa(year)
	out := make([]businesstime.Date, 0, len(candidates))
	seen := make(map[businesstime.Date]struct{}, len(candidates))
	for _, c := range candidates {
		if len(c) < len(prefix) || c[:len(prefix)] != prefix {
			continue
		}
		d, err := businesstime.ParseDate(c)
		if err != nil || d.Year != year {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
