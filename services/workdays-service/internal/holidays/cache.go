package holidays

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/md-rashed-zaman/workdays/holidays"

type CacheConfig struct {
	// Store is an optional second-level cache. Its failures are logged and
	// otherwise ignored.
	Store YearStore
}

// Cache memoizes holidays per calendar year for the life of the process.
// Concurrent misses for the same year share one load; failed loads are not
// cached. Cache satisfies businesstime.Calendar, resolving each date's year
// on demand.
type Cache struct {
	source Source
	store  YearStore
	logger *slog.Logger
	tracer trace.Tracer

	mu    sync.RWMutex
	years map[int]businesstime.HolidaySet
	group singleflight.Group
}

func NewCache(source Source, logger *slog.Logger, cfg CacheConfig) *Cache {
	return &Cache{
		source: source,
		store:  cfg.Store,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		years:  map[int]businesstime.HolidaySet{},
	}
}

// IsHoliday implements businesstime.Calendar.
func (c *Cache) IsHoliday(ctx context.Context, d businesstime.Date) (bool, error) {
	set, err := c.Year(ctx, d.Year)
	if err != nil {
		return false, err
	}
	return set.Contains(d), nil
}

// Year returns the holidays of year. The returned set is shared and must
// not be modified.
func (c *Cache) Year(ctx context.Context, year int) (businesstime.HolidaySet, error) {
	if set, ok := c.cached(year); ok {
		return set, nil
	}

	// The load runs detached from the first caller's cancellation so other
	// waiters are not failed by it; the source bounds its own duration.
	ch := c.group.DoChan(strconv.Itoa(year), func() (any, error) {
		return c.load(context.WithoutCancel(ctx), year)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(businesstime.HolidaySet), nil
	}
}

// Prefetch loads every year and returns them merged into one set, for
// callers that want a pre-materialized calendar.
func (c *Cache) Prefetch(ctx context.Context, years ...int) (businesstime.HolidaySet, error) {
	out := businesstime.HolidaySet{}
	for _, year := range years {
		set, err := c.Year(ctx, year)
		if err != nil {
			return nil, err
		}
		out.Merge(set)
	}
	return out, nil
}

func (c *Cache) cached(year int) (businesstime.HolidaySet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.years[year]
	return set, ok
}

func (c *Cache) load(ctx context.Context, year int) (businesstime.HolidaySet, error) {
	if set, ok := c.cached(year); ok {
		return set, nil
	}

	ctx, span := c.tracer.Start(ctx, "holidays.load_year", trace.WithAttributes(attribute.Int("holidays.year", year)))
	defer span.End()

	days, origin, err := c.loadDays(ctx, year)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "holiday load failed")
		c.logger.Error("holiday load failed", "year", year, "err", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("holidays.origin", origin), attribute.Int("holidays.count", len(days)))

	set := businesstime.NewHolidaySet(days...)
	c.mu.Lock()
	c.years[year] = set
	c.mu.Unlock()
	c.logger.Info("holidays cached", "year", year, "origin", origin, "count", len(set))
	return set, nil
}

func (c *Cache) loadDays(ctx context.Context, year int) ([]businesstime.Date, string, error) {
	if c.store != nil {
		days, ok, err := c.store.Load(ctx, year)
		switch {
		case err != nil:
			c.logger.Warn("holiday store read failed", "year", year, "err", err)
		case ok:
			return days, "store", nil
		}
	}

	if c.source == nil {
		return nil, "", fmt.Errorf("%w: no source configured", ErrSourceUnavailable)
	}
	days, err := c.source.YearHolidays(ctx, year)
	if err != nil {
		return nil, "", err
	}

	if c.store != nil {
		if err := c.store.Save(ctx, year, days); err != nil {
			c.logger.Warn("holiday store write failed", "year", year, "err", err)
		}
	}
	return days, "source", nil
}
