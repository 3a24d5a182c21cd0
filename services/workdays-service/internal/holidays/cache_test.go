package holidays

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
)

type fakeSource struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
	days    map[int][]businesstime.Date
}

func (s *fakeSource) YearHolidays(ctx context.Context, year int) ([]businesstime.Date, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.fail.Load() {
		return nil, ErrSourceUnavailable
	}
	return s.days[year], nil
}

type memoryStore struct {
	mu      sync.Mutex
	years   map[int][]businesstime.Date
	loadErr error
	saved   int
}

func (s *memoryStore) Load(_ context.Context, year int) ([]businesstime.Date, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	days, ok := s.years[year]
	return days, ok, nil
}

func (s *memoryStore) Save(_ context.Context, year int, days []businesstime.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.years == nil {
		s.years = map[int][]businesstime.Date{}
	}
	s.years[year] = days
	s.saved++
	return nil
}

var (
	newYear   = businesstime.Date{Year: 2025, Month: time.January, Day: 1}
	goodFri   = businesstime.Date{Year: 2025, Month: time.April, Day: 18}
	newYear26 = businesstime.Date{Year: 2026, Month: time.January, Day: 1}
)

func TestCache_SingleFlight(t *testing.T) {
	src := &fakeSource{
		release: make(chan struct{}),
		days:    map[int][]businesstime.Date{2025: {newYear, goodFri}},
	}
	c := NewCache(src, discardLogger(), CacheConfig{})

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := c.Year(context.Background(), 2025)
			if err == nil && !set.Contains(goodFri) {
				err = errors.New("missing holiday")
			}
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Year: %v", err)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("expected one upstream load, got %d", n)
	}
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	src := &fakeSource{days: map[int][]businesstime.Date{2025: {newYear}}}
	src.fail.Store(true)
	c := NewCache(src, discardLogger(), CacheConfig{})

	if _, err := c.Year(context.Background(), 2025); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	src.fail.Store(false)
	set, err := c.Year(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Year: %v", err)
	}
	if !set.Contains(newYear) || src.calls.Load() != 2 {
		t.Fatalf("expected a fresh load after failure, calls=%d", src.calls.Load())
	}
}

func TestCache_IsHolidayPerYear(t *testing.T) {
	src := &fakeSource{days: map[int][]businesstime.Date{
		2025: {newYear},
		2026: {newYear26},
	}}
	c := NewCache(src, discardLogger(), CacheConfig{})
	ctx := context.Background()

	for _, d := range []businesstime.Date{newYear, newYear26} {
		ok, err := c.IsHoliday(ctx, d)
		if err != nil || !ok {
			t.Fatalf("IsHoliday(%s) = %v, %v", d, ok, err)
		}
	}
	ok, err := c.IsHoliday(ctx, businesstime.Date{Year: 2025, Month: time.January, Day: 2})
	if err != nil || ok {
		t.Fatalf("unexpected holiday: %v, %v", ok, err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected one load per year, got %d", src.calls.Load())
	}
}

func TestCache_UsesStore(t *testing.T) {
	store := &memoryStore{years: map[int][]businesstime.Date{2025: {goodFri}}}
	src := &fakeSource{}
	c := NewCache(src, discardLogger(), CacheConfig{Store: store})

	set, err := c.Year(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Year: %v", err)
	}
	if !set.Contains(goodFri) || src.calls.Load() != 0 {
		t.Fatalf("expected store hit without upstream call, calls=%d", src.calls.Load())
	}

	src.days = map[int][]businesstime.Date{2026: {newYear26}}
	if _, err := c.Year(context.Background(), 2026); err != nil {
		t.Fatalf("Year: %v", err)
	}
	if store.saved != 1 || len(store.years[2026]) != 1 {
		t.Fatalf("expected source result to be written to store, saved=%d", store.saved)
	}
}

func TestCache_StoreFailureFallsBackToSource(t *testing.T) {
	store := &memoryStore{loadErr: errors.New("redis down")}
	src := &fakeSource{days: map[int][]businesstime.Date{2025: {newYear}}}
	c := NewCache(src, discardLogger(), CacheConfig{Store: store})

	set, err := c.Year(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Year: %v", err)
	}
	if !set.Contains(newYear) || src.calls.Load() != 1 {
		t.Fatalf("expected fallback to source, calls=%d", src.calls.Load())
	}
}

func TestCache_Prefetch(t *testing.T) {
	src := &fakeSource{days: map[int][]businesstime.Date{
		2025: {newYear, goodFri},
		2026: {newYear26},
	}}
	c := NewCache(src, discardLogger(), CacheConfig{})

	set, err := c.Prefetch(context.Background(), 2025, 2026)
	if err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if len(set) != 3 || !set.Contains(newYear26) {
		t.Fatalf("unexpected merged set %v", set)
	}

	src.fail.Store(true)
	if _, err := c.Prefetch(context.Background(), 2027); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestCache_CallerCancellation(t *testing.T) {
	src := &fakeSource{release: make(chan struct{}), days: map[int][]businesstime.Date{2025: {newYear}}}
	c := NewCache(src, discardLogger(), CacheConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Year(ctx, 2025); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The detached load still completes and populates the cache.
	close(src.release)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.cached(2025); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("detached load did not populate the cache")
}

func TestEncodeDecodeDays(t *testing.T) {
	raw, err := encodeDays([]businesstime.Date{newYear, goodFri})
	if err != nil {
		t.Fatalf("encodeDays: %v", err)
	}
	if string(raw) != `["2025-01-01","2025-04-18"]` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	if _, err := decodeDays([]byte(`["2025-02-30"]`)); err == nil {
		t.Fatal("expected error for invalid cached date")
	}
}
