package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
	"github.com/redis/go-redis/v9"
)

// YearStore is a second-level cache shared between service instances.
type YearStore interface {
	Load(ctx context.Context, year int) ([]businesstime.Date, bool, error)
	Save(ctx context.Context, year int, days []businesstime.Date) error
}

// RedisStore keeps each year's holidays as a JSON array of ISO dates under
// "<prefix>:<year>".
type RedisStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration, prefix string) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "holidays"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(year int) string {
	return s.prefix + ":" + strconv.Itoa(year)
}

func (s *RedisStore) Load(ctx context.Context, year int) ([]businesstime.Date, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(year)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	days, err := decodeDays(raw)
	if err != nil {
		return nil, false, err
	}
	return days, true, nil
}

func (s *RedisStore) Save(ctx context.Context, year int, days []businesstime.Date) error {
	raw, err := encodeDays(days)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(year), raw, s.ttl).Err()
}

func encodeDays(days []businesstime.Date) ([]byte, error) {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return json.Marshal(out)
}

func decodeDays(raw []byte) ([]businesstime.Date, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cached holidays: %w", err)
	}
	out := make([]businesstime.Date, 0, len(items))
	for _, item := range items {
		d, err := businesstime.ParseDate(item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
