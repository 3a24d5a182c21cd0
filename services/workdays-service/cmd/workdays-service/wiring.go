package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/workdays/libs/config"
	"github.com/md-rashed-zaman/workdays/libs/db"
	"github.com/md-rashed-zaman/workdays/libs/httpx"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/holidays"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// openHolidaySource builds the source selected by HOLIDAY_SOURCE. The pool is
// nil unless the postgres source is used.
func openHolidaySource(ctx context.Context, logger *slog.Logger) (holidays.Source, *db.Pool, error) {
	switch kind := strings.ToLower(config.String("HOLIDAY_SOURCE", "http")); kind {
	case "http":
		url := config.String("HOLIDAYS_URL", "https://content.capta.co/Recruitment/WorkingDays.json")
		logger.Info("holiday source", "kind", kind, "url", url)
		return holidays.NewHTTPSource(holidays.HTTPSourceConfig{
			URL:       url,
			Timeout:   config.Seconds("HOLIDAYS_TIMEOUT_SECONDS", 5*time.Second),
			MaxTries:  uint(config.Int("HOLIDAYS_FETCH_RETRIES", 3, 1)),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}, logger), nil, nil
	case "postgres":
		dsn, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return nil, nil, err
		}
		pool, err := db.Open(ctx, dsn, db.Options{
			MaxConns: int32(config.Int("DB_MAX_CONNS", 4, 1)),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		logger.Info("holiday source", "kind", kind)
		return holidays.NewPostgresSource(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown HOLIDAY_SOURCE %q", kind)
	}
}

func rateLimit(rdb *redis.Client, logger *slog.Logger) httpx.Middleware {
	perMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120, 0)
	if perMinute == 0 {
		return nil
	}
	failOpen := config.Bool("RATE_LIMIT_FAIL_OPEN", true)
	if rdb != nil {
		logger.Info("rate limiting enabled (redis)", "per_minute", perMinute)
		return httpx.RateLimit(httpx.NewRedisLimiter(rdb, perMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl")), logger, failOpen)
	}
	logger.Info("rate limiting enabled (in-memory)", "per_minute", perMinute)
	return httpx.RateLimit(httpx.NewMemoryLimiter(perMinute, time.Minute), logger, failOpen)
}
