package main

import (
	"context"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/workdays/libs/clock"
	"github.com/md-rashed-zaman/workdays/libs/config"
	"github.com/md-rashed-zaman/workdays/libs/db"
	"github.com/md-rashed-zaman/workdays/libs/httpx"
	otelx "github.com/md-rashed-zaman/workdays/libs/otel"
	"github.com/md-rashed-zaman/workdays/libs/redisx"
	"github.com/md-rashed-zaman/workdays/libs/runtime"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/handlers"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/holidays"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	service := config.String("SERVICE_NAME", "workdays-service")
	port, err := config.Port("PORT", "3000")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service, version))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	tzName := config.String("REFERENCE_TIMEZONE", "America/Bogota")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Error("invalid reference timezone", "timezone", tzName, "err", err)
		os.Exit(1)
	}
	schedule := businesstime.DefaultSchedule(loc)
	schedule.MaxSearchDays = config.Int("MAX_SEARCH_DAYS", businesstime.DefaultMaxSearchDays, 1)

	rdb, err := redisx.Open(ctx, redisx.Options{
		Addr:     config.String("REDIS_ADDR", ""),
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0, 0),
	})
	if err != nil {
		logger.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	source, pool, err := openHolidaySource(ctx, logger)
	if err != nil {
		logger.Error("holiday source init failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	var store holidays.YearStore
	if rdb != nil {
		store = holidays.NewRedisStore(rdb,
			config.Seconds("HOLIDAYS_REDIS_TTL_SECONDS", 24*time.Hour),
			config.String("HOLIDAYS_REDIS_PREFIX", "workdays:holidays"))
	}
	cache := holidays.NewCache(source, logger, holidays.CacheConfig{Store: store})

	// Warm the current year; a failure here is retried on first use.
	if _, err := cache.Prefetch(ctx, time.Now().In(loc).Year()); err != nil {
		logger.Warn("holiday warm-up failed", "err", err)
	}

	checks := []runtime.ReadyCheck{}
	if rdb != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)})
	}
	if pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)

	h := handlers.New(cache, schedule, clock.NewSystem(), logger)
	mux.HandleFunc("/", h.Compute)

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: config.List("CORS_ALLOWED_METHODS", "GET,OPTIONS"),
			AllowedHeaders: config.List("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id"),
			MaxAge:         config.Seconds("CORS_MAX_AGE_SECONDS", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
		rateLimit(rdb, logger),
	)
	handler = otelhttp.NewHandler(handler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.Serve(ctx, srv, logger, 10*time.Second)
}
