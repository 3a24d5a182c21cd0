package holidays

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
)

const maxPayloadBytes = 4 << 20

type HTTPSourceConfig struct {
	URL       string
	Timeout   time.Duration
	MaxTries  uint
	BaseDelay time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// HTTPSource downloads the full holiday list from a JSON endpoint and keeps
// the dates of the requested year.
type HTTPSource struct {
	url       string
	maxTries  uint
	baseDelay time.Duration
	http      *http.Client
	logger    *slog.Logger
}

func NewHTTPSource(cfg HTTPSourceConfig, logger *slog.Logger) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &HTTPSource{
		url:       strings.TrimSpace(cfg.URL),
		maxTries:  cfg.MaxTries,
		baseDelay: cfg.BaseDelay,
		http:      &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		logger:    logger,
	}
}

func (s *HTTPSource) YearHolidays(ctx context.Context, year int) ([]businesstime.Date, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	candidates, err := ExtractDates(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return filterYear(candidates, year), nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	if s.url == "" {
		return nil, errors.New("holidays url not configured")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.baseDelay

	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.http.Do(req)
		if err != nil {
			s.logger.Warn("holiday fetch failed", "attempt", attempt, "err", err)
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			s.logger.Warn("holiday fetch failed", "attempt", attempt, "status", resp.StatusCode)
			return nil, fmt.Errorf("holidays endpoint returned %d", resp.StatusCode)
		default:
			return nil, backoff.Permanent(fmt.Errorf("holidays endpoint returned %d", resp.StatusCode))
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
		if err != nil {
			return nil, err
		}
		return raw, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxTries))
}
