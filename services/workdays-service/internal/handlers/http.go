package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/workdays/libs/clock"
	"github.com/md-rashed-zaman/workdays/libs/httpx"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// dateLayouts are tried in order; all require a literal trailing Z.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04Z",
}

const responseLayout = "2006-01-02T15:04:05Z"

// Upper bounds for the query quantities. Both keep results centuries ahead
// while bounding the day walk.
const (
	maxDays  = 100_000
	maxHours = 800_000
)

// maxResultYear keeps responses within four-digit ISO 8601 years.
const maxResultYear = 9999

type Handler struct {
	calendar businesstime.Calendar
	schedule businesstime.Schedule
	clock    clock.Clock
	logger   *slog.Logger
}

func New(calendar businesstime.Calendar, schedule businesstime.Schedule, clk clock.Clock, logger *slog.Logger) *Handler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Handler{calendar: calendar, schedule: schedule, clock: clk, logger: logger}
}

type computeResponse struct {
	Date string `json:"date"`
}

type computeRequest struct {
	start    time.Time
	quantity businesstime.Quantity
}

// Compute answers GET /?days=&hours=&date= with the instant reached by
// adding the business days, then the business hours, to the normalized
// start date.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httpx.WriteError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		httpx.WriteError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "only GET is supported")
		return
	}

	req, err := h.parse(r)
	if err != nil {
		writeComputeError(w, r, h.logger, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("workdays.days", req.quantity.Days),
		attribute.Float64("workdays.hours", req.quantity.Hours),
		attribute.String("workdays.start", req.start.Format(time.RFC3339)),
	)

	engine := businesstime.New(h.calendar, h.schedule)
	result, err := engine.Compute(r.Context(), req.start, req.quantity)
	if err != nil {
		span.RecordError(err)
		writeComputeError(w, r, h.logger, err)
		return
	}
	if result.UTC().Year() > maxResultYear {
		writeComputeError(w, r, h.logger, invalid("The resulting date is beyond year 9999."))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, computeResponse{Date: result.UTC().Format(responseLayout)})
}

func (h *Handler) parse(r *http.Request) (computeRequest, error) {
	q := r.URL.Query()
	_, hasDays := q["days"]
	_, hasHours := q["hours"]
	if !hasDays && !hasHours {
		return computeRequest{}, invalid(`At least one of "days" or "hours" must be provided.`)
	}

	var req computeRequest
	if hasDays {
		n, err := parseCount(q.Get("days"), maxDays)
		if err != nil {
			return computeRequest{}, invalid(fmt.Sprintf(`"days" must be an integer between 0 and %d.`, maxDays))
		}
		req.quantity.Days = n
	}
	if hasHours {
		n, err := parseCount(q.Get("hours"), maxHours)
		if err != nil {
			return computeRequest{}, invalid(fmt.Sprintf(`"hours" must be an integer between 0 and %d.`, maxHours))
		}
		req.quantity.Hours = float64(n)
	}

	req.start = h.clock.Now()
	if _, ok := q["date"]; ok {
		start, err := parseDate(q.Get("date"))
		if err != nil {
			return computeRequest{}, err
		}
		req.start = start
	}
	return req, nil
}

func parseCount(raw string, limit int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n < 0 || n > limit {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasSuffix(raw, "Z") {
		return time.Time{}, invalid(`"date" must be in UTC ISO 8601 format and include a trailing Z.`)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid(`"date" is not a valid ISO 8601 UTC date.`)
}
