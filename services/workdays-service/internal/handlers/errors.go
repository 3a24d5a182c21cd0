package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/workdays/libs/httpx"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/holidays"
)

const (
	codeInvalidParameters  = "InvalidParameters"
	codeServiceUnavailable = "ServiceUnavailable"
	codeServerError        = "ServerError"
	codeMethodNotAllowed   = "MethodNotAllowed"
	codeNotFound           = "NotFound"
)

// errInvalidInput marks request validation failures; its message is safe to
// show to clients.
type errInvalidInput struct {
	msg string
}

func (e *errInvalidInput) Error() string {
	return e.msg
}

func invalid(msg string) error {
	return &errInvalidInput{msg: msg}
}

// writeComputeError maps an error from parsing or computation to the wire
// contract: 400 for bad input, 503 when holidays cannot be loaded, 500 for
// everything else. Cancelled or timed out requests also answer 503.
func writeComputeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var bad *errInvalidInput
	switch {
	case errors.As(err, &bad):
		httpx.WriteError(w, http.StatusBadRequest, codeInvalidParameters, bad.msg)
	case errors.Is(err, businesstime.ErrInvalidQuantity):
		httpx.WriteError(w, http.StatusBadRequest, codeInvalidParameters, "The requested quantity is out of range.")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("request abandoned",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "request timed out")
	case errors.Is(err, holidays.ErrSourceUnavailable):
		logger.Warn("holiday source unavailable",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "Failed to fetch holidays data.")
	default:
		logger.Error("unexpected error",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, codeServerError, "An unexpected error occurred.")
	}
}
