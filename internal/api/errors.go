package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dshills/gocontext-qa/internal/bench"
	"github.com/dshills/gocontext-qa/internal/search"
)

// ValidationError is a rejected request
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func newValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// ErrorHandler renders errors as JSON with a status derived from their kind
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, title := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err)
		}

		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg = fmt.Sprintf("%v", he.Message)
		} else if status == http.StatusInternalServerError {
			msg = "internal server error"
		}

		_ = c.JSON(status, map[string]string{"error": msg, "title": title})
	}
}

func classify(err error) (int, string) {
	var (
		ve    *ValidationError
		he    *echo.HTTPError
		ioErr *bench.IOError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "validation error"
	case errors.As(err, &he):
		return he.Code, http.StatusText(he.Code)
	case search.IsKind(err, search.KindParse):
		return http.StatusBadRequest, "query parse error"
	case search.IsKind(err, search.KindEnrich):
		return http.StatusUnprocessableEntity, "query enrichment error"
	case search.IsKind(err, search.KindHybrid):
		return http.StatusBadGateway, "retrieval error"
	case errors.Is(err, bench.ErrUnknownMode):
		return http.StatusBadRequest, "validation error"
	case errors.Is(err, bench.ErrWorkerFailure):
		return http.StatusBadGateway, "load test failed"
	case errors.As(err, &ioErr):
		return http.StatusInternalServerError, "benchmark storage error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
