package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// StatusFor maps an error returned by a service to its HTTP status.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLayoutUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusFor(err)
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}

	traceID := optimization.TraceIDFromContext(c.Request().Context())

	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "trace_id", traceID, "path", c.Path(), "error", err)
		msg = http.StatusText(code)
	} else {
		logger.Debug("request rejected", "trace_id", traceID, "path", c.Path(), "status", code, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorResponse{Message: msg, TraceID: traceID})
	}
	if writeErr != nil {
		logger.Error("failed to write error response", "error", writeErr)
	}
}
