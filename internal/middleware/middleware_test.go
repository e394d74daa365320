//go:build !integration

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", fmt.Errorf("bad type: %w", domain.ErrInvalidRequest), http.StatusBadRequest},
		{"store not found", fmt.Errorf("store 9: %w", domain.ErrStoreNotFound), http.StatusNotFound},
		{"no result yet", domain.ErrResultNotFound, http.StatusNotFound},
		{"layout unavailable", fmt.Errorf("no zones: %w", domain.ErrLayoutUnavailable), http.StatusUnprocessableEntity},
		{"echo http error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(errors.New("pq: connection refused"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestErrorHandler_ExposesDomainErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(fmt.Errorf("store 42: %w", domain.ErrStoreNotFound), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "store not found")
}

func TestTraceMiddleware(t *testing.T) {
	e := echo.New()

	var seen string
	h := TraceMiddleware()(func(c echo.Context) error {
		seen = optimization.TraceIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	t.Run("reuses incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-123")
		rec := httptest.NewRecorder()

		assert.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(HeaderTraceID))
	})

	t.Run("mints one when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		assert.NoError(t, h(e.NewContext(req, rec)))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(HeaderTraceID))
	})
}

func TestMetricsMiddleware_WritesErrorStatus(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := MetricsMiddleware()(func(c echo.Context) error {
		return domain.ErrLayoutUnavailable
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
