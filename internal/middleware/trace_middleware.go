package middleware

import (
	"storeOptimizer/business/optimization"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderTraceID = "X-Trace-ID"

// TraceMiddleware reuses an incoming X-Trace-ID or X-Request-ID, otherwise mints one,
// and puts it on the request context so every pipeline log line carries it.
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			traceID := req.Header.Get(HeaderTraceID)
			if traceID == "" {
				traceID = req.Header.Get(echo.HeaderXRequestID)
			}
			if traceID == "" {
				traceID = uuid.NewString()
			}

			c.SetRequest(req.WithContext(optimization.WithTraceID(req.Context(), traceID)))
			c.Set("trace_id", traceID)
			c.Response().Header().Set(HeaderTraceID, traceID)

			return next(c)
		}
	}
}
