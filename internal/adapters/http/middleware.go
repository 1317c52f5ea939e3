package httpadapter

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nexuspro/nexus/internal/observability"
)

// withRequestID tags every request context with a request_id so that
// controller logs can be correlated with the triggering intent.
func withRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := observability.WithRequestID(req.Context(), uuid.NewString())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// withLogging logs every request.
func withLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			observability.LoggerFromContext(c.Request().Context()).Infow("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return err
		}
	}
}
