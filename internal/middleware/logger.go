package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ctxRequestID = "request_id"

// RequestID attaches a unique request ID to each request, honoring an
// incoming X-Request-ID header, and echoes it back in the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()
			}
			c.Set(ctxRequestID, id)
			c.Response().Header().Set("X-Request-ID", id)
			return next(c)
		}
	}
}

// RequestLogger emits one structured log line per completed request.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			path := req.URL.Path
			if raw := req.URL.RawQuery; raw != "" {
				path = path + "?" + raw
			}
			logger.Info("http request",
				"request_id", c.Get(ctxRequestID),
				"method", req.Method,
				"path", path,
				"status", c.Response().Status,
				"latency", time.Since(start),
				"client_ip", c.RealIP(),
			)
			return nil
		}
	}
}
