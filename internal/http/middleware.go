package http

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLoggerMiddleware logs HTTP requests with the module/action/resource
// keys. 5xx responses log at error, 4xx at warn, the rest at debug.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status

			level := slog.LevelDebug
			result := "ok"
			switch {
			case status >= 500:
				level, result = slog.LevelError, "failed"
			case status >= 400:
				level, result = slog.LevelWarn, "failed"
			}

			action := "request"
			if strings.HasSuffix(req.URL.Path, "/events") {
				action = "stream"
			}

			slog.Log(context.Background(), level, "http request",
				"module", "http",
				"action", action,
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			return nil
		}
	}
}
