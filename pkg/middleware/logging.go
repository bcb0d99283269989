package middleware

import (
	"log/slog"
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

// Logging returns middleware that emits a structured log entry for each
// request: method, path, status, duration, and the request ID when one
// was assigned upstream. Failed requests log at error level with the
// error text; the error itself keeps propagating to the dispatcher.
func Logging(logger *slog.Logger) weft.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *weft.Context, next weft.Next) error {
		start := time.Now()

		err := next()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method()),
			slog.String("path", c.Request.Path()),
			slog.Int("status", c.Response.Status()),
			slog.Duration("duration", time.Since(start)),
		}
		if id, ok := c.State[RequestIDKey].(string); ok {
			attrs = append(attrs, slog.String("request_id", id))
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(c.Context(), slog.LevelError, "request failed", attrs...)
		} else {
			logger.LogAttrs(c.Context(), slog.LevelInfo, "request completed", attrs...)
		}

		return err
	}
}
