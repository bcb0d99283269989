package middleware

import (
	"net/http"

	"github.com/weft-dev/weft/pkg/weft"
)

// Recovery returns middleware that catches panics from downstream
// handlers and converts them to unexposed 500 errors. The dispatcher
// has a recovery net of its own; registering this middleware outermost
// additionally keeps upstream middleware (logging, metrics) on their
// normal error paths when a handler panics.
func Recovery() weft.Handler {
	return func(c *weft.Context, next weft.Next) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				retErr = weft.NewErrorf(http.StatusInternalServerError,
					"recovered from panic: %v", r)
			}
		}()
		return next()
	}
}
