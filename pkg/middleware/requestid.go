package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/weft-dev/weft/pkg/weft"
)

// RequestIDKey is the Context.State key under which the request ID is
// stored.
const RequestIDKey = "request_id"

// requestIDHeader is the header used for request ID propagation.
const requestIDHeader = "X-Request-ID"

// RequestID returns middleware that assigns a unique ID to each request.
// An incoming X-Request-ID header is reused; otherwise a new ID is
// generated. The ID is stored in Context.State and reflected in the
// response header so clients and operators can correlate log entries.
func RequestID() weft.Handler {
	return func(c *weft.Context, next weft.Next) error {
		id := c.Request.Get(requestIDHeader)
		if id == "" {
			id = generateRequestID()
		}
		c.State[RequestIDKey] = id
		c.Response.Set(requestIDHeader, id)
		return next()
	}
}

// generateRequestID creates a new unique request ID as a hex string.
func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
