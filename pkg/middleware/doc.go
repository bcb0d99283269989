// Package middleware provides the bundled weft middleware: structured
// request logging via log/slog, panic recovery, X-Request-ID
// propagation, and JWT bearer-token authentication.
//
// Each constructor returns a weft.Handler and is registered with
// Application.Use in the usual order: Recovery outermost, then
// RequestID, then Logging, then anything application-specific.
package middleware
