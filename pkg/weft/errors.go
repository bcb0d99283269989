package weft

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrNonError reports that a handler panicked with a value that is not
// an error. This is a defensive invariant for programming mistakes, not
// a recoverable condition.
var ErrNonError = errors.New("non-error thrown")

// HTTPError is an error carrying an HTTP status code and an expose flag.
// Exposed errors may have their message written to the client; all
// others are reported to the client only as the status text. Handlers
// raise them via Context.Throw or by returning one directly.
type HTTPError struct {
	StatusCode int
	Message    string
	// Expose controls whether Message may be sent to the client.
	// NewError defaults it to true for 4xx statuses.
	Expose bool
	// Headers are merged into the response when the error is written.
	Headers http.Header
	// Err is the wrapped cause, if any.
	Err error
}

// NewError creates an HTTPError with the given status and message. A
// message of "" falls back to the standard status text. Expose defaults
// to true for client errors (status < 500) and false otherwise. Status
// codes outside 400-599 are coerced to 500.
func NewError(status int, message string) *HTTPError {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{
		StatusCode: status,
		Message:    message,
		Expose:     status < 500,
	}
}

// NewErrorf creates an HTTPError with a formatted message. Arguments
// satisfying the error interface are wrapped and visible to errors.Is
// and errors.As.
func NewErrorf(status int, format string, args ...any) *HTTPError {
	base := fmt.Errorf(format, args...)
	e := NewError(status, base.Error())
	e.Err = base
	return e
}

// ErrorStatus derives the status code the error path writes for err:
// the HTTPError status when it lies in 400-599, 404 for fs.ErrNotExist,
// and 500 for everything else. Middleware observing failed pipelines
// (metrics, logging) uses it to agree with the wire response.
func ErrorStatus(err error) int {
	code := http.StatusInternalServerError
	if errors.Is(err, fs.ErrNotExist) {
		code = http.StatusNotFound
	}
	var he *HTTPError
	if errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode <= 599 {
		code = he.StatusCode
	}
	return code
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}
