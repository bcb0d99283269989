package weft

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"testing"
)

func TestNewErrorExposeDefaults(t *testing.T) {
	if !NewError(http.StatusBadRequest, "bad").Expose {
		t.Error("4xx errors should default to exposed")
	}
	if NewError(http.StatusInternalServerError, "oops").Expose {
		t.Error("5xx errors should default to unexposed")
	}
}

func TestNewErrorCoercesInvalidStatus(t *testing.T) {
	for _, code := range []int{0, 200, 399, 600} {
		if got := NewError(code, "x").StatusCode; got != http.StatusInternalServerError {
			t.Errorf("NewError(%d) status = %d, want 500", code, got)
		}
	}
}

func TestNewErrorMessageFallback(t *testing.T) {
	e := NewError(http.StatusForbidden, "")
	if e.Message != "Forbidden" {
		t.Errorf("Message = %q, want status text", e.Message)
	}
}

func TestHTTPErrorString(t *testing.T) {
	e := NewError(http.StatusNotFound, "no such thing")
	if got := e.Error(); got != "404 no such thing" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"http error", NewError(http.StatusTeapot, "short"), http.StatusTeapot},
		{"out-of-range http error", &HTTPError{StatusCode: 99}, http.StatusInternalServerError},
		{"not exist", fs.ErrNotExist, http.StatusNotFound},
		{"wrapped not exist", fmt.Errorf("open config: %w", fs.ErrNotExist), http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := ErrorStatus(tt.err); got != tt.want {
			t.Errorf("%s: ErrorStatus = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNewErrorfWrapsCause(t *testing.T) {
	e := NewErrorf(http.StatusBadGateway, "upstream: %w", io.ErrUnexpectedEOF)
	if !errors.Is(e, io.ErrUnexpectedEOF) {
		t.Error("wrapped cause lost")
	}
	var he *HTTPError
	if !errors.As(error(e), &he) || he.StatusCode != http.StatusBadGateway {
		t.Error("HTTPError identity lost")
	}
}
