package weft

import (
	"errors"
	"fmt"
)

// Handler is a single middleware function. It receives the per-request
// Context and a continuation that runs the remainder of the pipeline.
// A handler that never calls next short-circuits all downstream
// handlers; a handler that calls next more than once fails the pipeline
// with ErrMultipleNext.
type Handler func(c *Context, next Next) error

// Next is the continuation a handler invokes to delegate to the rest of
// the pipeline. It returns the combined outcome of every downstream
// handler.
type Next func() error

// ErrMultipleNext reports that a handler invoked its continuation more
// than once within a single pipeline invocation.
var ErrMultipleNext = errors.New("next() called multiple times")

// Compose collapses an ordered list of handlers into a single pipeline
// function. Invoking the pipeline runs the handlers in nested order:
// handlers[0] outermost, the last handler receiving a no-op continuation
// that resolves immediately. An empty list composes to a no-op success.
//
// The returned function is stateless with respect to the handler list
// and safe to invoke concurrently with distinct contexts.
func Compose(handlers []Handler) func(*Context) error {
	// Copy so later Use calls do not change an already-composed pipeline.
	hs := make([]Handler, len(handlers))
	copy(hs, handlers)

	return func(c *Context) error {
		var dispatch func(i int) error
		dispatch = func(i int) error {
			if i == len(hs) {
				return nil
			}
			called := false
			next := func() error {
				if called {
					return fmt.Errorf("middleware %d: %w", i, ErrMultipleNext)
				}
				called = true
				return dispatch(i + 1)
			}
			return hs[i](c, next)
		}
		return dispatch(0)
	}
}
