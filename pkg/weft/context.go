package weft

import (
	"context"
	"net/http"
	"sync/atomic"
)

// Context is the per-request state shared by every handler processing one
// connection. Exactly one Context exists per request; it is created fresh
// by the dispatcher and discarded when the response completes. A Context
// and its facades are never shared across requests, so handlers may
// mutate them without synchronization.
type Context struct {
	app *Application

	// Request is the read/derive view over the incoming request.
	Request *Request

	// Response is the mutable view over the outgoing response.
	Response *Response

	// State carries free-form request-scoped data between handlers.
	// It starts from a copy of the application's Defaults.State, so
	// per-request writes shadow the template without mutating it.
	State map[string]any

	// OriginalURL is the request target exactly as received, captured
	// before any handler can rewrite routing-relevant fields.
	OriginalURL string

	// Respond, when set to false by a handler, bypasses framework-managed
	// response finalization entirely. The handler then owns the terminal
	// write.
	Respond bool

	// completed flips once when the request reaches a terminal outcome.
	// The dispatcher's success, failure, and premature-close paths race
	// for it; the winner finalizes, the losers become no-ops.
	completed atomic.Bool
}

// Defaults are application-level template values copied into every new
// Context at construction time. Per-request mutations shadow the
// template; the template itself is never written after serving starts.
type Defaults struct {
	// Status is the terminal status pre-set before any handler runs, so
	// a pipeline that never sets one still yields a defined response.
	Status int

	// Respond is the initial value of Context.Respond.
	Respond bool

	// State entries are copied into each request's State map.
	State map[string]any
}

// NewDefaults returns the standard template: status 404, framework
// finalization enabled, empty state.
func NewDefaults() Defaults {
	return Defaults{
		Status:  http.StatusNotFound,
		Respond: true,
	}
}

// App returns the owning application.
func (c *Context) App() *Application {
	return c.app
}

// Context returns the transport request's context. It is canceled when
// the client disconnects or the request finishes, making it the
// cancellation signal for any blocking work a handler performs.
func (c *Context) Context() context.Context {
	return c.Request.r.Context()
}

// Throw returns an HTTPError with the given status and message, for use
// as a handler's error return:
//
//	return c.Throw(http.StatusBadRequest, "name required")
//
// An empty message falls back to the status text. Errors with status
// below 500 are exposed to the client.
func (c *Context) Throw(status int, message string) error {
	return NewError(status, message)
}

// tryComplete marks the request terminal. It returns true for exactly
// one caller per request.
func (c *Context) tryComplete() bool {
	return c.completed.CompareAndSwap(false, true)
}

// createContext builds a fresh per-request Context from the application's
// templates and the transport handles. The context and both facades are
// mutually cross-linked so any of the three views observes the same
// state. Construction reads the application config but never writes it.
func (a *Application) createContext(w http.ResponseWriter, r *http.Request) *Context {
	c := &Context{
		app:         a,
		State:       make(map[string]any, len(a.Defaults.State)),
		OriginalURL: r.RequestURI,
		Respond:     a.Defaults.Respond,
	}
	for k, v := range a.Defaults.State {
		c.State[k] = v
	}

	req := &Request{ctx: c, r: r}
	res := &Response{ctx: c, w: w, status: a.Defaults.Status}
	req.response = res
	res.request = req
	c.Request = req
	c.Response = res
	return c
}
