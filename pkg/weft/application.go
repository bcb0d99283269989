package weft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// Application holds the process-wide configuration and the ordered
// middleware sequence. Register middleware with Use, then obtain the
// connection handler with Callback. Configuration fields are mutated
// only before the server starts handling connections; once serving,
// they are read-only and safe for concurrent requests.
type Application struct {
	middleware []Handler

	// Env names the runtime environment, defaulting to the WEFT_ENV
	// environment variable or "development".
	Env string

	// Proxy, when true, trusts X-Forwarded-* headers from the upstream
	// proxy for host, protocol, and client address derivation.
	Proxy bool

	// SubdomainOffset is the number of trailing host labels ignored by
	// Request.Subdomains. Default 2.
	SubdomainOffset int

	// Keys are the application signing keys, available to middleware
	// (cookie signing, token verification). The core does not use them.
	Keys []string

	// Silent suppresses default error logging entirely.
	Silent bool

	// Defaults are the template values copied into every new Context.
	Defaults Defaults

	// Logger is the structured logger for application-level events.
	Logger *slog.Logger

	// ErrorOutput is the operator-facing error stream the default error
	// policy writes to. Defaults to os.Stderr.
	ErrorOutput io.Writer

	// OnError replaces the default error logging policy. It must not
	// write to the response; the dispatcher owns the terminal write.
	OnError func(c *Context, err error)
}

// New creates an application with the standard defaults.
func New() *Application {
	env := os.Getenv("WEFT_ENV")
	if env == "" {
		env = "development"
	}
	return &Application{
		Env:             env,
		SubdomainOffset: 2,
		Defaults:        NewDefaults(),
		Logger:          slog.Default(),
		ErrorOutput:     os.Stderr,
	}
}

// Use appends a handler to the middleware sequence and returns the
// application for chaining. A nil handler is a programming error and
// panics.
func (a *Application) Use(h Handler) *Application {
	if h == nil {
		panic("weft: middleware must be a non-nil Handler")
	}
	a.middleware = append(a.middleware, h)
	return a
}

// Callback composes the current middleware sequence and returns the
// connection handler for the transport's accept loop. Composition
// happens here, once per Callback call, never per request; middleware
// registered afterwards requires a new Callback.
func (a *Application) Callback() http.HandlerFunc {
	pipeline := Compose(a.middleware)
	return func(w http.ResponseWriter, r *http.Request) {
		c := a.createContext(w, r)
		a.handleRequest(c, pipeline)
	}
}

// handleRequest drives one request through the pipeline and guarantees
// exactly-once finalization: the success path, the failure path, and
// the premature-termination observer race for the context's completion
// flag, and only the winner produces the terminal outcome.
func (a *Application) handleRequest(c *Context, pipeline func(*Context) error) {
	res := c.Response
	reqCtx := c.Request.r.Context()

	// Completion observer: if the transport terminates the connection
	// before the pipeline resolves (client disconnect, socket error),
	// stop all further writes and route through the error path once.
	// Normal resolution unregisters the observer before returning.
	stop := context.AfterFunc(reqCtx, func() {
		res.markClosed()
		if c.tryComplete() {
			a.fail(c, fmt.Errorf("connection closed before response: %w", context.Cause(reqCtx)))
		}
	})
	defer stop()

	err := a.invoke(pipeline, c)

	if !c.tryComplete() {
		// The observer already finalized this request.
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	if err := respond(c); err != nil {
		a.fail(c, err)
	}
}

// invoke runs the pipeline, converting handler panics into pipeline
// failures. A panic value that is not an error escalates as ErrNonError.
func (a *Application) invoke(pipeline func(*Context) error, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%w: %v", ErrNonError, r)
			}
		}
	}()
	return pipeline(c)
}

// fail is the dispatcher's single error path: apply the logging policy,
// then write the terminal error response keyed off the error's status.
// It never runs more than once per request and never after a successful
// finalization.
func (a *Application) fail(c *Context, err error) {
	if a.OnError != nil {
		a.OnError(c, err)
	} else {
		a.logError(err)
	}

	res := c.Response
	if !res.Writable() || res.HeaderSent() {
		// Too late to change the response; the transport's own
		// completion signaling closes the connection.
		return
	}

	code := ErrorStatus(err)

	// Start from a clean header slate, keeping only what the error
	// itself carries.
	h := res.w.Header()
	for field := range h {
		h.Del(field)
	}

	var he *HTTPError
	if errors.As(err, &he) {
		for field, values := range he.Headers {
			for _, v := range values {
				h.Add(field, v)
			}
		}
	}

	msg := http.StatusText(code)
	if he != nil && he.Expose {
		msg = he.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("%d", code)
	}

	body := []byte(msg)
	res.status = code
	res.Set("Content-Type", "text/plain; charset=utf-8")
	res.SetLength(int64(len(body)))
	res.end(body)
}

// logError is the default error policy. Errors whose status is 404 and
// errors marked safe to expose are intentional, user-facing failures
// and stay out of the operator stream; so does everything when the
// application is silent. Anything else is written to ErrorOutput with
// each line indented.
func (a *Application) logError(err error) {
	var he *HTTPError
	if errors.As(err, &he) && (he.StatusCode == http.StatusNotFound || he.Expose) {
		return
	}
	if a.Silent {
		return
	}
	out := a.ErrorOutput
	if out == nil {
		out = os.Stderr
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range strings.Split(err.Error(), "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	io.WriteString(out, b.String())
}
