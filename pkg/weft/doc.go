// Package weft implements the request-dispatch core of a minimalist HTTP
// middleware framework.
//
// An Application holds an ordered list of Handler functions. Callback
// composes them into a single pipeline with nested ("onion") execution
// order: code before a handler's next() call runs outer-to-inner, code
// after it runs inner-to-outer. The composed pipeline is an http.Handler
// and plugs directly into net/http:
//
//	app := weft.New()
//	app.Use(func(c *weft.Context, next weft.Next) error {
//		start := time.Now()
//		if err := next(); err != nil {
//			return err
//		}
//		c.Response.Set("X-Response-Time", time.Since(start).String())
//		return nil
//	})
//	app.Use(func(c *weft.Context, next weft.Next) error {
//		c.Response.SetBody("Hello World")
//		return nil
//	})
//	http.ListenAndServe(":8080", app.Callback())
//
// # Context
//
// Every request gets a fresh Context carrying the transport handles, a
// free-form State map for cross-handler data, and two facades: Request
// for reading and deriving request properties, Response for mutating the
// outgoing status, headers, and body. All three views share the same
// per-request state; no state is shared across requests.
//
// # Finalization
//
// When the pipeline resolves, the dispatcher writes the terminal response
// exactly once, choosing a strategy from the response body's type: nil
// bodies synthesize a textual status body, []byte and string are written
// verbatim, io.Reader bodies are piped without buffering, and anything
// else is JSON encoded. When the pipeline rejects, the error handler
// logs per the application policy and the dispatcher writes an error
// response keyed off the error's status. The two paths are mutually
// exclusive and each fires at most once per request.
//
// # Errors
//
// Handlers fail by returning an error. HTTPError carries a status code
// and an expose flag controlling whether its message may be sent to the
// client; Context.Throw is the shorthand for raising one. Programming
// errors (nil middleware, calling next twice, panicking with a
// non-error value) fail loudly and are never retried.
package weft
