package weft

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
)

// Response is the mutable facade over the outgoing transport response.
// Writes accumulate in the response-state bag (status, body, headers)
// and are flushed to the wire exactly once by the dispatcher's
// finalization. It holds back-references to its Context and Request;
// the Context owns both facades.
type Response struct {
	ctx     *Context
	request *Request
	w       http.ResponseWriter

	status         int
	explicitStatus bool
	body           any
	explicitNull   bool
	headerWritten  bool

	// finished flips after the terminal write; closed flips when the
	// transport terminates the connection by other means. Both are
	// atomic because the dispatcher's completion observer may read and
	// write them concurrently with handler code.
	finished atomic.Bool
	closed   atomic.Bool
}

// statusEmpty are the status codes that forbid a response payload.
var statusEmpty = map[int]bool{
	http.StatusNoContent:    true,
	http.StatusResetContent: true,
	http.StatusNotModified:  true,
}

// Raw returns the underlying transport response writer. Handlers that
// take over the response directly should also set Context.Respond to
// false so the framework does not finalize on top of their writes.
func (res *Response) Raw() http.ResponseWriter {
	return res.w
}

// Status returns the response status code.
func (res *Response) Status() int {
	return res.status
}

// SetStatus sets the response status code. Codes outside 100-999 are a
// programming error and panic. Setting a payload-free status (204, 205,
// 304) clears any body already set.
func (res *Response) SetStatus(code int) {
	if code < 100 || code > 999 {
		panic(fmt.Sprintf("weft: invalid status code %d", code))
	}
	res.status = code
	res.explicitStatus = true
	if res.body != nil && statusEmpty[code] {
		res.body = nil
		res.Remove("Content-Type")
		res.Remove("Content-Length")
		res.Remove("Transfer-Encoding")
	}
}

// Body returns the response body value.
func (res *Response) Body() any {
	return res.body
}

// SetBody sets the response body. Accepted values and their finalization
// strategies:
//
//   - nil: no payload; marks the explicit-null-body flag and strips
//     Content-Type, Content-Length and Transfer-Encoding
//   - string: written verbatim (text/html when it looks like markup,
//     text/plain otherwise)
//   - []byte: written verbatim as application/octet-stream
//   - io.Reader: piped to the connection without buffering
//   - anything else: JSON encoded
//
// Content-Type is only inferred when no handler set one. Setting a
// non-nil body defaults the status to 200 unless a handler already set
// one explicitly.
func (res *Response) SetBody(v any) {
	res.body = v

	if v == nil {
		res.explicitNull = true
		res.Remove("Content-Type")
		res.Remove("Content-Length")
		res.Remove("Transfer-Encoding")
		return
	}

	res.explicitNull = false
	if !res.explicitStatus {
		res.status = http.StatusOK
	}

	inferType := res.Get("Content-Type") == ""
	switch b := v.(type) {
	case string:
		if inferType {
			if strings.HasPrefix(strings.TrimSpace(b), "<") {
				res.Set("Content-Type", "text/html; charset=utf-8")
			} else {
				res.Set("Content-Type", "text/plain; charset=utf-8")
			}
		}
		res.SetLength(int64(len(b)))
	case []byte:
		if inferType {
			res.Set("Content-Type", "application/octet-stream")
		}
		res.SetLength(int64(len(b)))
	case io.Reader:
		if inferType {
			res.Set("Content-Type", "application/octet-stream")
		}
		res.Remove("Content-Length")
	default:
		if inferType {
			res.Set("Content-Type", "application/json; charset=utf-8")
		}
		res.Remove("Content-Length")
	}
}

// Length returns the response content length and whether it is known:
// the explicit Content-Length header when present, otherwise the byte
// length the current body would serialize to. Streaming bodies have no
// known length.
func (res *Response) Length() (int64, bool) {
	if v := res.Get("Content-Length"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return res.computeLength()
}

// SetLength sets the Content-Length header explicitly.
func (res *Response) SetLength(n int64) {
	res.Set("Content-Length", strconv.FormatInt(n, 10))
}

// computeLength derives the body's would-be byte length.
func (res *Response) computeLength() (int64, bool) {
	switch b := res.body.(type) {
	case nil:
		return 0, false
	case []byte:
		return int64(len(b)), true
	case string:
		return int64(len(b)), true
	case io.Reader:
		return 0, false
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return 0, false
		}
		return int64(len(buf)), true
	}
}

// Type returns the response content type without parameters.
func (res *Response) Type() string {
	ct := res.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// SetType sets the response Content-Type. Values containing "/" are used
// as given; anything else is treated as a file extension and resolved
// through the mime registry ("json" becomes "application/json"). Unknown
// extensions leave the header untouched.
func (res *Response) SetType(t string) {
	if strings.Contains(t, "/") {
		res.Set("Content-Type", t)
		return
	}
	if resolved := mime.TypeByExtension("." + t); resolved != "" {
		res.Set("Content-Type", resolved)
	}
}

// Get returns a response header value.
func (res *Response) Get(field string) string {
	return res.w.Header().Get(field)
}

// Set sets a response header, replacing any existing values.
func (res *Response) Set(field, value string) {
	res.w.Header().Set(field, value)
}

// Append adds a response header value without replacing existing ones.
func (res *Response) Append(field, value string) {
	res.w.Header().Add(field, value)
}

// Remove deletes a response header.
func (res *Response) Remove(field string) {
	res.w.Header().Del(field)
}

// Vary appends a field to the Vary header unless already present.
func (res *Response) Vary(field string) {
	for _, v := range res.w.Header().Values("Vary") {
		for _, f := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(f), field) {
				return
			}
		}
	}
	res.Append("Vary", field)
}

// HeaderSent reports whether the response headers have been written to
// the transport. Header mutations after this point are lost.
func (res *Response) HeaderSent() bool {
	return res.headerWritten
}

// Writable reports whether the connection still accepts a terminal
// write: the transport has not terminated it and no finalization has
// happened yet. Every terminal write path checks this first.
func (res *Response) Writable() bool {
	return !res.closed.Load() && !res.finished.Load()
}

// Redirect sets a redirect to the given URL. The status becomes 302
// unless a handler already set a 3xx status. Clients accepting HTML get
// an anchor body, everyone else a plain-text notice.
func (res *Response) Redirect(url string) {
	res.Set("Location", url)
	if !res.explicitStatus || res.status < 300 || res.status > 399 {
		res.status = http.StatusFound
		res.explicitStatus = true
	}
	if strings.Contains(res.request.Get("Accept"), "text/html") {
		escaped := html.EscapeString(url)
		res.Set("Content-Type", "text/html; charset=utf-8")
		res.body = fmt.Sprintf(`Redirecting to <a href="%s">%s</a>.`, escaped, escaped)
	} else {
		res.Set("Content-Type", "text/plain; charset=utf-8")
		res.body = fmt.Sprintf("Redirecting to %s.", url)
	}
	res.SetLength(int64(len(res.body.(string))))
}

// Flush forces the headers (and any transport-buffered data) onto the
// wire. Used by handlers that stream incrementally.
func (res *Response) Flush() {
	if !res.Writable() {
		return
	}
	res.writeHeader()
	if f, ok := res.w.(http.Flusher); ok {
		f.Flush()
	}
}

// markClosed records that the transport terminated the connection.
// Safe to call concurrently with handler code.
func (res *Response) markClosed() {
	res.closed.Store(true)
}

// writeHeader sends the status line and headers once.
func (res *Response) writeHeader() {
	if res.headerWritten {
		return
	}
	res.headerWritten = true
	res.w.WriteHeader(res.status)
}

// end performs the terminal write: headers, then the payload (which may
// be nil for header-only responses). It is a no-op once the response is
// unwritable, which is what makes double sends structurally impossible.
func (res *Response) end(payload []byte) {
	if !res.Writable() {
		return
	}
	res.writeHeader()
	if len(payload) > 0 {
		res.w.Write(payload)
	}
	res.finished.Store(true)
}

// pipe streams the body reader to the connection without buffering and
// closes it if closable. A mid-stream copy failure is returned so the
// dispatcher can route it through the error path; by then the headers
// are on the wire, so no second response is attempted.
func (res *Response) pipe(r io.Reader) error {
	if !res.Writable() {
		return nil
	}
	res.writeHeader()
	_, err := io.Copy(res.w, r)
	res.finished.Store(true)
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
	if err != nil {
		return fmt.Errorf("streaming body: %w", err)
	}
	return nil
}
