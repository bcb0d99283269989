package weft

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// respond writes the terminal response for a successfully resolved
// pipeline. It applies exactly one of the following rules, in order,
// first match wins:
//
//  1. the handler opted out of framework finalization
//  2. the connection is no longer writable
//  3. payload-free status (204, 205, 304): clear the body, strip the
//     entity headers, no payload
//  4. HEAD: no payload, Content-Length synthesized from the would-be
//     body length when headers are unsent and no explicit length exists
//  5. nil body: either the explicit-null-body contract (no payload, no
//     Content-Type/Transfer-Encoding) or a synthesized textual status
//     body
//  6. []byte or string: written verbatim
//  7. io.Reader: piped without buffering
//  8. anything else: JSON encoded
//
// Side effects are confined to the transport response handle and the
// context's header accessors. An error return means finalization itself
// failed (unserializable body, broken stream) and is routed through the
// dispatcher's error path; by construction no second payload write can
// follow it.
func respond(c *Context) error {
	if !c.Respond {
		return nil
	}
	res := c.Response
	if !res.Writable() {
		return nil
	}

	code := res.status

	if statusEmpty[code] {
		res.body = nil
		res.Remove("Content-Type")
		res.Remove("Content-Length")
		res.Remove("Transfer-Encoding")
		res.end(nil)
		return nil
	}

	if c.Request.Method() == http.MethodHead {
		if !res.HeaderSent() && res.Get("Content-Length") == "" {
			if n, ok := res.computeLength(); ok {
				res.SetLength(n)
			}
		}
		res.end(nil)
		return nil
	}

	if res.body == nil {
		if res.explicitNull {
			res.Remove("Content-Type")
			res.Remove("Transfer-Encoding")
			res.end(nil)
			return nil
		}
		body := []byte(statusBody(code, c.Request.ProtoMajor()))
		if !res.HeaderSent() {
			res.Set("Content-Type", "text/plain; charset=utf-8")
			res.SetLength(int64(len(body)))
		}
		res.end(body)
		return nil
	}

	switch body := res.body.(type) {
	case []byte:
		res.end(body)
	case string:
		res.end([]byte(body))
	case io.Reader:
		return res.pipe(body)
	default:
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding response body: %w", err)
		}
		if !res.HeaderSent() {
			res.SetLength(int64(len(buf)))
		}
		res.end(buf)
	}
	return nil
}

// statusBody synthesizes the textual body for a response without one.
// HTTP/2 and later have no reason phrases, so the numeric code is used;
// HTTP/1.x gets the status message, falling back to the code when the
// status is unknown.
func statusBody(code, protoMajor int) string {
	if protoMajor >= 2 {
		return strconv.Itoa(code)
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return strconv.Itoa(code)
}
