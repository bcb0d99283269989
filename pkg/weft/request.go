package weft

import (
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request is the read/derive facade over the incoming transport request.
// It holds back-references to its Context and Response so handlers
// reached through any view observe the same request state.
type Request struct {
	ctx      *Context
	response *Response
	r        *http.Request
}

// Raw returns the underlying transport request.
func (req *Request) Raw() *http.Request {
	return req.r
}

// Method returns the request method.
func (req *Request) Method() string {
	return req.r.Method
}

// Path returns the request path. Handlers (routers, mounters) may
// rewrite it with SetPath; the original target stays available as
// Context.OriginalURL.
func (req *Request) Path() string {
	return req.r.URL.Path
}

// SetPath rewrites the request path.
func (req *Request) SetPath(p string) {
	req.r.URL.Path = p
}

// URL returns the parsed request URL.
func (req *Request) URL() *url.URL {
	return req.r.URL
}

// QueryString returns the raw query string, without the leading "?".
func (req *Request) QueryString() string {
	return req.r.URL.RawQuery
}

// Query returns the parsed query parameters.
func (req *Request) Query() url.Values {
	return req.r.URL.Query()
}

// Get returns a request header value. "Referrer" and "Referer" are
// interchangeable.
func (req *Request) Get(field string) string {
	switch strings.ToLower(field) {
	case "referer", "referrer":
		if v := req.r.Header.Get("Referrer"); v != "" {
			return v
		}
		return req.r.Header.Get("Referer")
	}
	return req.r.Header.Get(field)
}

// Header returns the full request header map.
func (req *Request) Header() http.Header {
	return req.r.Header
}

// Host returns the host (hostname:port when present). When the
// application trusts its proxy, the first X-Forwarded-Host entry wins.
func (req *Request) Host() string {
	if req.ctx.app.Proxy {
		if v := req.r.Header.Get("X-Forwarded-Host"); v != "" {
			host, _, _ := strings.Cut(v, ",")
			return strings.TrimSpace(host)
		}
	}
	return req.r.Host
}

// Hostname returns the host without the port. IPv6 literals keep their
// brackets stripped.
func (req *Request) Hostname() string {
	host := req.Host()
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

// Protocol returns "https" or "http". TLS on the connection wins; when
// the application trusts its proxy, the first X-Forwarded-Proto entry
// is consulted next.
func (req *Request) Protocol() string {
	if req.r.TLS != nil {
		return "https"
	}
	if req.ctx.app.Proxy {
		if v := req.r.Header.Get("X-Forwarded-Proto"); v != "" {
			proto, _, _ := strings.Cut(v, ",")
			return strings.TrimSpace(proto)
		}
	}
	return "http"
}

// Secure reports whether the request arrived over TLS (directly or per
// trusted proxy headers).
func (req *Request) Secure() bool {
	return req.Protocol() == "https"
}

// IPs returns the X-Forwarded-For address chain, upstream first, when
// the application trusts its proxy. Otherwise it is empty.
func (req *Request) IPs() []string {
	if !req.ctx.app.Proxy {
		return nil
	}
	v := req.r.Header.Get("X-Forwarded-For")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	ips := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ips = append(ips, p)
		}
	}
	return ips
}

// IP returns the remote address of the request: the first trusted
// forwarded address, or the transport peer address.
func (req *Request) IP() string {
	if ips := req.IPs(); len(ips) > 0 {
		return ips[0]
	}
	if host, _, err := net.SplitHostPort(req.r.RemoteAddr); err == nil {
		return host
	}
	return req.r.RemoteAddr
}

// Subdomains returns the subdomains of the host as an array, ordered
// from the rightmost label inward and excluding the application's
// SubdomainOffset trailing labels. For "tobi.ferrets.example.com" with
// the default offset 2 the result is ["ferrets", "tobi"]. IP-address
// hosts have no subdomains.
func (req *Request) Subdomains() []string {
	host := req.Hostname()
	if host == "" || net.ParseIP(host) != nil {
		return nil
	}
	labels := strings.Split(host, ".")
	offset := req.ctx.app.SubdomainOffset
	if offset < 0 {
		offset = 0
	}
	if len(labels) <= offset {
		return nil
	}
	subs := make([]string, 0, len(labels)-offset)
	for i := len(labels) - offset - 1; i >= 0; i-- {
		subs = append(subs, labels[i])
	}
	return subs
}

// Length returns the request Content-Length and whether it is known.
func (req *Request) Length() (int64, bool) {
	if req.r.ContentLength < 0 {
		return 0, false
	}
	return req.r.ContentLength, true
}

// Type returns the request content type without parameters, or "" when
// absent or malformed.
func (req *Request) Type() string {
	ct := req.r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// ProtoMajor returns the major HTTP protocol version of the transport.
func (req *Request) ProtoMajor() int {
	return req.r.ProtoMajor
}

// Fresh reports whether the client cache is still valid, comparing the
// request's conditional headers against the response's ETag and
// Last-Modified. It applies only to GET and HEAD requests with a 2xx or
// 304 response status; everything else is stale.
func (req *Request) Fresh() bool {
	method := req.r.Method
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	status := req.response.Status()
	if (status < 200 || status > 299) && status != http.StatusNotModified {
		return false
	}
	if cc := req.r.Header.Get("Cache-Control"); strings.Contains(cc, "no-cache") {
		return false
	}

	noneMatch := req.r.Header.Get("If-None-Match")
	modifiedSince := req.r.Header.Get("If-Modified-Since")
	if noneMatch == "" && modifiedSince == "" {
		return false
	}

	if noneMatch != "" {
		if !etagMatches(noneMatch, req.response.Get("ETag")) {
			return false
		}
	}
	if modifiedSince != "" {
		lastModified := req.response.Get("Last-Modified")
		if lastModified == "" {
			return false
		}
		since, err := http.ParseTime(modifiedSince)
		if err != nil {
			return false
		}
		modified, err := http.ParseTime(lastModified)
		if err != nil {
			return false
		}
		if modified.After(since.Add(time.Second - time.Nanosecond)) {
			return false
		}
	}
	return true
}

// etagMatches reports whether the If-None-Match header value matches the
// response ETag, comparing weakly (W/ prefixes ignored).
func etagMatches(noneMatch, etag string) bool {
	if noneMatch == "*" {
		return true
	}
	if etag == "" {
		return false
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(noneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
