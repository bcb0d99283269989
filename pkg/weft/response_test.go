package weft

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestResponse(t *testing.T, target string, header http.Header) *Response {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	for field, values := range header {
		req.Header[field] = values
	}
	return New().createContext(rec, req).Response
}

func TestSetBodyDefaultsStatusToOK(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.SetBody("hello")
	if res.Status() != http.StatusOK {
		t.Errorf("status = %d, want 200", res.Status())
	}
}

func TestSetBodyKeepsExplicitStatus(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.SetStatus(http.StatusCreated)
	res.SetBody("made")
	if res.Status() != http.StatusCreated {
		t.Errorf("status = %d, want 201", res.Status())
	}
}

func TestSetBodyInfersContentType(t *testing.T) {
	cases := []struct {
		name string
		body any
		want string
	}{
		{"plain string", "hello", "text/plain; charset=utf-8"},
		{"markup string", "<h1>hi</h1>", "text/html; charset=utf-8"},
		{"bytes", []byte("raw"), "application/octet-stream"},
		{"stream", strings.NewReader("s"), "application/octet-stream"},
		{"structured", map[string]int{"n": 1}, "application/json; charset=utf-8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newTestResponse(t, "/", nil)
			res.SetBody(tc.body)
			if got := res.Get("Content-Type"); got != tc.want {
				t.Errorf("Content-Type = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSetBodyRespectsExistingContentType(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.Set("Content-Type", "application/xml")
	res.SetBody("<note/>")
	if got := res.Get("Content-Type"); got != "application/xml" {
		t.Errorf("Content-Type = %q, handler's choice must win", got)
	}
}

func TestSetStatusPanicsOutOfRange(t *testing.T) {
	for _, code := range []int{0, 99, 1000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SetStatus(%d) should panic", code)
				}
			}()
			newTestResponse(t, "/", nil).SetStatus(code)
		}()
	}
}

func TestLengthPrefersExplicitHeader(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.SetBody("four")
	res.SetLength(99)
	n, ok := res.Length()
	if !ok || n != 99 {
		t.Errorf("Length = %d/%v, want explicit 99", n, ok)
	}
}

func TestLengthComputedFromBody(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.body = map[string]string{"a": "b"}
	n, ok := res.Length()
	if !ok || n != int64(len(`{"a":"b"}`)) {
		t.Errorf("Length = %d/%v", n, ok)
	}
}

func TestLengthUnknownForStreams(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.body = strings.NewReader("stream")
	if _, ok := res.Length(); ok {
		t.Error("stream length should be unknown")
	}
}

func TestSetTypeResolvesExtension(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.SetType("json")
	if got := res.Type(); got != "application/json" {
		t.Errorf("Type = %q, want application/json", got)
	}

	res.SetType("text/csv; charset=utf-8")
	if got := res.Type(); got != "text/csv" {
		t.Errorf("Type = %q, want text/csv", got)
	}
}

func TestVaryDeduplicates(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.Vary("Accept")
	res.Vary("accept")
	res.Vary("Origin")
	if got := strings.Join(res.w.Header().Values("Vary"), ", "); got != "Accept, Origin" {
		t.Errorf("Vary = %q", got)
	}
}

func TestRedirectDefaultsToFound(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.Redirect("/login")

	if res.Status() != http.StatusFound {
		t.Errorf("status = %d, want 302", res.Status())
	}
	if got := res.Get("Location"); got != "/login" {
		t.Errorf("Location = %q", got)
	}
	if body, _ := res.Body().(string); !strings.Contains(body, "/login") {
		t.Errorf("body = %q", body)
	}
}

func TestRedirectKeepsExplicitRedirectStatus(t *testing.T) {
	res := newTestResponse(t, "/", nil)
	res.SetStatus(http.StatusMovedPermanently)
	res.Redirect("/new-home")
	if res.Status() != http.StatusMovedPermanently {
		t.Errorf("status = %d, want 301", res.Status())
	}
}

func TestRedirectHTMLBodyForHTMLClients(t *testing.T) {
	res := newTestResponse(t, "/", http.Header{"Accept": []string{"text/html"}})
	res.Redirect("/next?a=<b>")

	body, _ := res.Body().(string)
	if !strings.Contains(body, "<a href=") {
		t.Errorf("body = %q, want anchor markup", body)
	}
	if strings.Contains(body, "<b>") {
		t.Errorf("body = %q, URL must be escaped", body)
	}
}
