package murphytest

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/getmockd/murphy/pkg/murphy"
)

// Ctx builds a request context for https://test.com + path. headers is a flat
// list of name, value pairs.
func Ctx(method, path string, headers ...string) *murphy.RequestContext {
	if method == "" {
		method = http.MethodGet
	}
	if path == "" {
		path = "/"
	}
	h := http.Header{}
	for i := 0; i+1 < len(headers); i += 2 {
		h.Add(headers[i], headers[i+1])
	}
	return &murphy.RequestContext{
		URL:     "https://test.com" + path,
		Path:    path,
		Method:  method,
		Headers: h,
	}
}

// AssertMethod asserts the request method.
func (r RequestLog) AssertMethod(t testing.TB, expected string) {
	t.Helper()
	if !strings.EqualFold(r.Method, expected) {
		t.Errorf("expected method %q, got %q", expected, r.Method)
	}
}

// AssertPath asserts the request path.
func (r RequestLog) AssertPath(t testing.TB, expected string) {
	t.Helper()
	if r.Path != expected {
		t.Errorf("expected path %q, got %q", expected, r.Path)
	}
}

// AssertHeader asserts the first value of a request header.
func (r RequestLog) AssertHeader(t testing.TB, key, expected string) {
	t.Helper()
	if got := r.Headers.Get(key); got != expected {
		t.Errorf("expected header %s=%q, got %q", key, expected, got)
	}
}

// AssertBody asserts the exact request body.
func (r RequestLog) AssertBody(t testing.TB, expected string) {
	t.Helper()
	if r.Body != expected {
		t.Errorf("request body does not match\nexpected: %q\nactual: %q", expected, r.Body)
	}
}

// ReadBody reads and closes resp.Body.
func ReadBody(t testing.TB, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

// AssertInjected checks the status and body of a response and closes it.
// An empty body skips the body comparison.
func AssertInjected(t testing.TB, resp *http.Response, code int, body string) {
	t.Helper()
	if resp == nil {
		t.Fatalf("expected a %d response, got nil", code)
		return
	}
	got := ReadBody(t, resp)
	if resp.StatusCode != code {
		t.Errorf("expected status %d, got %d", code, resp.StatusCode)
	}
	if body != "" && got != body {
		t.Errorf("expected body %q, got %q", body, got)
	}
}
