package murphytest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/transport"
)

// UpstreamBody is what an Upstream answers when no handler is given.
const UpstreamBody = "upstream"

// RequestLog is one request received by an Upstream.
type RequestLog struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    string
}

// Upstream is a recording test server standing in for the real service.
type Upstream struct {
	t       testing.TB
	server  *httptest.Server
	handler http.Handler

	mu   sync.Mutex
	logs []RequestLog
}

// NewUpstream starts an Upstream. It answers 200 with UpstreamBody unless a
// handler is given. The server is closed when the test ends.
func NewUpstream(t testing.TB, handler ...http.Handler) *Upstream {
	t.Helper()

	u := &Upstream{t: t}
	if len(handler) > 0 && handler[0] != nil {
		u.handler = handler[0]
	} else {
		u.handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, UpstreamBody)
		})
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.server.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	u.mu.Lock()
	u.logs = append(u.logs, RequestLog{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: r.Header.Clone(),
		Body:    string(body),
	})
	u.mu.Unlock()
	u.handler.ServeHTTP(w, r)
}

// URL returns the server's base URL.
func (u *Upstream) URL() string { return u.server.URL }

// Server returns the underlying test server.
func (u *Upstream) Server() *httptest.Server { return u.server }

// Client returns a client for the upstream whose transport applies scenario.
func (u *Upstream) Client(scenario *murphy.Scenario, opts ...transport.Option) *http.Client {
	return transport.Decorate(u.server.Client(), scenario, opts...)
}

// Hits returns how many requests reached the upstream.
func (u *Upstream) Hits() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.logs)
}

// Requests returns a copy of the received requests in arrival order.
func (u *Upstream) Requests() []RequestLog {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]RequestLog, len(u.logs))
	copy(out, u.logs)
	return out
}

// Last returns the most recent request, failing the test if there is none.
func (u *Upstream) Last() RequestLog {
	u.t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.logs) == 0 {
		u.t.Fatalf("upstream received no requests")
		return RequestLog{}
	}
	return u.logs[len(u.logs)-1]
}

// Reset forgets all recorded requests.
func (u *Upstream) Reset() {
	u.mu.Lock()
	u.logs = nil
	u.mu.Unlock()
}

// AssertHits checks the number of requests that reached the upstream.
func (u *Upstream) AssertHits(t testing.TB, expected int) {
	t.Helper()
	if got := u.Hits(); got != expected {
		t.Errorf("expected %d upstream hits, got %d", expected, got)
	}
}
