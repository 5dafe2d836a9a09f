package murphy

import (
	"context"
	"net/http"
	"sync/atomic"
)

func ctxFor(path, method string, headers http.Header) *RequestContext {
	if path == "" {
		path = "/"
	}
	if method == "" {
		method = http.MethodGet
	}
	return &RequestContext{
		URL:     "https://test.com" + path,
		Path:    path,
		Method:  method,
		Headers: headers,
	}
}

func defaultCtx() *RequestContext { return ctxFor("/", http.MethodGet, nil) }

// fixedRand returns the same values on every draw.
type fixedRand struct {
	f float64
	n int64
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) Int64N(n int64) int64 {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

// countingEffect records how often it was applied and returns resp.
type countingEffect struct {
	calls atomic.Int32
	resp  *Response
}

func (e *countingEffect) Apply(context.Context, *RequestContext) (*Response, error) {
	e.calls.Add(1)
	return e.resp, nil
}

func (e *countingEffect) Probability() float64 { return 1 }
