package transport

import (
	"net/http"
	"time"

	"github.com/getmockd/murphy/pkg/murphy"
)

// AsyncResult is the outcome of RoundTripAsync.
type AsyncResult struct {
	Response *http.Response
	Err      error
}

// RoundTripAsync behaves like RoundTrip but returns immediately. Injected
// delays are scheduled on timers rather than blocking a goroutine, and a
// passthrough runs the base transport on its own goroutine. The channel
// receives exactly one result.
func (t *Transport) RoundTripAsync(req *http.Request) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	deliver := func(resp *http.Response, err error) {
		out <- AsyncResult{Response: resp, Err: err}
	}

	c := t.newCall(req)
	if c.rule == nil {
		go func() { deliver(t.passthrough(c)) }()
		return out
	}
	c.log.Debug("rule matched", "mode", "async")

	end := t.metrics.Begin()
	murphy.ExecuteFunc(req.Context(), c.rule, c.rc, func(r murphy.Result) {
		end()
		t.metrics.ObserveMatch(c.rule.Name(), time.Since(c.start))
		deliver(t.finish(c, r.Response, r.Err))
	})
	return out
}
