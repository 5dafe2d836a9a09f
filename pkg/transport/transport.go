package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/murphy/internal/id"
	"github.com/getmockd/murphy/pkg/logging"
	"github.com/getmockd/murphy/pkg/metrics"
	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/requestlog"
	"github.com/getmockd/murphy/pkg/util"
)

// Transport is an http.RoundTripper that applies a murphy scenario before
// delegating to a base transport.
type Transport struct {
	base     http.RoundTripper
	scenario *murphy.Scenario
	logger   *slog.Logger
	metrics  *metrics.Collector
	journal  requestlog.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.logger = logging.OrNop(l) }
}

// WithMetrics records outcomes and rule matches on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(t *Transport) { t.metrics = c }
}

// WithJournal records every call, injected or not, in j.
func WithJournal(j requestlog.Logger) Option {
	return func(t *Transport) { t.journal = j }
}

// New wraps base with scenario. A nil base means http.DefaultTransport; a nil
// scenario passes every call through.
func New(base http.RoundTripper, scenario *murphy.Scenario, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:     base,
		scenario: scenario,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Decorate returns a shallow copy of client whose transport applies scenario.
// A nil client is treated as http.DefaultClient.
func Decorate(client *http.Client, scenario *murphy.Scenario, opts ...Option) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	c := *client
	c.Transport = New(client.Transport, scenario, opts...)
	return &c
}

// Scenario returns the scenario the transport applies.
func (t *Transport) Scenario() *murphy.Scenario { return t.scenario }

// Base returns the wrapped transport.
func (t *Transport) Base() http.RoundTripper { return t.base }

// RoundTrip implements http.RoundTripper. Waits honour req.Context().
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.newCall(req)
	if c.rule == nil {
		return t.passthrough(c)
	}
	c.log.Debug("rule matched")

	end := t.metrics.Begin()
	resp, err := murphy.Execute(req.Context(), c.rule, c.rc)
	end()
	t.metrics.ObserveMatch(c.rule.Name(), time.Since(c.start))

	return t.finish(c, resp, err)
}

// call is the state of one intercepted round trip.
type call struct {
	id    string
	req   *http.Request
	rc    *murphy.RequestContext
	rule  *murphy.Rule
	log   *slog.Logger
	start time.Time
}

func (t *Transport) newCall(req *http.Request) *call {
	c := &call{
		id:    id.Short(),
		req:   req,
		rc:    NewRequestContext(req),
		start: time.Now(),
	}
	c.rule = t.scenario.FindRule(c.rc)
	c.log = t.logger.With(
		"call_id", c.id,
		"method", c.rc.Method,
		"url", c.rc.URL,
	)
	if c.rule != nil {
		c.log = c.log.With("rule", c.rule.Name())
	}
	return c
}

// finish turns an execution outcome into the round trip result.
func (t *Transport) finish(c *call, resp *murphy.Response, err error) (*http.Response, error) {
	switch {
	case err != nil:
		closeRequestBody(c.req)
		outcome := metrics.OutcomeCrashed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeCancelled
			c.log.Debug("call cancelled during injected delay", "error", err)
		} else {
			c.log.Info("injected failure", "error", err)
		}
		t.metrics.ObserveOutcome(outcome)
		t.record(c, outcome, 0, err)
		return nil, err

	case resp != nil:
		closeRequestBody(c.req)
		t.metrics.ObserveOutcome(metrics.OutcomeInjected)
		c.log.Info("injected response",
			"status", resp.Code,
			"headers", util.HeaderNames(resp.Headers),
		)
		c.log.Debug("injected body", "body", util.TruncateBody(resp.Body, 0))
		t.record(c, metrics.OutcomeInjected, resp.Code, nil)
		return ToHTTPResponse(c.req, resp), nil

	default:
		c.log.Debug("effects exhausted, passing through")
		return t.passthrough(c)
	}
}

// passthrough sends the call to the base transport.
func (t *Transport) passthrough(c *call) (*http.Response, error) {
	t.metrics.ObserveOutcome(metrics.OutcomePassthrough)
	resp, err := t.base.RoundTrip(c.req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	t.record(c, metrics.OutcomePassthrough, status, err)
	return resp, err
}

// record adds the call to the journal, if one is set.
func (t *Transport) record(c *call, outcome string, status int, err error) {
	if t.journal == nil {
		return
	}
	e := &requestlog.Entry{
		ID:         c.id,
		Timestamp:  c.start,
		Method:     c.rc.Method,
		URL:        c.rc.URL,
		Path:       c.rc.Path,
		Outcome:    outcome,
		Status:     status,
		DurationMs: time.Since(c.start).Milliseconds(),
	}
	if c.rule != nil {
		e.Matched = true
		e.Rule = c.rule.Name()
	}
	if err != nil {
		e.Error = err.Error()
	}
	t.journal.Log(e)
}

// closeRequestBody honours the RoundTripper contract for calls that never
// reach the base transport.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
