package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	nethttputil "net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/murphy/pkg/httputil"
	"github.com/getmockd/murphy/pkg/logging"
	"github.com/getmockd/murphy/pkg/metrics"
	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/requestlog"
	"github.com/getmockd/murphy/pkg/transport"
)

// AdminPrefix is the path prefix reserved for the proxy's own endpoints.
const AdminPrefix = "/__murphy/"

// Config holds proxy configuration.
type Config struct {
	// Target is the upstream base URL. When empty the proxy forwards
	// absolute-form requests to their own host.
	Target string

	// Name labels the active scenario in the status endpoint.
	Name string

	Scenario *murphy.Scenario
	Filter   *Filter
	Logger   *slog.Logger
	Metrics  *metrics.Collector

	// Journal records every proxied call. Defaults to an in-memory store
	// of requestlog.DefaultCapacity entries.
	Journal requestlog.Store

	// Base is the outbound transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// DisableAdmin serves /__murphy/ paths as ordinary proxied traffic.
	DisableAdmin bool
}

// Proxy is an http.Handler that forwards requests upstream through a murphy
// transport. The scenario can be replaced while serving.
type Proxy struct {
	target  *url.URL
	base    http.RoundTripper
	logger  *slog.Logger
	metrics *metrics.Collector
	journal requestlog.Store
	started time.Time
	admin   bool

	reverse *nethttputil.ReverseProxy

	mu        sync.RWMutex
	name      string
	scenario  *murphy.Scenario
	filter    *Filter
	transport *transport.Transport
}

// New creates a proxy from cfg.
func New(cfg Config) (*Proxy, error) {
	p := &Proxy{
		base:    cfg.Base,
		logger:  logging.OrNop(cfg.Logger),
		metrics: cfg.Metrics,
		journal: cfg.Journal,
		started: time.Now(),
		admin:   !cfg.DisableAdmin,
		filter:  cfg.Filter,
	}
	if p.base == nil {
		p.base = http.DefaultTransport
	}
	if p.metrics == nil {
		p.metrics = metrics.NewCollector(nil)
	}
	if p.journal == nil {
		p.journal = requestlog.NewMemory(requestlog.DefaultCapacity)
	}
	if cfg.Target != "" {
		u, err := url.Parse(cfg.Target)
		if err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", cfg.Target, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return nil, fmt.Errorf("invalid target %q: want an absolute http(s) URL", cfg.Target)
		}
		p.target = u
	}
	p.SetScenario(cfg.Name, cfg.Scenario)

	p.reverse = &nethttputil.ReverseProxy{
		Rewrite:      p.rewrite,
		Transport:    roundTripperFunc(p.roundTrip),
		ErrorHandler: p.errorHandler,
	}
	return p, nil
}

// Target returns the upstream base URL, or nil in forward mode.
func (p *Proxy) Target() *url.URL { return p.target }

// Metrics returns the collector the proxy records into.
func (p *Proxy) Metrics() *metrics.Collector { return p.metrics }

// Journal returns the store of proxied calls.
func (p *Proxy) Journal() requestlog.Store { return p.journal }

// Scenario returns the active scenario and its name.
func (p *Proxy) Scenario() (string, *murphy.Scenario) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name, p.scenario
}

// SetScenario replaces the active scenario. In-flight requests finish with
// the scenario they started with.
func (p *Proxy) SetScenario(name string, s *murphy.Scenario) {
	t := transport.New(p.base, s,
		transport.WithLogger(p.logger),
		transport.WithMetrics(p.metrics),
		transport.WithJournal(p.journal),
	)
	p.mu.Lock()
	p.name = name
	p.scenario = s
	p.transport = t
	p.mu.Unlock()
	p.logger.Info("scenario activated", "name", name, "rules", s.Len())
}

// Filter returns the current bypass filter.
func (p *Proxy) Filter() *Filter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// SetFilter replaces the bypass filter.
func (p *Proxy) SetFilter(f *Filter) {
	p.mu.Lock()
	p.filter = f
	p.mu.Unlock()
}

// current returns the active transport and filter under one read lock. The
// transport carries the scenario it was built with.
func (p *Proxy) current() (*transport.Transport, *Filter) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.transport, p.filter
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.admin && strings.HasPrefix(r.URL.Path, AdminPrefix) && !r.URL.IsAbs() {
		p.serveAdmin(w, r)
		return
	}
	if r.Method == http.MethodConnect {
		p.handleConnect(w, r)
		return
	}
	if p.target == nil && !r.URL.IsAbs() {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request",
			"no target configured and request URL is not absolute")
		return
	}
	p.reverse.ServeHTTP(w, r)
}

// rewrite points the outbound request at the target, or leaves an
// absolute-form request addressed to its own host.
func (p *Proxy) rewrite(pr *nethttputil.ProxyRequest) {
	if p.target != nil {
		pr.SetURL(p.target)
		pr.Out.Host = p.target.Host
	}
	pr.SetXForwarded()
}

// roundTrip sends out through the active murphy transport unless the filter
// bypasses it.
func (p *Proxy) roundTrip(out *http.Request) (*http.Response, error) {
	t, f := p.current()
	if f.Bypass(out.URL.Host, out.URL.Path) {
		p.logger.Debug("bypassing scenario", "method", out.Method, "url", out.URL.String())
		return p.base.RoundTrip(out)
	}
	return t.RoundTrip(out)
}

func (p *Proxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, murphy.ErrInducedFailure):
		httputil.WriteBadGateway(w, "induced_failure", err.Error())
	case r.Context().Err() != nil:
		// Client went away; nothing useful to write.
		p.logger.Debug("client cancelled request", "url", r.URL.String(), "error", err)
	default:
		p.logger.Warn("upstream error", "url", r.URL.String(), "error", err)
		httputil.WriteBadGateway(w, "upstream_error", err.Error())
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
