package metrics

import "time"

// Outcome labels for murphy_requests_total.
const (
	OutcomePassthrough = "passthrough"
	OutcomeInjected    = "injected"
	OutcomeCrashed     = "crashed"
	OutcomeCancelled   = "cancelled"
)

// Collector is the set of metrics recorded for intercepted calls.
type Collector struct {
	registry *Registry

	Requests    *Counter
	RuleMatches *Counter
	EffectDelay *Histogram
	InFlight    *Gauge
}

// NewCollector registers the murphy metrics on r. A nil r gets a fresh registry.
func NewCollector(r *Registry) *Collector {
	if r == nil {
		r = NewRegistry()
	}
	return &Collector{
		registry: r,
		Requests: r.NewCounter("murphy_requests_total",
			"Intercepted calls by outcome.", "outcome"),
		RuleMatches: r.NewCounter("murphy_rule_matches_total",
			"Calls matched by each rule.", "rule"),
		EffectDelay: r.NewHistogram("murphy_effect_delay_seconds",
			"Time spent executing the effects of a matched rule.", DelayBuckets),
		InFlight: r.NewGauge("murphy_inflight_requests",
			"Calls currently executing effects."),
	}
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveOutcome counts one call with the given outcome. Safe on a nil collector.
func (c *Collector) ObserveOutcome(outcome string) {
	if c == nil {
		return
	}
	if vec, err := c.Requests.WithLabels(outcome); err == nil {
		_ = vec.Inc()
	}
}

// ObserveMatch counts a match for the rule and records the time its effects took.
func (c *Collector) ObserveMatch(rule string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if rule == "" {
		rule = "unnamed"
	}
	if vec, err := c.RuleMatches.WithLabels(rule); err == nil {
		_ = vec.Inc()
	}
	_ = c.EffectDelay.Observe(elapsed.Seconds())
}

// Begin marks a call as executing effects and returns the function that ends it.
func (c *Collector) Begin() (end func()) {
	if c == nil {
		return func() {}
	}
	_ = c.InFlight.Add(1)
	return func() { _ = c.InFlight.Add(-1) }
}
