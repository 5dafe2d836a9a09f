// Package metrics provides Prometheus-compatible metrics for murphy.
//
// It implements the Prometheus text exposition format (text/plain; version=0.0.4)
// using only the standard library. Counters, gauges and histograms support
// labels and are safe for concurrent use.
//
// # Murphy Metrics
//
// A Collector registers the metrics recorded by the transport:
//
//   - murphy_requests_total: calls by outcome (passthrough, injected, crashed, cancelled)
//   - murphy_rule_matches_total: matches per rule name
//   - murphy_effect_delay_seconds: time spent executing a matched rule's effects
//   - murphy_inflight_requests: calls currently executing effects
//
// # Usage
//
//	collector := metrics.NewCollector(nil)
//	rt := transport.New(nil, scenario, transport.WithMetrics(collector))
//
//	http.Handle("/metrics", collector.Registry().Handler())
//
// Custom metrics can also be created:
//
//	registry := metrics.NewRegistry()
//	counter := registry.NewCounter("my_counter", "Description of counter", "label1")
//	vec, _ := counter.WithLabels("value1")
//	_ = vec.Inc()
package metrics
