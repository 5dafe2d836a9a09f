package metrics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't match the defined labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative value to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when registering a metric with a name that is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 stores the bits of a float64 in a uint64 for atomic access.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(val float64) {
	a.bits.Store(math.Float64bits(val))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := a.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if a.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

// MetricType represents the type of a metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the interface implemented by all metric types.
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	// Collect returns all samples, ordered by label values.
	Collect() []Sample
}

// Sample represents a single metric sample with labels.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// family holds one value per distinct label combination.
type family[V any] struct {
	name       string
	help       string
	labelNames []string
	newValue   func(labels map[string]string) *V

	mu     sync.RWMutex
	values map[string]*V
}

func newFamily[V any](name, help string, labelNames []string, newValue func(map[string]string) *V) family[V] {
	return family[V]{
		name:       name,
		help:       help,
		labelNames: slices.Clone(labelNames),
		newValue:   newValue,
		values:     make(map[string]*V),
	}
}

// Name returns the metric name.
func (f *family[V]) Name() string { return f.name }

// Help returns the help text.
func (f *family[V]) Help() string { return f.help }

func (f *family[V]) with(kind string, values []string) (*V, error) {
	if len(values) != len(f.labelNames) {
		return nil, fmt.Errorf("%w: %s %s expected %d labels, got %d",
			ErrLabelCountMismatch, kind, f.name, len(f.labelNames), len(values))
	}

	key := strings.Join(values, "\x00")
	f.mu.RLock()
	v, ok := f.values[key]
	f.mu.RUnlock()
	if ok {
		return v, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok = f.values[key]; ok {
		return v, nil
	}
	labels := make(map[string]string, len(f.labelNames))
	for i, name := range f.labelNames {
		labels[name] = values[i]
	}
	v = f.newValue(labels)
	f.values[key] = v
	return v, nil
}

func (f *family[V]) each(fn func(v *V)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(f.values[k])
	}
}

// Counter is a monotonically increasing metric.
type Counter struct {
	family[counterValue]
}

type counterValue struct {
	labels map[string]string
	value  atomicFloat64
}

func newCounter(name, help string, labelNames []string) *Counter {
	return &Counter{newFamily(name, help, labelNames, func(l map[string]string) *counterValue {
		return &counterValue{labels: l}
	})}
}

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// WithLabels returns the child counter for the given label values.
func (c *Counter) WithLabels(values ...string) (*CounterVec, error) {
	cv, err := c.with("counter", values)
	if err != nil {
		return nil, err
	}
	return &CounterVec{cv: cv, name: c.name}, nil
}

// Inc increments an unlabelled counter by 1.
func (c *Counter) Inc() error {
	return c.Add(1)
}

// Add adds delta to an unlabelled counter.
func (c *Counter) Add(delta float64) error {
	vec, err := c.WithLabels()
	if err != nil {
		return err
	}
	return vec.Add(delta)
}

// Collect returns all metric samples.
func (c *Counter) Collect() []Sample {
	var samples []Sample
	c.each(func(cv *counterValue) {
		samples = append(samples, Sample{Name: c.name, Labels: cv.labels, Value: cv.value.Load()})
	})
	return samples
}

// CounterVec is a counter bound to one label combination.
type CounterVec struct {
	cv   *counterValue
	name string
}

// Inc increments the counter by 1.
func (v *CounterVec) Inc() error {
	return v.Add(1)
}

// Add adds delta to the counter. Negative deltas are rejected.
func (v *CounterVec) Add(delta float64) error {
	if delta < 0 {
		return fmt.Errorf("%w: counter %s", ErrNegativeCounterValue, v.name)
	}
	v.cv.value.Add(delta)
	return nil
}

// Value returns the current count.
func (v *CounterVec) Value() float64 {
	return v.cv.value.Load()
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	family[gaugeValue]
}

type gaugeValue struct {
	labels map[string]string
	value  atomicFloat64
}

func newGauge(name, help string, labelNames []string) *Gauge {
	return &Gauge{newFamily(name, help, labelNames, func(l map[string]string) *gaugeValue {
		return &gaugeValue{labels: l}
	})}
}

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// WithLabels returns the child gauge for the given label values.
func (g *Gauge) WithLabels(values ...string) (*GaugeVec, error) {
	gv, err := g.with("gauge", values)
	if err != nil {
		return nil, err
	}
	return &GaugeVec{gv: gv}, nil
}

// Set sets an unlabelled gauge.
func (g *Gauge) Set(value float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Set(value)
	return nil
}

// Add adds delta to an unlabelled gauge.
func (g *Gauge) Add(delta float64) error {
	vec, err := g.WithLabels()
	if err != nil {
		return err
	}
	vec.Add(delta)
	return nil
}

// Collect returns all metric samples.
func (g *Gauge) Collect() []Sample {
	var samples []Sample
	g.each(func(gv *gaugeValue) {
		samples = append(samples, Sample{Name: g.name, Labels: gv.labels, Value: gv.value.Load()})
	})
	return samples
}

// GaugeVec is a gauge bound to one label combination.
type GaugeVec struct {
	gv *gaugeValue
}

func (v *GaugeVec) Set(value float64) { v.gv.value.Store(value) }
func (v *GaugeVec) Inc()              { v.Add(1) }
func (v *GaugeVec) Dec()              { v.Add(-1) }
func (v *GaugeVec) Add(delta float64) { v.gv.value.Add(delta) }
func (v *GaugeVec) Value() float64    { return v.gv.value.Load() }

// Histogram tracks the distribution of observed values.
type Histogram struct {
	family[histogramValue]
	buckets []float64
}

type histogramValue struct {
	labels  map[string]string
	buckets []float64
	counts  []atomic.Uint64
	sum     atomicFloat64
	count   atomic.Uint64
}

func newHistogram(name, help string, buckets []float64, labelNames []string) *Histogram {
	bounds := slices.Clone(buckets)
	sort.Float64s(bounds)
	if len(bounds) == 0 || !math.IsInf(bounds[len(bounds)-1], 1) {
		bounds = append(bounds, math.Inf(1))
	}

	h := &Histogram{buckets: bounds}
	h.family = newFamily(name, help, labelNames, func(l map[string]string) *histogramValue {
		return &histogramValue{
			labels:  l,
			buckets: bounds,
			counts:  make([]atomic.Uint64, len(bounds)),
		}
	})
	return h
}

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// WithLabels returns the child histogram for the given label values.
func (h *Histogram) WithLabels(values ...string) (*HistogramVec, error) {
	hv, err := h.with("histogram", values)
	if err != nil {
		return nil, err
	}
	return &HistogramVec{hv: hv}, nil
}

// Observe records a value in an unlabelled histogram.
func (h *Histogram) Observe(value float64) error {
	vec, err := h.WithLabels()
	if err != nil {
		return err
	}
	vec.Observe(value)
	return nil
}

// Collect returns the cumulative bucket, _sum and _count samples.
func (h *Histogram) Collect() []Sample {
	var samples []Sample
	h.each(func(hv *histogramValue) {
		var cumulative uint64
		for i, bound := range hv.buckets {
			cumulative += hv.counts[i].Load()
			labels := make(map[string]string, len(hv.labels)+1)
			for k, v := range hv.labels {
				labels[k] = v
			}
			labels["le"] = formatFloat(bound)
			samples = append(samples, Sample{Name: h.name + "_bucket", Labels: labels, Value: float64(cumulative)})
		}
		samples = append(samples,
			Sample{Name: h.name + "_sum", Labels: hv.labels, Value: hv.sum.Load()},
			Sample{Name: h.name + "_count", Labels: hv.labels, Value: float64(hv.count.Load())},
		)
	})
	return samples
}

// HistogramVec is a histogram bound to one label combination.
type HistogramVec struct {
	hv *histogramValue
}

// Observe records a value in the histogram.
func (v *HistogramVec) Observe(value float64) {
	for i, bound := range v.hv.buckets {
		if value <= bound {
			v.hv.counts[i].Add(1)
			break
		}
	}
	v.hv.sum.Add(value)
	v.hv.count.Add(1)
}

// Count returns the number of observations.
func (v *HistogramVec) Count() uint64 {
	return v.hv.count.Load()
}

// DelayBuckets are histogram buckets in seconds sized for injected latency.
var DelayBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
