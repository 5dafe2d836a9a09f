package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveOutcome(OutcomeInjected)
	c.ObserveOutcome(OutcomeInjected)
	c.ObserveOutcome(OutcomePassthrough)
	c.ObserveMatch("slow", 150*time.Millisecond)
	c.ObserveMatch("", 0)

	var buf bytes.Buffer
	_, err := c.Registry().WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, `murphy_requests_total{outcome="injected"} 2`)
	assert.Contains(t, out, `murphy_requests_total{outcome="passthrough"} 1`)
	assert.Contains(t, out, `murphy_rule_matches_total{rule="slow"} 1`)
	assert.Contains(t, out, `murphy_rule_matches_total{rule="unnamed"} 1`)
	assert.Contains(t, out, `murphy_effect_delay_seconds_bucket{le="0.25"} 2`)
	assert.Contains(t, out, "murphy_effect_delay_seconds_count 2")
}

func TestCollector_Begin(t *testing.T) {
	c := NewCollector(NewRegistry())

	end := c.Begin()
	vec, err := c.InFlight.WithLabels()
	require.NoError(t, err)
	assert.Equal(t, 1.0, vec.Value())

	end()
	assert.Equal(t, 0.0, vec.Value())
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveOutcome(OutcomeCrashed)
		c.ObserveMatch("x", time.Second)
		c.Begin()()
	})
	assert.Nil(t, c.Registry())
}
