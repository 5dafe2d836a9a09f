package murphy

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithProbability_One(t *testing.T) {
	e := WithProbability(Status(200), 1.0)

	resp, err := e.Apply(context.Background(), defaultCtx())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, 1.0, e.Probability())
}

func TestWithProbability_Zero(t *testing.T) {
	// A zero draw must still not fire a zero-probability effect.
	e := WithProbability(Status(200), 0.0, WithRand(fixedRand{f: 0}))

	for range 100 {
		resp, err := e.Apply(context.Background(), defaultCtx())
		require.NoError(t, err)
		require.Nil(t, resp)
	}
	assert.Equal(t, 0.0, e.Probability())
}

func TestWithProbability_Clamps(t *testing.T) {
	assert.Equal(t, 0.0, WithProbability(Status(200), -0.1).Probability())
	assert.Equal(t, 1.0, WithProbability(Status(200), 1.1).Probability())
	assert.Equal(t, 0.0, WithProbability(Status(200), math.NaN()).Probability())
	assert.Equal(t, 1.0, WithProbability(Latency(time.Millisecond), math.Inf(1)).Probability())
}

func TestWithProbability_RollBoundary(t *testing.T) {
	ctx := context.Background()

	hit, err := WithProbability(Status(500), 0.3, WithRand(fixedRand{f: 0.3})).Apply(ctx, defaultCtx())
	require.NoError(t, err)
	assert.NotNil(t, hit, "r <= p fires")

	miss, err := WithProbability(Status(500), 0.3, WithRand(fixedRand{f: 0.31})).Apply(ctx, defaultCtx())
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestWithProbability_Variants(t *testing.T) {
	for _, e := range []Effect{
		WithProbability(Status(200), 0.75),
		WithProbability(JSONBody("{}"), 0.25),
		WithProbability(Crash("Error"), 0.9),
		WithProbability(OK(), 0.1),
	} {
		_, isDelay := e.(DelayEffect)
		assert.False(t, isDelay)
		assert.IsType(t, &probabilisticEffect{}, e)
	}

	latency := WithProbability(Latency(100*time.Millisecond), 1.0)
	require.Implements(t, (*DelayEffect)(nil), latency)
	assert.Equal(t, 1.0, latency.Probability())
	assert.Equal(t, 100*time.Millisecond, latency.(DelayEffect).Duration())

	jitter := WithProbability(Jitter(10*time.Millisecond, 20*time.Millisecond), 0.5)
	require.Implements(t, (*DelayEffect)(nil), jitter)
	assert.Equal(t, 0.5, jitter.Probability())
}

func TestWithProbability_DelayZeroNeverWaits(t *testing.T) {
	e := WithProbability(Latency(time.Hour), 0).(DelayEffect)

	for range 100 {
		assert.Zero(t, e.Duration())
	}

	resp, err := e.Apply(context.Background(), defaultCtx())
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestWithProbability_DelayRollsOnDuration(t *testing.T) {
	hit := WithProbability(Latency(50*time.Millisecond), 0.5, WithRand(fixedRand{f: 0.2})).(DelayEffect)
	miss := WithProbability(Latency(50*time.Millisecond), 0.5, WithRand(fixedRand{f: 0.7})).(DelayEffect)

	assert.Equal(t, 50*time.Millisecond, hit.Duration())
	assert.Zero(t, miss.Duration())
}

func TestWithProbability_CrashPropagates(t *testing.T) {
	_, err := WithProbability(Crash("boom"), 1).Apply(context.Background(), defaultCtx())
	assert.ErrorIs(t, err, ErrInducedFailure)
}

func TestWithProbability_Frequency(t *testing.T) {
	e := WithProbability(Status(503), 0.25, WithRand(NewSeededRand(1)))

	fired := 0
	const n = 4000
	for range n {
		resp, err := e.Apply(context.Background(), defaultCtx())
		require.NoError(t, err)
		if resp != nil {
			fired++
		}
	}
	assert.InDelta(t, 0.25, float64(fired)/n, 0.05)
}

func TestWithProbability_Nested(t *testing.T) {
	inner := WithProbability(Latency(5*time.Millisecond), 1)
	outer := WithProbability(inner, 0)

	require.Implements(t, (*DelayEffect)(nil), outer)
	assert.Zero(t, outer.(DelayEffect).Duration())
}
