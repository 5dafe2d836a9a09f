package murphy

import (
	"context"
	"fmt"
	"time"
)

// DelayEffect is an effect whose only behaviour is waiting. Schedulers read
// Duration and wait without calling Apply; each call may return a fresh value.
type DelayEffect interface {
	Effect
	Duration() time.Duration
}

// Latency waits d. Durations are kept at millisecond resolution.
func Latency(d time.Duration) DelayEffect {
	return &latencyEffect{d: toMillis(d)}
}

// Jitter waits a duration drawn uniformly from the whole milliseconds in
// [min, max] on every evaluation. When min >= max it always waits min.
func Jitter(min, max time.Duration, opts ...Option) DelayEffect {
	o := applyOptions(opts)
	return &jitterEffect{min: toMillis(min), max: toMillis(max), rand: o.rand}
}

type latencyEffect struct {
	d time.Duration
}

func (e *latencyEffect) Duration() time.Duration { return e.d }

func (e *latencyEffect) Apply(ctx context.Context, _ *RequestContext) (*Response, error) {
	return nil, Sleep(ctx, e.d)
}

func (e *latencyEffect) Probability() float64 { return 1 }

func (e *latencyEffect) String() string { return fmt.Sprintf("Latency(%s)", e.d) }

type jitterEffect struct {
	min, max time.Duration
	rand     Rand
}

func (e *jitterEffect) Duration() time.Duration {
	if e.min >= e.max {
		return e.min
	}
	lo, hi := e.min.Milliseconds(), e.max.Milliseconds()
	return time.Duration(lo+e.rand.Int64N(hi-lo+1)) * time.Millisecond
}

func (e *jitterEffect) Apply(ctx context.Context, _ *RequestContext) (*Response, error) {
	return nil, Sleep(ctx, e.Duration())
}

func (e *jitterEffect) Probability() float64 { return 1 }

func (e *jitterEffect) String() string { return fmt.Sprintf("Jitter(%s..%s)", e.min, e.max) }

// Sleep waits d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was cut short. Non-positive durations return
// immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func toMillis(d time.Duration) time.Duration {
	return d.Truncate(time.Millisecond)
}
