package murphy

import (
	"context"
	"fmt"
	"math"
	"time"
)

// WithProbability gates e behind a random roll that succeeds with chance p.
// p is clamped into [0, 1]. Wrapping a DelayEffect yields a DelayEffect whose
// Duration performs the roll, so schedulers can keep waiting without calling
// Apply.
func WithProbability(e Effect, p float64, opts ...Option) Effect {
	o := applyOptions(opts)
	chance := clamp(p)

	if d, ok := e.(DelayEffect); ok {
		return &probabilisticDelayEffect{delegate: d, probability: chance, rand: o.rand}
	}
	return &probabilisticEffect{delegate: e, probability: chance, rand: o.rand}
}

type probabilisticEffect struct {
	delegate    Effect
	probability float64
	rand        Rand
}

func (e *probabilisticEffect) Apply(ctx context.Context, rc *RequestContext) (*Response, error) {
	if !roll(e.rand, e.probability) {
		return nil, nil
	}
	return e.delegate.Apply(ctx, rc)
}

func (e *probabilisticEffect) Probability() float64 { return e.probability }

func (e *probabilisticEffect) String() string {
	return fmt.Sprintf("%v@%g", e.delegate, e.probability)
}

type probabilisticDelayEffect struct {
	delegate    DelayEffect
	probability float64
	rand        Rand
}

// Duration rolls first and only then asks the delegate, so a jitter delegate
// draws its own value independently of the roll.
func (e *probabilisticDelayEffect) Duration() time.Duration {
	if !roll(e.rand, e.probability) {
		return 0
	}
	return e.delegate.Duration()
}

func (e *probabilisticDelayEffect) Apply(ctx context.Context, _ *RequestContext) (*Response, error) {
	return nil, Sleep(ctx, e.Duration())
}

func (e *probabilisticDelayEffect) Probability() float64 { return e.probability }

func (e *probabilisticDelayEffect) String() string {
	return fmt.Sprintf("%v@%g", e.delegate, e.probability)
}

// roll succeeds when a draw r in [0, 1) satisfies r <= p. p == 0 never
// succeeds and p == 1 always does; neither consumes a draw.
func roll(r Rand, p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	default:
		return r.Float64() <= p
	}
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
