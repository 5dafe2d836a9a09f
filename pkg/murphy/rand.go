package murphy

import (
	"math/rand/v2"
	"sync"
)

// Rand is the source of randomness for probability rolls and jitter draws.
// Implementations must be safe for concurrent use.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Int64N returns a value in [0, n). It panics if n <= 0.
	Int64N(n int64) int64
}

// globalRand draws from the math/rand/v2 top-level functions, which are safe
// for concurrent use and do not serialize callers on a shared lock.
type globalRand struct{}

func (globalRand) Float64() float64     { return rand.Float64() }
func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// DefaultRand is the source used when no Rand is injected.
var DefaultRand Rand = globalRand{}

// lockedRand guards a seeded generator so it can be shared between goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a deterministic Rand for tests and reproducible
// experiments. Draws are serialized with a mutex, so prefer DefaultRand under
// heavy concurrent load.
func NewSeededRand(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

// Option configures the random source of an effect.
type Option func(*options)

type options struct {
	rand Rand
}

// WithRand makes the effect draw from r instead of DefaultRand. A nil r is
// ignored.
func WithRand(r Rand) Option {
	return func(o *options) {
		if r != nil {
			o.rand = r
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{rand: DefaultRand}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
