package murphy

import (
	"context"
	"sync"
	"time"
)

// Execute runs rule's effects in order for rc.
//
// Delay effects are honoured by waiting their Duration (cancellable through
// ctx) and processing always moves on to the next effect. Any other effect is
// applied: an error aborts at once, a response ends processing and is
// returned. When the effects run out, or rule is nil, Execute returns
// (nil, nil) and the caller should use the real transport.
func Execute(ctx context.Context, rule *Rule, rc *RequestContext) (*Response, error) {
	if rule == nil {
		return nil, nil
	}
	for _, e := range rule.effects {
		if d, ok := e.(DelayEffect); ok {
			if err := Sleep(ctx, d.Duration()); err != nil {
				return nil, err
			}
			continue
		}
		resp, err := e.Apply(ctx, rc)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

// Result is the outcome of ExecuteAsync. Both fields nil means "use the real
// transport".
type Result struct {
	Response *Response
	Err      error
}

// ExecuteAsync has the semantics of Execute but never blocks the caller.
// Delays are scheduled with time.AfterFunc instead of parking a goroutine on a
// sleep, and other effects are applied on a background goroutine. The
// returned channel receives exactly one Result and is never closed.
func ExecuteAsync(ctx context.Context, rule *Rule, rc *RequestContext) <-chan Result {
	out := make(chan Result, 1)
	ExecuteFunc(ctx, rule, rc, func(r Result) { out <- r })
	return out
}

// ExecuteFunc is ExecuteAsync with a callback instead of a channel. done is
// called exactly once, never on the caller's goroutine, so it may block.
func ExecuteFunc(ctx context.Context, rule *Rule, rc *RequestContext, done func(Result)) {
	run := &asyncRun{ctx: ctx, rc: rc, done: done}
	if rule != nil {
		run.effects = rule.effects
	}
	go run.step(0)
}

type asyncRun struct {
	ctx     context.Context
	effects []Effect
	rc      *RequestContext
	done    func(Result)
}

func (a *asyncRun) step(i int) {
	for ; i < len(a.effects); i++ {
		if err := a.ctx.Err(); err != nil {
			a.done(Result{Err: err})
			return
		}

		e := a.effects[i]
		if d, ok := e.(DelayEffect); ok {
			if wait := d.Duration(); wait > 0 {
				a.schedule(wait, i+1)
				return
			}
			continue
		}

		resp, err := e.Apply(a.ctx, a.rc)
		if err != nil || resp != nil {
			a.done(Result{Response: resp, Err: err})
			return
		}
	}
	a.done(Result{})
}

// schedule resumes at effect next once d has elapsed, or reports the context
// error if ctx finishes first. Exactly one of the two callbacks proceeds.
func (a *asyncRun) schedule(d time.Duration, next int) {
	var (
		mu      sync.Mutex
		claimed bool
		stopCtx func() bool
		timer   *time.Timer
	)
	claim := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if claimed {
			return false
		}
		claimed = true
		return true
	}

	// Hold mu while wiring both callbacks so neither can observe a half-built
	// state.
	mu.Lock()
	timer = time.AfterFunc(d, func() {
		if claim() {
			stopCtx()
			a.step(next)
		}
	})
	stopCtx = context.AfterFunc(a.ctx, func() {
		if claim() {
			timer.Stop()
			a.done(Result{Err: a.ctx.Err()})
		}
	})
	mu.Unlock()
}
