// Package murphy selects and applies synthetic network faults for outbound HTTP
// calls.
//
// A Scenario is an ordered list of Rules. Each Rule pairs a Matcher, which
// decides whether the rule applies to a request, with an ordered list of
// Effects: delays, canned responses, or crashes. The first rule whose matcher
// accepts the request wins.
//
// # Building a scenario
//
//	scenario := murphy.NewScenario(
//	    murphy.NewRule().
//	        Matches(murphy.And(murphy.Method("POST"), murphy.Path("/api/orders/**"))).
//	        Causes(murphy.Latency(200*time.Millisecond), murphy.Status(503)).
//	        MustBuild(),
//	    murphy.NewRule().
//	        Matches(murphy.Header("X-Chaos")).
//	        Causes(murphy.WithProbability(murphy.Crash("connection reset"), 0.25)).
//	        MustBuild(),
//	)
//
// # Applying it
//
// Adapters build a RequestContext per call, resolve a rule with
// Scenario.FindRule and run it with Execute (blocking, context-aware waits) or
// ExecuteAsync / ExecuteFunc (timer-scheduled waits). A nil response with a nil
// error means the call should go to the real transport. The transport package
// provides the http.RoundTripper adapter.
//
// # Concurrency
//
// Matchers, effects, rules and scenarios are immutable once built and safe for
// concurrent use. Random draws come from a Rand; the default is the lock-free
// math/rand/v2 global source. Use WithRand and NewSeededRand for reproducible
// runs.
package murphy
