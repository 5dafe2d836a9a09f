// Package transport adapts murphy scenarios to net/http.
//
// A Transport wraps another http.RoundTripper. For every outgoing request it
// resolves the first matching rule and runs its effects: delays are waited
// out, an injected response is returned without touching the network and a
// crash surfaces as a transport error. Requests no rule claims, and rules that
// run out of effects, go to the wrapped transport unchanged.
//
//	client := transport.Decorate(http.DefaultClient, scenario,
//	    transport.WithLogger(logger),
//	    transport.WithMetrics(metrics.NewCollector(nil)),
//	)
//	resp, err := client.Get("https://api.example.com/users")
//	if errors.Is(err, murphy.ErrInducedFailure) {
//	    // the scenario crashed the call
//	}
package transport
