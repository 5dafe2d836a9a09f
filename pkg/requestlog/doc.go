// Package requestlog keeps a bounded history of intercepted calls for
// inspection: which rule matched, what was injected, and how long it took.
// It is distinct from operational logging, which uses log/slog.
//
// The transport writes one Entry per round trip to any Logger it is given.
// Memory is the in-process Store the proxy serves at /__murphy/requests.
//
//	journal := requestlog.NewMemory(500)
//	client := transport.Decorate(http.DefaultClient, scenario, transport.WithJournal(journal))
//	// ...
//	crashed := journal.List(&requestlog.Filter{Outcome: "crashed"})
//
// This is a leaf package with no internal dependencies, allowing it to be
// imported by any package without creating import cycles.
package requestlog
