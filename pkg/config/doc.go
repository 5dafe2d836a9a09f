// Package config loads murphy scenarios from YAML or JSON documents.
//
// A document is a named, ordered list of rules. Each rule has an optional
// matcher tree and one or more effects:
//
//	name: checkout-outage
//	seed: 42
//	rules:
//	  - name: slow-orders
//	    match:
//	      all:
//	        - path: /api/orders/**
//	        - method: POST
//	    effects:
//	      - jitter: { min: 100ms, max: 400ms }
//	      - status: 503
//	        probability: 0.2
//
// Documents are checked against an embedded JSON Schema before they are
// decoded, then turned into a *murphy.Scenario by Build:
//
//	doc, err := config.LoadFile("chaos.yaml")
//	if err != nil {
//	    return err
//	}
//	scenario, err := config.Build(doc)
//
// Durations accept Go syntax ("250ms", "1.5s") or bare integers, read as
// milliseconds. Built-in profiles such as "flaky" or "offline" are available
// through GetProfile and ProfileScenario.
package config
