package config

import (
	"fmt"
	"net/http"

	"github.com/getmockd/murphy/pkg/murphy"
)

// Build turns a document into a scenario. Every error wraps
// murphy.ErrConfiguration and names the offending rule and field.
func Build(doc *Document) (*murphy.Scenario, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", murphy.ErrConfiguration)
	}

	var opts []murphy.Option
	if doc.Seed != nil {
		opts = append(opts, murphy.WithRand(murphy.NewSeededRand(*doc.Seed)))
	}

	rules := make([]*murphy.Rule, 0, len(doc.Rules))
	for i, spec := range doc.Rules {
		rule, err := buildRule(spec, opts)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]%s: %w", i, ruleLabel(spec.Name), err)
		}
		rules = append(rules, rule)
	}
	return murphy.NewScenario(rules...), nil
}

func ruleLabel(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", name)
}

func buildRule(spec RuleSpec, opts []murphy.Option) (*murphy.Rule, error) {
	b := murphy.NewRule().Named(spec.Name)
	if spec.Match != nil {
		m, err := buildMatcher(*spec.Match)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		b.Matches(m)
	}
	for i, es := range spec.Effects {
		e, err := buildEffect(es, opts)
		if err != nil {
			return nil, fmt.Errorf("effects[%d]: %w", i, err)
		}
		b.Causes(e)
	}
	return b.Build()
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", murphy.ErrConfiguration, fmt.Sprintf(format, args...))
}

// buildMatcher converts one matcher node. Exactly one key must be present.
func buildMatcher(spec MatchSpec) (murphy.Matcher, error) {
	var (
		out   murphy.Matcher
		count int
		err   error
	)
	set := func(m murphy.Matcher, e error) {
		count++
		out, err = m, e
	}

	if spec.Path != nil {
		set(murphy.Path(*spec.Path), nil)
	}
	if spec.Method != nil {
		set(murphy.Method(*spec.Method), nil)
	}
	if spec.Header != nil {
		if spec.Header.Name == "" {
			set(nil, configErr("header name must not be empty"))
		} else if spec.Header.Value == "" {
			set(murphy.Header(spec.Header.Name), nil)
		} else {
			set(murphy.HeaderValue(spec.Header.Name, spec.Header.Value), nil)
		}
	}
	if spec.All != nil {
		set(buildList(spec.All, murphy.All))
	}
	if spec.Any != nil {
		set(buildList(spec.Any, murphy.Any))
	}
	if spec.None != nil {
		set(buildList(spec.None, murphy.None))
	}
	if spec.Not != nil {
		m, e := buildMatcher(*spec.Not)
		if e != nil {
			set(nil, fmt.Errorf("not: %w", e))
		} else {
			set(murphy.Not(m), nil)
		}
	}
	if spec.Always {
		set(murphy.Always(), nil)
	}
	if spec.Never {
		set(murphy.Never(), nil)
	}
	if spec.Expr != "" {
		set(Expr(spec.Expr))
	}

	switch {
	case count == 0:
		return nil, configErr("matcher node has no condition")
	case count > 1:
		return nil, configErr("matcher node has %d conditions, want exactly one", count)
	}
	return out, err
}

func buildList(specs []MatchSpec, combine func(...murphy.Matcher) murphy.Matcher) (murphy.Matcher, error) {
	ms := make([]murphy.Matcher, len(specs))
	for i, s := range specs {
		m, err := buildMatcher(s)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		ms[i] = m
	}
	return combine(ms...), nil
}

// buildEffect converts one effect entry. Exactly one effect key must be
// present; probability, when given, wraps the result.
func buildEffect(spec EffectSpec, opts []murphy.Option) (murphy.Effect, error) {
	var (
		out   murphy.Effect
		count int
	)

	if spec.Latency != nil {
		count++
		if *spec.Latency < 0 {
			return nil, configErr("latency must not be negative")
		}
		out = murphy.Latency(spec.Latency.Std())
	}
	if spec.Jitter != nil {
		count++
		if spec.Jitter.Min < 0 || spec.Jitter.Max < 0 {
			return nil, configErr("jitter bounds must not be negative")
		}
		out = murphy.Jitter(spec.Jitter.Min.Std(), spec.Jitter.Max.Std(), opts...)
	}
	if spec.Status != nil {
		count++
		if err := checkCode(*spec.Status); err != nil {
			return nil, err
		}
		out = murphy.Status(*spec.Status)
	}
	if spec.JSON != nil {
		count++
		code := spec.JSON.Code
		if code == 0 {
			code = http.StatusOK
		}
		if err := checkCode(code); err != nil {
			return nil, err
		}
		out = murphy.JSON(code, spec.JSON.Body)
	}
	if spec.Respond != nil {
		count++
		if err := checkCode(spec.Respond.Code); err != nil {
			return nil, err
		}
		var headers http.Header
		if len(spec.Respond.Headers) > 0 {
			headers = make(http.Header, len(spec.Respond.Headers))
			for name, values := range spec.Respond.Headers {
				for _, v := range values {
					headers.Add(name, v)
				}
			}
		}
		var body []byte
		if spec.Respond.Body != "" {
			body = []byte(spec.Respond.Body)
		}
		out = murphy.Respond(spec.Respond.Code, body, headers)
	}
	if spec.Crash != nil {
		count++
		out = murphy.Crash(*spec.Crash)
	}

	switch {
	case count == 0:
		return nil, configErr("effect has no action")
	case count > 1:
		return nil, configErr("effect has %d actions, want exactly one", count)
	}

	if spec.Probability != nil {
		out = murphy.WithProbability(out, *spec.Probability, opts...)
	}
	return out, nil
}

func checkCode(code int) error {
	if code < 100 || code > 999 {
		return configErr("status code %d out of range", code)
	}
	return nil
}
