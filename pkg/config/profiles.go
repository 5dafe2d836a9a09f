package config

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/getmockd/murphy/pkg/murphy"
)

// Profile is a ready-made scenario that can be applied by name instead of
// writing rules by hand.
type Profile struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Document    Document `json:"document" yaml:"document"`
}

// builtinProfiles holds the built-in profiles. Each is a single catch-all
// rule: an optional random delay followed by probabilistic failures.
var builtinProfiles = map[string]Profile{
	"slow-api": profile("slow-api", "Simulates slow upstream API",
		jitter(500*time.Millisecond, 2000*time.Millisecond),
	),
	"degraded": profile("degraded", "Partially degraded service",
		append(effects(jitter(200*time.Millisecond, 800*time.Millisecond)),
			errorRate(0.05, http.StatusServiceUnavailable)...)...,
	),
	"flaky": profile("flaky", "Unreliable service with random errors",
		append(effects(jitter(0, 100*time.Millisecond)),
			errorRate(0.20, 500, 502, 503)...)...,
	),
	"offline": profile("offline", "Service completely down",
		errorRate(1.0, http.StatusServiceUnavailable)...,
	),
	"timeout": profile("timeout", "Connection timeout simulation",
		latency(30*time.Second),
	),
	"rate-limited": profile("rate-limited", "Rate-limited API",
		append(effects(jitter(50*time.Millisecond, 200*time.Millisecond)),
			withProbability(respond(http.StatusTooManyRequests, "rate limit exceeded", "Retry-After", "1"), 0.30))...,
	),
	"mobile-3g": profile("mobile-3g", "Mobile 3G network conditions",
		append(effects(jitter(300*time.Millisecond, 800*time.Millisecond)),
			errorRate(0.02, http.StatusServiceUnavailable)...)...,
	),
	"satellite": profile("satellite", "Satellite internet simulation",
		append(effects(jitter(600*time.Millisecond, 2000*time.Millisecond)),
			errorRate(0.05, http.StatusServiceUnavailable)...)...,
	),
	"dns-flaky": profile("dns-flaky", "Intermittent DNS resolution failures",
		withProbability(crash("dial tcp: lookup upstream: no such host"), 0.10),
	),
	"overloaded": profile("overloaded", "Overloaded server under heavy load",
		append(effects(jitter(1000*time.Millisecond, 5000*time.Millisecond)),
			errorRate(0.15, 500, 502, 503, 504)...)...,
	),
}

// ListProfiles returns all built-in profiles sorted alphabetically by name.
func ListProfiles() []Profile {
	profiles := make([]Profile, 0, len(builtinProfiles))
	for _, p := range builtinProfiles {
		profiles = append(profiles, p.clone())
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// GetProfile returns a copy of a built-in profile.
func GetProfile(name string) (Profile, bool) {
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// ProfileNames returns the names of all built-in profiles sorted alphabetically.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileScenario builds the named profile. seed, when non-nil, makes its
// random draws reproducible.
func ProfileScenario(name string, seed *uint64) (*murphy.Scenario, error) {
	p, ok := GetProfile(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	if seed != nil {
		s := *seed
		p.Document.Seed = &s
	}
	return Build(&p.Document)
}

func profile(name, description string, effects ...EffectSpec) Profile {
	return Profile{
		Name:        name,
		Description: description,
		Document: Document{
			Name:  name,
			Rules: []RuleSpec{{Name: name, Effects: effects}},
		},
	}
}

// clone copies the rule and effect slices so callers cannot edit the
// built-in table. Effect fields are pointers to values never mutated here.
func (p Profile) clone() Profile {
	rules := make([]RuleSpec, len(p.Document.Rules))
	for i, r := range p.Document.Rules {
		r.Effects = slices.Clone(r.Effects)
		rules[i] = r
	}
	p.Document.Rules = rules
	return p
}

func effects(e ...EffectSpec) []EffectSpec { return e }

func latency(d time.Duration) EffectSpec {
	v := Duration(d)
	return EffectSpec{Latency: &v}
}

func jitter(lo, hi time.Duration) EffectSpec {
	return EffectSpec{Jitter: &JitterSpec{Min: Duration(lo), Max: Duration(hi)}}
}

func status(code int) EffectSpec {
	return EffectSpec{Status: &code}
}

func crash(msg string) EffectSpec {
	return EffectSpec{Crash: &msg}
}

func respond(code int, body string, header, value string) EffectSpec {
	return EffectSpec{Respond: &RespondSpec{
		Code:    code,
		Body:    body,
		Headers: map[string]StringList{header: {value}},
	}}
}

func withProbability(e EffectSpec, p float64) EffectSpec {
	e.Probability = &p
	return e
}

// errorRate spreads a total failure probability evenly over codes. Effects
// are tried in order, so each one's probability is conditioned on the earlier
// ones not firing.
func errorRate(total float64, codes ...int) []EffectSpec {
	if total >= 1 && len(codes) > 0 {
		return []EffectSpec{status(codes[0])}
	}
	share := total / float64(len(codes))
	out := make([]EffectSpec, len(codes))
	for i, code := range codes {
		p := share / (1 - float64(i)*share)
		out[i] = withProbability(status(code), p)
	}
	return out
}
