package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is a declarative scenario.
type Document struct {
	// Name identifies the scenario in logs and the proxy status endpoint.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Seed makes every random draw of the scenario reproducible.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Rules are resolved first-match-wins in list order.
	Rules []RuleSpec `yaml:"rules" json:"rules"`
}

// RuleSpec describes one rule.
type RuleSpec struct {
	Name    string       `yaml:"name,omitempty" json:"name,omitempty"`
	Match   *MatchSpec   `yaml:"match,omitempty" json:"match,omitempty"`
	Effects []EffectSpec `yaml:"effects" json:"effects"`
}

// MatchSpec is one node of a matcher tree. Exactly one field must be set.
// Path and Method are pointers so that an explicit empty pattern is kept.
type MatchSpec struct {
	Path   *string     `yaml:"path,omitempty" json:"path,omitempty"`
	Method *string     `yaml:"method,omitempty" json:"method,omitempty"`
	Header *HeaderSpec `yaml:"header,omitempty" json:"header,omitempty"`
	All    []MatchSpec `yaml:"all,omitempty" json:"all,omitempty"`
	Any    []MatchSpec `yaml:"any,omitempty" json:"any,omitempty"`
	None   []MatchSpec `yaml:"none,omitempty" json:"none,omitempty"`
	Not    *MatchSpec  `yaml:"not,omitempty" json:"not,omitempty"`
	Always bool        `yaml:"always,omitempty" json:"always,omitempty"`
	Never  bool        `yaml:"never,omitempty" json:"never,omitempty"`
	Expr   string      `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// HeaderSpec matches a header by name glob and, optionally, value glob.
type HeaderSpec struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

// EffectSpec is one effect. Exactly one of the effect fields must be set;
// Probability may accompany any of them.
type EffectSpec struct {
	Latency *Duration    `yaml:"latency,omitempty" json:"latency,omitempty"`
	Jitter  *JitterSpec  `yaml:"jitter,omitempty" json:"jitter,omitempty"`
	Status  *int         `yaml:"status,omitempty" json:"status,omitempty"`
	JSON    *JSONSpec    `yaml:"json,omitempty" json:"json,omitempty"`
	Respond *RespondSpec `yaml:"respond,omitempty" json:"respond,omitempty"`
	Crash   *string      `yaml:"crash,omitempty" json:"crash,omitempty"`

	Probability *float64 `yaml:"probability,omitempty" json:"probability,omitempty"`
}

// JitterSpec is a uniformly random delay between Min and Max.
type JitterSpec struct {
	Min Duration `yaml:"min" json:"min"`
	Max Duration `yaml:"max" json:"max"`
}

// JSONSpec is a JSON response. A zero Code means 200.
type JSONSpec struct {
	Code int    `yaml:"code,omitempty" json:"code,omitempty"`
	Body string `yaml:"body" json:"body"`
}

// RespondSpec is an arbitrary response.
type RespondSpec struct {
	Code    int                   `yaml:"code" json:"code"`
	Body    string                `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]StringList `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Duration is a time.Duration written as "250ms" or as a bare number of
// milliseconds.
type Duration time.Duration

var errBadDuration = errors.New("invalid duration")

// ParseDuration reads s as a Go duration, or as milliseconds when it is a
// bare integer.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q", errBadDuration, s)
	}
	return Duration(d), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts an integer or a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w at line %d: expected a scalar", errBadDuration, node.Line)
	}
	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML writes the Go duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalJSON accepts a number of milliseconds or a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes the Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// StringList is a list of strings that may also be written as one string.
type StringList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = StringList{node.Value}
		return nil
	}
	var values []string
	if err := node.Decode(&values); err != nil {
		return err
	}
	*l = values
	return nil
}

// UnmarshalJSON accepts a string or an array of strings.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*l = values
	return nil
}
