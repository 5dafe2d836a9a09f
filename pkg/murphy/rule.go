package murphy

import (
	"fmt"
	"slices"
	"strings"
)

// Rule pairs a Matcher with a non-empty, ordered list of Effects.
type Rule struct {
	name    string
	matcher Matcher
	effects []Effect
}

// NewRule starts a rule definition. The matcher defaults to Always().
func NewRule() *RuleBuilder {
	return &RuleBuilder{matcher: Always()}
}

// Name returns the label given with RuleBuilder.Named, or "".
func (r *Rule) Name() string { return r.name }

// Matcher returns the rule's matcher.
func (r *Rule) Matcher() Matcher { return r.matcher }

// Effects returns a copy of the rule's effects in execution order.
func (r *Rule) Effects() []Effect { return slices.Clone(r.effects) }

// Matches reports whether the rule applies to rc.
func (r *Rule) Matches(rc *RequestContext) bool { return r.matcher.Matches(rc) }

func (r *Rule) String() string {
	parts := make([]string, len(r.effects))
	for i, e := range r.effects {
		parts[i] = fmt.Sprint(e)
	}
	label := ""
	if r.name != "" {
		label = "name=" + r.name + ", "
	}
	return fmt.Sprintf("Rule(%smatcher=%s, effects=[%s])", label, r.matcher, strings.Join(parts, ", "))
}

// RuleBuilder accumulates a matcher and effects for a Rule.
type RuleBuilder struct {
	name    string
	matcher Matcher
	effects []Effect
}

// Named labels the rule for logs and metrics.
func (b *RuleBuilder) Named(name string) *RuleBuilder {
	b.name = name
	return b
}

// Matches sets the matcher. A nil matcher resets it to Always().
func (b *RuleBuilder) Matches(m Matcher) *RuleBuilder {
	if m == nil {
		m = Always()
	}
	b.matcher = m
	return b
}

// Causes appends effects. Calls accumulate; order is preserved.
func (b *RuleBuilder) Causes(effects ...Effect) *RuleBuilder {
	b.effects = append(b.effects, effects...)
	return b
}

// Build returns the rule. It fails with ErrConfiguration when no effect was
// added or when an added effect is nil.
func (b *RuleBuilder) Build() (*Rule, error) {
	if len(b.effects) == 0 {
		return nil, fmt.Errorf("%w: rule must have at least one effect", ErrConfiguration)
	}
	for i, e := range b.effects {
		if e == nil {
			return nil, fmt.Errorf("%w: effect %d is nil", ErrConfiguration, i)
		}
	}
	return &Rule{
		name:    b.name,
		matcher: b.matcher,
		effects: slices.Clone(b.effects),
	}, nil
}

// MustBuild is like Build but panics on error. Intended for test setup and
// package-level scenario definitions.
func (b *RuleBuilder) MustBuild() *Rule {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
