package murphy

import "slices"

// Scenario is an ordered list of rules resolved by "first match wins": rules
// are tried in list order and the first whose matcher accepts the request is
// used. There is no scoring, deduplication or reordering.
type Scenario struct {
	rules []*Rule
}

// NewScenario returns a scenario over rules. Nil rules are dropped.
func NewScenario(rules ...*Rule) *Scenario {
	kept := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Scenario{rules: kept}
}

// FindRule returns the first rule matching rc, or nil. A nil or empty
// scenario never matches.
func (s *Scenario) FindRule(rc *RequestContext) *Rule {
	if i := s.FindIndex(rc); i >= 0 {
		return s.rules[i]
	}
	return nil
}

// Rules returns a copy of the rules in resolution order.
func (s *Scenario) Rules() []*Rule {
	if s == nil {
		return nil
	}
	return slices.Clone(s.rules)
}

// Len returns the number of rules.
func (s *Scenario) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// FindIndex returns the position of the first rule matching rc, or -1.
func (s *Scenario) FindIndex(rc *RequestContext) int {
	if s == nil {
		return -1
	}
	for i, r := range s.rules {
		if r.matcher.Matches(rc) {
			return i
		}
	}
	return -1
}
