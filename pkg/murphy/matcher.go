package murphy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/getmockd/murphy/internal/glob"
)

// Matcher decides whether a rule applies to a request. Implementations must be
// pure and safe for concurrent use.
type Matcher interface {
	Matches(rc *RequestContext) bool
	String() string
}

// Path matches when the request path fully matches the glob pattern. A single
// '*' stays within one path segment; "**" crosses segments.
func Path(pattern string) Matcher {
	return &pathMatcher{pattern: glob.Compile(pattern, true)}
}

// Method matches the HTTP verb exactly, ignoring case. No wildcards.
func Method(method string) Matcher {
	return &methodMatcher{method: method}
}

// Header matches when any header name fully matches namePattern.
func Header(namePattern string) Matcher {
	return &headerMatcher{name: glob.Compile(namePattern, false)}
}

// HeaderValue matches when a header whose name fully matches namePattern has
// at least one value that fully matches valuePattern.
func HeaderValue(namePattern, valuePattern string) Matcher {
	return &headerMatcher{
		name:  glob.Compile(namePattern, false),
		value: glob.Compile(valuePattern, false),
	}
}

// All matches when every matcher matches. All() always matches.
func All(matchers ...Matcher) Matcher {
	return &allMatcher{matchers: slices.Clone(matchers)}
}

// Any matches when at least one matcher matches. Any() never matches.
func Any(matchers ...Matcher) Matcher {
	return &anyMatcher{matchers: slices.Clone(matchers)}
}

// None matches when no matcher matches. None() always matches.
func None(matchers ...Matcher) Matcher {
	return &noneMatcher{matchers: slices.Clone(matchers)}
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return &notMatcher{matcher: m}
}

// And is shorthand for All(a, b).
func And(a, b Matcher) Matcher { return All(a, b) }

// Or is shorthand for Any(a, b).
func Or(a, b Matcher) Matcher { return Any(a, b) }

// Always matches every request.
func Always() Matcher { return constMatcher(true) }

// Never matches no request.
func Never() Matcher { return constMatcher(false) }

type pathMatcher struct {
	pattern *glob.Pattern
}

func (m *pathMatcher) Matches(rc *RequestContext) bool {
	return m.pattern.MatchString(rc.Path)
}

func (m *pathMatcher) String() string {
	return fmt.Sprintf("Path matches '%s'", m.pattern)
}

type methodMatcher struct {
	method string
}

func (m *methodMatcher) Matches(rc *RequestContext) bool {
	return strings.EqualFold(rc.Method, m.method)
}

func (m *methodMatcher) String() string {
	return fmt.Sprintf("Method is '%s'", m.method)
}

type headerMatcher struct {
	name  *glob.Pattern
	value *glob.Pattern // nil: name alone suffices
}

func (m *headerMatcher) Matches(rc *RequestContext) bool {
	for name, values := range rc.Headers {
		if !m.name.MatchString(name) {
			continue
		}
		if m.value == nil {
			return true
		}
		for _, v := range values {
			if m.value.MatchString(v) {
				return true
			}
		}
	}
	return false
}

func (m *headerMatcher) String() string {
	if m.value != nil {
		return fmt.Sprintf("Header '%s' matches value '%s'", m.name, m.value)
	}
	return fmt.Sprintf("Header '%s' exists", m.name)
}

type allMatcher struct {
	matchers []Matcher
}

func (m *allMatcher) Matches(rc *RequestContext) bool {
	for _, sub := range m.matchers {
		if !sub.Matches(rc) {
			return false
		}
	}
	return true
}

func (m *allMatcher) String() string { return "ALL(" + joinMatchers(m.matchers) + ")" }

type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Matches(rc *RequestContext) bool {
	for _, sub := range m.matchers {
		if sub.Matches(rc) {
			return true
		}
	}
	return false
}

func (m *anyMatcher) String() string { return "ANY(" + joinMatchers(m.matchers) + ")" }

type noneMatcher struct {
	matchers []Matcher
}

func (m *noneMatcher) Matches(rc *RequestContext) bool {
	for _, sub := range m.matchers {
		if sub.Matches(rc) {
			return false
		}
	}
	return true
}

func (m *noneMatcher) String() string { return "NONE(" + joinMatchers(m.matchers) + ")" }

type notMatcher struct {
	matcher Matcher
}

func (m *notMatcher) Matches(rc *RequestContext) bool { return !m.matcher.Matches(rc) }

func (m *notMatcher) String() string { return "NOT(" + m.matcher.String() + ")" }

type constMatcher bool

func (m constMatcher) Matches(*RequestContext) bool { return bool(m) }

func (m constMatcher) String() string {
	if m {
		return "ALWAYS"
	}
	return "NEVER"
}

func joinMatchers(ms []Matcher) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
