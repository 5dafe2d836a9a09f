package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/murphy/pkg/murphy"
)

// exprEnv is the sample environment expressions are type-checked against.
var exprEnv = map[string]any{
	"url":     "",
	"path":    "",
	"method":  "",
	"headers": map[string]string{},
}

// exprMatcher matches when a boolean expr-lang expression evaluates to true.
type exprMatcher struct {
	source  string
	program *vm.Program
}

// Expr compiles source into a matcher. The expression sees url, path, method
// and headers (lower-cased names mapped to comma-joined values, case variants
// merged in sorted name order) and must
// yield a bool. A runtime error during evaluation counts as no match.
func Expr(source string) (murphy.Matcher, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", murphy.ErrConfiguration, source, err)
	}
	return &exprMatcher{source: source, program: program}, nil
}

func (m *exprMatcher) Matches(rc *murphy.RequestContext) bool {
	headers := make(map[string]string, len(rc.Headers))
	for _, name := range slices.Sorted(maps.Keys(rc.Headers)) {
		values := rc.Headers[name]
		key := strings.ToLower(name)
		if prev, ok := headers[key]; ok {
			headers[key] = prev + ", " + strings.Join(values, ", ")
			continue
		}
		headers[key] = strings.Join(values, ", ")
	}
	env := map[string]any{
		"url":     rc.URL,
		"path":    rc.Path,
		"method":  rc.Method,
		"headers": headers,
	}

	out, err := expr.Run(m.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (m *exprMatcher) String() string {
	return fmt.Sprintf("Expr '%s'", m.source)
}
