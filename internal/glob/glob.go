// Package glob compiles wildcard patterns into case-insensitive, fully anchored
// string predicates.
//
// Pattern syntax:
//
//   - "**" matches any sequence of characters, including '/'
//   - "*" matches any sequence of characters; in path mode it stops at '/'
//   - "?" matches exactly one character
//   - every other character, regex metacharacters included, matches itself
package glob

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Predicate reports whether s matches the compiled pattern in full.
type Predicate func(s string) bool

// Pattern is a compiled glob.
type Pattern struct {
	source string
	isPath bool
	re     *regexp.Regexp
}

// Compile translates pattern into a Pattern. When isPath is true a single '*'
// does not cross '/' boundaries. Compile never fails: every input, including
// the empty string, yields a usable pattern.
func Compile(pattern string, isPath bool) *Pattern {
	return &Pattern{
		source: pattern,
		isPath: isPath,
		re:     regexp.MustCompile(translate(pattern, isPath)),
	}
}

// MatchString reports whether s matches the whole pattern, ignoring case.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

// Predicate returns p as a plain function.
func (p *Pattern) Predicate() Predicate {
	return p.MatchString
}

// String returns the original glob text.
func (p *Pattern) String() string {
	return p.source
}

// Regexp returns the regular expression the glob was translated into.
func (p *Pattern) Regexp() string {
	return p.re.String()
}

// translate builds the anchored, case-insensitive regular expression for pattern.
func translate(pattern string, isPath bool) string {
	var sb strings.Builder
	sb.Grow(len(pattern)*2 + 8)
	sb.WriteString(`(?is)^`)

	pattern = validUTF8(pattern)
	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			if strings.HasPrefix(pattern[i:], "**") {
				sb.WriteString(`.*`)
				i += 2
				continue
			}
			if isPath {
				sb.WriteString(`[^/]*`)
			} else {
				sb.WriteString(`.*`)
			}
			i++
		case '?':
			sb.WriteByte('.')
			i++
		default:
			// Copy the literal run up to the next wildcard in one go so that
			// multi-byte runes stay intact.
			j := i + 1
			for j < len(pattern) && pattern[j] != '*' && pattern[j] != '?' {
				j++
			}
			sb.WriteString(regexp.QuoteMeta(pattern[i:j]))
			i = j
		}
	}

	sb.WriteString(`$`)
	return sb.String()
}

// validUTF8 replaces every invalid byte with U+FFFD, one replacement per byte,
// which is how regexp decodes invalid bytes in the subject.
func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}
