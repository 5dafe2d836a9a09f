package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_PathPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		// basic wildcards
		{"/api/*", "/api/users", true},
		{"/api/*", "/api/users/123", false},
		{"/api/**", "/api/users/123", true},
		{"/api/*/users", "/api/v1/users", true},
		{"/api/*/users", "/api/v1/v2/users", false},

		// single character
		{"/api/user?", "/api/users", true},
		{"/api/user?", "/api/user", false},
		{"file?.txt", "file1.txt", true},
		{"file?.txt", "file12.txt", false},

		// mixed
		{"/files/*/images/**", "/files/user/images/photo.jpg", true},
		{"/files/*/images/**", "/files/user/docs/photo.jpg", false},
		{"/img/*.png", "/img/photo.png", true},
		{"/img/*.png", "/img/photo.jpg", false},
		{"/docs/??.pdf", "/docs/ab.pdf", true},
		{"/docs/??.pdf", "/docs/a.pdf", false},
		{"**/metrics", "/api/v1/metrics", true},

		// exact
		{"/login", "/login", true},
		{"/login", "/logout", false},
		{"/login", "/login/", false},

		// case
		{"/API/USERS", "/api/users", true},
		{"/Api/*", "/api/Items", true},

		// edges
		{"*", "/a/b", false},
		{"**", "/a/b", true},
		{"", "", true},
		{"", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"→"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.pattern, true).MatchString(tt.input))
		})
	}
}

func TestCompile_NonPathPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"application/*", "application/json", true},
		{"application/*", "text/html", false},
		{"X-Custom-*", "X-Custom-Header", true},
		{"X-Custom-*", "X-Other-Header", false},
		{"X-*-Token", "X-Auth-Token", true},
		{"X-*-Token", "X-Auth-Header", false},
		{"text/**", "text/html; charset=UTF-8", true},
		{"text/**", "application/json", false},
		{"Content-???", "Content-123", true},
		{"Content-???", "Content-12", false},
		{"X-?-Header", "X-A-Header", true},
		{"X-?-Header", "X-AB-Header", false},
		{"content-type", "Content-Type", true},
		{"X-CUSTOM-HEADER", "x-custom-header", true},
		{"*", "any-header", true},
		{"**", "any-header", true},
		{"*", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"→"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.pattern, false).MatchString(tt.input))
		})
	}
}

func TestCompile_MetacharactersAreLiteral(t *testing.T) {
	literals := []string{
		"a.b", "a+b", "[x]", "{1,2}", "(a|b)", "^start", "end$", `back\slash`, "v1.0+build",
	}

	for _, lit := range literals {
		p := Compile(lit, true)
		assert.True(t, p.MatchString(lit), "pattern %q should match itself", lit)
	}

	assert.False(t, Compile("a.b", false).MatchString("axb"))
	assert.False(t, Compile("a+b", false).MatchString("aab"))
	assert.False(t, Compile("(a|b)", false).MatchString("a"))
}

func TestCompile_LiteralPatternsMatchOnlyEquality(t *testing.T) {
	p := Compile("/Orders/Pending", true)

	assert.True(t, p.MatchString("/orders/pending"))
	assert.True(t, p.MatchString("/ORDERS/PENDING"))
	assert.False(t, p.MatchString("/orders/pending/1"))
	assert.False(t, p.MatchString("x/orders/pending"))
	assert.False(t, p.MatchString("/orders/pendin"))
}

func TestCompile_InvalidUTF8(t *testing.T) {
	var p *Pattern
	require.NotPanics(t, func() { p = Compile("/api/\xff*", true) })

	assert.Equal(t, "/api/\xff*", p.String())
	assert.True(t, p.MatchString("/api/\xffusers"))
	assert.False(t, p.MatchString("/api/\xff/users"))
	assert.False(t, p.MatchString("/api/users"))

	q := Compile("\xff\xfe", false)
	assert.True(t, q.MatchString("\xff\xfe"))
	assert.False(t, q.MatchString("\xff"))
}

func TestPattern_Accessors(t *testing.T) {
	p := Compile("/api/*", true)

	assert.Equal(t, "/api/*", p.String())
	assert.Equal(t, `(?is)^/api/[^/]*$`, p.Regexp())
	assert.True(t, p.Predicate()("/api/x"))
}
