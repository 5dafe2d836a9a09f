package config

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/murphytest"
)

func TestExpr(t *testing.T) {
	tests := []struct {
		name   string
		source string
		rc     *murphy.RequestContext
		want   bool
	}{
		{"method and path", `method == "POST" && hasPrefix(path, "/api")`, murphytest.Ctx("POST", "/api/x"), true},
		{"method mismatch", `method == "POST"`, murphytest.Ctx("GET", "/"), false},
		{"header lower-cased", `headers["x-tenant"] == "acme"`, murphytest.Ctx("GET", "/", "X-Tenant", "acme"), true},
		{"multi-value header", `headers["x-a"] == "1, 2"`, murphytest.Ctx("GET", "/", "X-A", "1", "X-A", "2"), true},
		{"missing header", `headers["x-none"] == ""`, murphytest.Ctx("GET", "/"), true},
		{"url", `url contains "test.com"`, murphytest.Ctx("GET", "/"), true},
		{"regex", `path matches "^/v[0-9]+/"`, murphytest.Ctx("GET", "/v2/users"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Expr(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Matches(tt.rc))
		})
	}
}

func TestExpr_CaseVariantHeadersMergeInOrder(t *testing.T) {
	m, err := Expr(`headers["x-a"] == "1, 2, 3"`)
	require.NoError(t, err)

	rc := &murphy.RequestContext{
		URL:     "https://test.com/",
		Path:    "/",
		Method:  "GET",
		Headers: http.Header{"x-a": {"3"}, "X-A": {"1", "2"}},
	}
	for range 50 {
		require.True(t, m.Matches(rc))
	}
}

func TestExpr_RuntimeErrorIsNoMatch(t *testing.T) {
	m, err := Expr(`int(headers["x-count"]) > 3`)
	require.NoError(t, err)

	assert.False(t, m.Matches(murphytest.Ctx("GET", "/", "X-Count", "not-a-number")))
	assert.True(t, m.Matches(murphytest.Ctx("GET", "/", "X-Count", "5")))
}

func TestExpr_CompileErrors(t *testing.T) {
	for _, src := range []string{"path +", `path`, `unknownVar == 1`} {
		_, err := Expr(src)
		assert.ErrorIs(t, err, murphy.ErrConfiguration, src)
	}
}

func TestExpr_String(t *testing.T) {
	m, err := Expr(`method == "GET"`)
	require.NoError(t, err)
	assert.Equal(t, `Expr 'method == "GET"'`, m.String())
}
