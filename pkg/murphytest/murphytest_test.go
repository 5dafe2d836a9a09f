package murphytest

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/murphy/pkg/murphy"
)

func TestUpstream_RecordsRequests(t *testing.T) {
	up := NewUpstream(t)

	req, err := http.NewRequest(http.MethodPost, up.URL()+"/orders?x=1", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set("X-Trace", "abc")

	resp, err := up.Server().Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, UpstreamBody, ReadBody(t, resp))

	up.AssertHits(t, 1)
	last := up.Last()
	last.AssertMethod(t, "post")
	last.AssertPath(t, "/orders")
	last.AssertHeader(t, "X-Trace", "abc")
	last.AssertBody(t, "payload")
	assert.Equal(t, "x=1", last.Query)

	up.Reset()
	assert.Zero(t, up.Hits())
}

func TestUpstream_CustomHandler(t *testing.T) {
	up := NewUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	resp, err := up.Server().Client().Get(up.URL())
	require.NoError(t, err)
	AssertInjected(t, resp, http.StatusTeapot, "")
}

func TestUpstream_Client(t *testing.T) {
	up := NewUpstream(t)
	client := up.Client(murphy.NewScenario(
		murphy.NewRule().Matches(murphy.Path("/blocked")).Causes(murphy.Status(503)).MustBuild(),
	))

	resp, err := client.Get(up.URL() + "/blocked")
	require.NoError(t, err)
	AssertInjected(t, resp, 503, "")
	up.AssertHits(t, 0)

	resp, err = client.Get(up.URL() + "/open")
	require.NoError(t, err)
	AssertInjected(t, resp, 200, UpstreamBody)
	up.AssertHits(t, 1)
}

func TestCtx(t *testing.T) {
	rc := Ctx("", "", "X-A", "1", "X-A", "2", "dangling")

	assert.Equal(t, http.MethodGet, rc.Method)
	assert.Equal(t, "/", rc.Path)
	assert.Equal(t, "https://test.com/", rc.URL)
	assert.Equal(t, []string{"1", "2"}, rc.Headers.Values("X-A"))
	assert.Len(t, rc.Headers, 1)
}
