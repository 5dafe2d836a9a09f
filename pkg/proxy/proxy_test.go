package proxy_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/murphy/pkg/metrics"
	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/murphytest"
	"github.com/getmockd/murphy/pkg/proxy"
	"github.com/getmockd/murphy/pkg/requestlog"
)

func rule(m murphy.Matcher, effects ...murphy.Effect) *murphy.Rule {
	return murphy.NewRule().Matches(m).Causes(effects...).MustBuild()
}

func newProxy(t *testing.T, cfg proxy.Config) (*proxy.Proxy, *httptest.Server) {
	t.Helper()
	p, err := proxy.New(cfg)
	require.NoError(t, err)
	front := httptest.NewServer(p)
	t.Cleanup(front.Close)
	return p, front
}

func get(t *testing.T, u string) *http.Response {
	t.Helper()
	resp, err := http.Get(u)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestNew_InvalidTarget(t *testing.T) {
	for _, target := range []string{"://bad", "ftp://example.com", "/relative"} {
		t.Run(target, func(t *testing.T) {
			_, err := proxy.New(proxy.Config{Target: target})
			assert.Error(t, err)
		})
	}
}

func TestProxy_Passthrough(t *testing.T) {
	up := murphytest.NewUpstream(t)
	_, front := newProxy(t, proxy.Config{Target: up.URL()})

	resp := get(t, front.URL+"/api/users?page=2")
	murphytest.AssertInjected(t, resp, http.StatusOK, murphytest.UpstreamBody)

	up.AssertHits(t, 1)
	last := up.Last()
	last.AssertPath(t, "/api/users")
	assert.Equal(t, "page=2", last.Query)
	assert.NotEmpty(t, last.Headers.Get("X-Forwarded-For"))
}

func TestProxy_InjectedResponse(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(
		rule(murphy.Path("/api/**"), murphy.JSON(http.StatusTeapot, `{"x":1}`)),
	)
	_, front := newProxy(t, proxy.Config{Target: up.URL(), Scenario: scenario})

	resp := get(t, front.URL+"/api/users")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	murphytest.AssertInjected(t, resp, http.StatusTeapot, `{"x":1}`)
	up.AssertHits(t, 0)

	resp = get(t, front.URL+"/other")
	murphytest.AssertInjected(t, resp, http.StatusOK, murphytest.UpstreamBody)
	up.AssertHits(t, 1)
}

func TestProxy_CrashBecomesBadGateway(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(rule(murphy.Always(), murphy.Crash("connection reset by peer")))
	_, front := newProxy(t, proxy.Config{Target: up.URL(), Scenario: scenario})

	resp := get(t, front.URL+"/x")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "induced_failure", body["error"])
	assert.Equal(t, "connection reset by peer", body["message"])
	up.AssertHits(t, 0)
}

func TestProxy_UpstreamErrorBecomesBadGateway(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, front := newProxy(t, proxy.Config{Target: "http://" + addr})

	resp := get(t, front.URL+"/x")
	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "upstream_error", body["error"])
}

func TestProxy_FilterBypassesScenario(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(rule(murphy.Always(), murphy.Status(http.StatusServiceUnavailable)))
	p, front := newProxy(t, proxy.Config{
		Target:   up.URL(),
		Scenario: scenario,
		Filter:   proxy.NewFilter(nil, []string{"/healthz"}),
	})

	murphytest.AssertInjected(t, get(t, front.URL+"/healthz"), http.StatusOK, murphytest.UpstreamBody)
	murphytest.AssertInjected(t, get(t, front.URL+"/api"), http.StatusServiceUnavailable, "")
	up.AssertHits(t, 1)

	p.SetFilter(nil)
	murphytest.AssertInjected(t, get(t, front.URL+"/healthz"), http.StatusServiceUnavailable, "")
}

func TestProxy_SetScenario(t *testing.T) {
	up := murphytest.NewUpstream(t)
	p, front := newProxy(t, proxy.Config{Target: up.URL()})

	murphytest.AssertInjected(t, get(t, front.URL+"/"), http.StatusOK, murphytest.UpstreamBody)

	p.SetScenario("teapot", murphy.NewScenario(rule(murphy.Always(), murphy.Status(http.StatusTeapot))))
	murphytest.AssertInjected(t, get(t, front.URL+"/"), http.StatusTeapot, "")

	name, s := p.Scenario()
	assert.Equal(t, "teapot", name)
	assert.Equal(t, 1, s.Len())
}

func TestProxy_ForwardMode(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(rule(murphy.Path("/blocked"), murphy.Status(http.StatusForbidden)))
	_, front := newProxy(t, proxy.Config{Scenario: scenario})

	proxyURL, err := url.Parse(front.URL)
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}

	resp, err := client.Get(up.URL() + "/open")
	require.NoError(t, err)
	murphytest.AssertInjected(t, resp, http.StatusOK, murphytest.UpstreamBody)

	resp, err = client.Get(up.URL() + "/blocked")
	require.NoError(t, err)
	murphytest.AssertInjected(t, resp, http.StatusForbidden, "")
	up.AssertHits(t, 1)

	// Origin-form requests have nowhere to go without a target.
	resp = get(t, front.URL+"/open")
	murphytest.AssertInjected(t, resp, http.StatusBadRequest, "")
}

func TestProxy_Metrics(t *testing.T) {
	up := murphytest.NewUpstream(t)
	collector := metrics.NewCollector(nil)
	scenario := murphy.NewScenario(
		murphy.NewRule().Named("teapot").Matches(murphy.Path("/tea")).Causes(murphy.Status(http.StatusTeapot)).MustBuild(),
	)
	_, front := newProxy(t, proxy.Config{Target: up.URL(), Scenario: scenario, Metrics: collector})

	murphytest.ReadBody(t, get(t, front.URL+"/tea"))
	murphytest.ReadBody(t, get(t, front.URL+"/coffee"))

	resp := get(t, front.URL+"/__murphy/metrics")
	body := murphytest.ReadBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, metrics.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, body, `murphy_requests_total{outcome="injected"} 1`)
	assert.Contains(t, body, `murphy_requests_total{outcome="passthrough"} 1`)
	assert.Contains(t, body, `murphy_rule_matches_total{rule="teapot"} 1`)
	up.AssertHits(t, 1)
}

func TestAdmin_Status(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(rule(murphy.Path("/a"), murphy.Status(500)))
	_, front := newProxy(t, proxy.Config{
		Target:   up.URL(),
		Name:     "checkout-outage",
		Scenario: scenario,
		Filter:   proxy.NewFilter([]string{"*.internal"}, nil),
	})

	resp := get(t, front.URL+"/__murphy/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st proxy.Status
	decodeJSON(t, resp, &st)

	assert.Equal(t, "checkout-outage", st.Name)
	assert.Equal(t, "reverse", st.Mode)
	assert.Equal(t, up.URL(), st.Target)
	require.Len(t, st.Rules, 1)
	assert.Contains(t, st.Rules[0], "/a")
	assert.Equal(t, []string{"*.internal"}, st.BypassHosts)
	up.AssertHits(t, 0)
}

func TestAdmin_MethodNotAllowed(t *testing.T) {
	_, front := newProxy(t, proxy.Config{})

	resp, err := http.Post(front.URL+"/__murphy/status", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodGet, resp.Header.Get("Allow"))
}

func TestAdmin_UnknownEndpoint(t *testing.T) {
	_, front := newProxy(t, proxy.Config{})
	murphytest.AssertInjected(t, get(t, front.URL+"/__murphy/nope"), http.StatusNotFound, "")
}

func TestAdmin_Disabled(t *testing.T) {
	up := murphytest.NewUpstream(t)
	_, front := newProxy(t, proxy.Config{Target: up.URL(), DisableAdmin: true})

	murphytest.AssertInjected(t, get(t, front.URL+"/__murphy/status"), http.StatusOK, murphytest.UpstreamBody)
	up.Last().AssertPath(t, "/__murphy/status")
}

func put(t *testing.T, u, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, u, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAdmin_PutScenario(t *testing.T) {
	up := murphytest.NewUpstream(t)
	p, front := newProxy(t, proxy.Config{Target: up.URL()})

	doc := `
name: teapots
rules:
  - match: { path: /tea/** }
    effects:
      - status: 418
`
	resp := put(t, front.URL+"/__murphy/scenario", "application/yaml", doc)
	var st proxy.Status
	decodeJSON(t, resp, &st)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "teapots", st.Name)
	assert.Len(t, st.Rules, 1)

	murphytest.AssertInjected(t, get(t, front.URL+"/tea/green"), http.StatusTeapot, "")
	name, _ := p.Scenario()
	assert.Equal(t, "teapots", name)

	jsonDoc := `{"rules":[{"effects":[{"status":503}]}]}`
	resp = put(t, front.URL+"/__murphy/scenario", "application/json", jsonDoc)
	murphytest.ReadBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	murphytest.AssertInjected(t, get(t, front.URL+"/tea/green"), http.StatusServiceUnavailable, "")
}

func TestAdmin_PutScenarioErrors(t *testing.T) {
	up := murphytest.NewUpstream(t)
	_, front := newProxy(t, proxy.Config{Target: up.URL()})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"schema", "rules:\n  - effects:\n      - status: 42\n", "schema_violation"},
		{"yaml", "rules: [", "invalid_scenario"},
		{"empty", "", "invalid_scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := put(t, front.URL+"/__murphy/scenario", "", tt.body)
			var body map[string]string
			decodeJSON(t, resp, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
		})
	}

	// The original scenario is still active.
	murphytest.AssertInjected(t, get(t, front.URL+"/"), http.StatusOK, murphytest.UpstreamBody)
}

func TestAdmin_PutProfile(t *testing.T) {
	up := murphytest.NewUpstream(t)
	_, front := newProxy(t, proxy.Config{Target: up.URL()})

	resp := put(t, front.URL+"/__murphy/scenario?profile=offline", "", "")
	murphytest.ReadBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	murphytest.AssertInjected(t, get(t, front.URL+"/"), http.StatusServiceUnavailable, "")

	resp = put(t, front.URL+"/__murphy/scenario?profile=nope", "", "")
	murphytest.AssertInjected(t, resp, http.StatusNotFound, "")
}

func connect(t *testing.T, front *httptest.Server, host string) (*http.Response, net.Conn) {
	t.Helper()
	conn, err := net.Dial("tcp", strings.TrimPrefix(front.URL, "http://"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = fmt.Fprintf(conn, "CONNECT %s HTTP/1.1\r\nHost: %s\r\n\r\n", host, host)
	require.NoError(t, err)
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	return resp, conn
}

func TestConnect_InjectedFailure(t *testing.T) {
	scenario := murphy.NewScenario(
		rule(murphy.Method(http.MethodConnect), murphy.Crash("tls handshake refused")),
	)
	_, front := newProxy(t, proxy.Config{Scenario: scenario})

	resp, _ := connect(t, front, "example.invalid:443")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestConnect_InjectedResponse(t *testing.T) {
	scenario := murphy.NewScenario(
		rule(murphy.Method(http.MethodConnect), murphy.Status(http.StatusForbidden)),
	)
	_, front := newProxy(t, proxy.Config{Scenario: scenario})

	resp, _ := connect(t, front, "example.invalid:443")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestConnect_Tunnel(t *testing.T) {
	up := murphytest.NewUpstream(t)
	_, front := newProxy(t, proxy.Config{})

	host := strings.TrimPrefix(up.URL(), "http://")
	resp, conn := connect(t, front, host)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Speak plain HTTP through the tunnel.
	_, err := fmt.Fprintf(conn, "GET /through HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", host)
	require.NoError(t, err)
	inner, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	murphytest.AssertInjected(t, inner, http.StatusOK, murphytest.UpstreamBody)
	up.Last().AssertPath(t, "/through")
}

func TestServe_StopsOnCancel(t *testing.T) {
	up := murphytest.NewUpstream(t)
	p, err := proxy.New(proxy.Config{Target: up.URL()})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, ln) }()

	resp := get(t, "http://"+ln.Addr().String()+"/")
	murphytest.AssertInjected(t, resp, http.StatusOK, murphytest.UpstreamBody)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAdmin_Requests(t *testing.T) {
	up := murphytest.NewUpstream(t)
	scenario := murphy.NewScenario(
		murphy.NewRule().Named("teapot").Matches(murphy.Path("/tea")).Causes(murphy.Status(http.StatusTeapot)).MustBuild(),
	)
	p, front := newProxy(t, proxy.Config{Target: up.URL(), Scenario: scenario})

	murphytest.ReadBody(t, get(t, front.URL+"/tea"))
	murphytest.ReadBody(t, get(t, front.URL+"/coffee"))
	murphytest.ReadBody(t, get(t, front.URL+"/tea"))

	var list proxy.RequestList
	decodeJSON(t, get(t, front.URL+"/__murphy/requests"), &list)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Requests, 3)
	assert.Equal(t, "/tea", list.Requests[0].Path)

	decodeJSON(t, get(t, front.URL+"/__murphy/requests?rule=teapot&limit=1"), &list)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, "injected", list.Requests[0].Outcome)
	assert.Equal(t, http.StatusTeapot, list.Requests[0].Status)

	decodeJSON(t, get(t, front.URL+"/__murphy/requests?matched=false"), &list)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, "/coffee", list.Requests[0].Path)

	murphytest.AssertInjected(t, get(t, front.URL+"/__murphy/requests?limit=-1"), http.StatusBadRequest, "")
	murphytest.AssertInjected(t, get(t, front.URL+"/__murphy/requests?matched=maybe"), http.StatusBadRequest, "")

	req, err := http.NewRequest(http.MethodDelete, front.URL+"/__murphy/requests", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, p.Journal().Count())
}

func TestConnect_Journaled(t *testing.T) {
	journal := requestlog.NewMemory(10)
	scenario := murphy.NewScenario(
		murphy.NewRule().Named("no-tls").Matches(murphy.Method(http.MethodConnect)).Causes(murphy.Crash("refused")).MustBuild(),
	)
	_, front := newProxy(t, proxy.Config{Scenario: scenario, Journal: journal})

	resp, _ := connect(t, front, "example.invalid:443")
	resp.Body.Close()

	require.Eventually(t, func() bool { return journal.Count() == 1 }, time.Second, 10*time.Millisecond)
	e := journal.List(nil)[0]
	assert.Equal(t, http.MethodConnect, e.Method)
	assert.Equal(t, "https://example.invalid:443", e.URL)
	assert.Equal(t, "crashed", e.Outcome)
	assert.Equal(t, "no-tls", e.Rule)
	assert.Equal(t, "refused", e.Error)
}
