// Package proxy provides an HTTP proxy that injects faults into the traffic it
// forwards.
//
// In reverse mode every request is sent to a fixed target URL; in forward
// mode clients address the proxy with absolute-form URLs (HTTP_PROXY) and
// CONNECT tunnels. Outbound calls go through a murphy transport, so the
// active scenario decides which requests are delayed, answered with an
// injected response, or failed. Requests matching the bypass Filter skip the
// scenario entirely.
//
// The proxy reserves the /__murphy/ path prefix:
//
//	GET /__murphy/status    active scenario, mode and uptime as JSON
//	GET /__murphy/metrics   Prometheus text exposition
//	GET /__murphy/requests  journal of proxied calls, newest first
//	DELETE /__murphy/requests
//	PUT /__murphy/scenario  replace the scenario (YAML or JSON body, or ?profile=name)
package proxy
