package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/getmockd/murphy/internal/id"
	"github.com/getmockd/murphy/pkg/httputil"
	"github.com/getmockd/murphy/pkg/metrics"
	"github.com/getmockd/murphy/pkg/murphy"
	"github.com/getmockd/murphy/pkg/requestlog"
)

// dialTimeout bounds the upstream dial for CONNECT tunnels.
const dialTimeout = 30 * time.Second

var errHijackUnsupported = errors.New("server does not support hijacking")

// handleConnect tunnels CONNECT requests. TLS traffic is opaque, so the
// scenario is applied once to the tunnel itself: a matching rule can delay
// it, refuse it with an injected status, or fail it.
func (p *Proxy) handleConnect(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if host == "" {
		httputil.WriteError(w, http.StatusBadRequest, "bad_request", "CONNECT without host")
		return
	}

	t, f := p.current()
	s := t.Scenario()
	rc := connectContext(r, host)
	entry := &requestlog.Entry{
		ID:        id.Short(),
		Timestamp: time.Now(),
		Method:    rc.Method,
		URL:       rc.URL,
		Path:      rc.Path,
	}
	defer func() {
		entry.DurationMs = time.Since(entry.Timestamp).Milliseconds()
		p.metrics.ObserveOutcome(entry.Outcome)
		p.journal.Log(entry)
	}()

	rule := s.FindRule(rc)
	if rule != nil && !f.Bypass(host, rc.Path) {
		entry.Matched, entry.Rule = true, rule.Name()
		log := p.logger.With("call_id", entry.ID, "rule", rule.Name(), "host", host)
		resp, err := murphy.Execute(r.Context(), rule, rc)
		p.metrics.ObserveMatch(rule.Name(), time.Since(entry.Timestamp))
		switch {
		case err != nil && r.Context().Err() != nil:
			entry.Outcome, entry.Error = metrics.OutcomeCancelled, err.Error()
			return
		case err != nil:
			entry.Outcome, entry.Error = metrics.OutcomeCrashed, err.Error()
			log.Info("injected tunnel failure", "error", err)
			httputil.WriteBadGateway(w, "induced_failure", err.Error())
			return
		case resp != nil:
			entry.Outcome, entry.Status = metrics.OutcomeInjected, resp.Code
			log.Info("injected tunnel response", "status", resp.Code)
			for k, vs := range resp.Headers {
				w.Header()[k] = append([]string(nil), vs...)
			}
			w.WriteHeader(resp.Code)
			_, _ = w.Write(resp.Body)
			return
		}
	}
	entry.Outcome = metrics.OutcomePassthrough
	if err := p.tunnel(w, r, host); err != nil {
		entry.Error = err.Error()
	} else {
		entry.Status = http.StatusOK
	}
}

func connectContext(r *http.Request, host string) *murphy.RequestContext {
	return &murphy.RequestContext{
		Method:  http.MethodConnect,
		URL:     "https://" + host,
		Path:    "/",
		Headers: r.Header.Clone(),
	}
}

// tunnel connects the client to host and copies bytes both ways until either
// side closes. The error reports a failure to establish the tunnel.
func (p *Proxy) tunnel(w http.ResponseWriter, r *http.Request, host string) error {
	dialer := &net.Dialer{Timeout: dialTimeout}
	targetConn, err := dialer.DialContext(r.Context(), "tcp", host)
	if err != nil {
		p.logger.Warn("tunnel dial failed", "host", host, "error", err)
		httputil.WriteBadGateway(w, "upstream_error", "error connecting to target")
		return err
	}

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		_ = targetConn.Close()
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error",
			"server does not support hijacking")
		return errHijackUnsupported
	}
	clientConn, _, err := hijacker.Hijack()
	if err != nil {
		p.logger.Warn("hijack failed", "error", err)
		_ = targetConn.Close()
		return err
	}

	if _, err := io.WriteString(clientConn, "HTTP/1.1 200 Connection Established\r\n\r\n"); err != nil {
		_ = clientConn.Close()
		_ = targetConn.Close()
		return err
	}
	p.logger.Debug("tunnel established", "host", host)

	var g errgroup.Group
	g.Go(func() error {
		defer targetConn.Close()
		_, err := io.Copy(targetConn, clientConn)
		return err
	})
	g.Go(func() error {
		defer clientConn.Close()
		_, err := io.Copy(clientConn, targetConn)
		return err
	})
	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, context.Canceled) {
		p.logger.Debug("tunnel closed", "host", host, "error", err)
	}
	return nil
}
