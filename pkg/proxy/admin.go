package proxy

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/murphy/pkg/config"
	"github.com/getmockd/murphy/pkg/httputil"
	"github.com/getmockd/murphy/pkg/requestlog"
)

// maxScenarioSize caps PUT /__murphy/scenario bodies.
const maxScenarioSize = 1 << 20

// Status is the body of GET /__murphy/status.
type Status struct {
	Name          string   `json:"name,omitempty"`
	Mode          string   `json:"mode"`
	Target        string   `json:"target,omitempty"`
	Rules         []string `json:"rules"`
	BypassHosts   []string `json:"bypassHosts,omitempty"`
	BypassPaths   []string `json:"bypassPaths,omitempty"`
	StartedAt     string   `json:"startedAt"`
	UptimeSeconds int64    `json:"uptimeSeconds"`
}

func (p *Proxy) serveAdmin(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimPrefix(r.URL.Path, AdminPrefix) {
	case "status":
		if r.Method != http.MethodGet {
			httputil.WriteMethodNotAllowed(w, http.MethodGet)
			return
		}
		httputil.WriteOK(w, p.Status())
	case "metrics":
		if r.Method != http.MethodGet {
			httputil.WriteMethodNotAllowed(w, http.MethodGet)
			return
		}
		p.metrics.Registry().Handler().ServeHTTP(w, r)
	case "requests":
		switch r.Method {
		case http.MethodGet:
			p.handleListRequests(w, r)
		case http.MethodDelete:
			p.journal.Clear()
			w.WriteHeader(http.StatusNoContent)
		default:
			httputil.WriteMethodNotAllowed(w, http.MethodGet, http.MethodDelete)
		}
	case "scenario":
		if r.Method != http.MethodPut {
			httputil.WriteMethodNotAllowed(w, http.MethodPut)
			return
		}
		p.handlePutScenario(w, r)
	default:
		httputil.WriteError(w, http.StatusNotFound, "not_found", "unknown admin endpoint")
	}
}

// Status reports the active configuration.
func (p *Proxy) Status() Status {
	name, s := p.Scenario()
	st := Status{
		Name:          name,
		Mode:          "forward",
		Rules:         []string{},
		StartedAt:     p.started.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(p.started).Seconds()),
	}
	if p.target != nil {
		st.Mode = "reverse"
		st.Target = p.target.String()
	}
	for _, rule := range s.Rules() {
		st.Rules = append(st.Rules, rule.String())
	}
	st.BypassHosts, st.BypassPaths = p.Filter().Patterns()
	return st
}

// handlePutScenario replaces the scenario with a document from the body, or
// with a built-in profile when ?profile= is given.
func (p *Proxy) handlePutScenario(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("profile"); name != "" {
		s, err := config.ProfileScenario(name, nil)
		if err != nil {
			httputil.WriteError(w, http.StatusNotFound, "unknown_profile", err.Error())
			return
		}
		p.SetScenario(name, s)
		httputil.WriteOK(w, p.Status())
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxScenarioSize+1))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "read_error", err.Error())
		return
	}
	if len(data) > maxScenarioSize {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "scenario exceeds 1MiB")
		return
	}

	doc, err := config.Parse(data, formatForContentType(r.Header.Get("Content-Type")))
	if err != nil {
		writeConfigError(w, err)
		return
	}
	s, err := config.Build(doc)
	if err != nil {
		writeConfigError(w, err)
		return
	}
	p.SetScenario(doc.Name, s)
	httputil.WriteOK(w, p.Status())
}

// RequestList is the body of GET /__murphy/requests.
type RequestList struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}

// handleListRequests serves the journal newest first. Query parameters:
// outcome, rule, method, path (prefix), matched (bool), limit, offset.
func (p *Proxy) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &requestlog.Filter{
		Outcome: q.Get("outcome"),
		Rule:    q.Get("rule"),
		Method:  q.Get("method"),
		Path:    q.Get("path"),
	}
	if v := q.Get("matched"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "bad_request", "matched must be a boolean")
			return
		}
		filter.Matched = &b
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.WriteError(w, http.StatusBadRequest, "bad_request", name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	entries := p.journal.List(filter)
	httputil.WriteOK(w, RequestList{Requests: entries, Count: len(entries), Total: p.journal.Count()})
}

func formatForContentType(ct string) config.Format {
	mt, _, _ := mime.ParseMediaType(ct)
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return config.FormatJSON
	case strings.Contains(mt, "yaml"):
		return config.FormatYAML
	default:
		return config.FormatAuto
	}
}

func writeConfigError(w http.ResponseWriter, err error) {
	code := "invalid_scenario"
	var schemaErr *config.SchemaError
	if errors.As(err, &schemaErr) {
		code = "schema_violation"
	}
	httputil.WriteError(w, http.StatusBadRequest, code, err.Error())
}
