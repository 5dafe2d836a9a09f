package proxy

import (
	"net"
	"strings"

	"github.com/getmockd/murphy/internal/glob"
)

// Filter selects requests that bypass the scenario and go straight upstream.
// Host patterns ignore the port; a single '*' in a path pattern stops at '/'.
type Filter struct {
	hosts []*glob.Pattern
	paths []*glob.Pattern
}

// NewFilter compiles bypass patterns. An empty filter bypasses nothing.
func NewFilter(hosts, paths []string) *Filter {
	f := &Filter{}
	for _, h := range hosts {
		f.hosts = append(f.hosts, glob.Compile(h, false))
	}
	for _, p := range paths {
		f.paths = append(f.paths, glob.Compile(p, true))
	}
	return f
}

// Bypass reports whether a request to host and path skips the scenario.
func (f *Filter) Bypass(host, path string) bool {
	if f == nil {
		return false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	for _, p := range f.hosts {
		if p.MatchString(host) {
			return true
		}
	}
	for _, p := range f.paths {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns, for the status endpoint.
func (f *Filter) Patterns() (hosts, paths []string) {
	if f == nil {
		return nil, nil
	}
	for _, p := range f.hosts {
		hosts = append(hosts, p.String())
	}
	for _, p := range f.paths {
		paths = append(paths, p.String())
	}
	return hosts, paths
}
