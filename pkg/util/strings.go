package util

import (
	"net/http"
	"slices"
)

// MaxLogBodySize is the default maximum body size for logging (1KB).
const MaxLogBodySize = 1024

// TruncateBody truncates data to maxSize bytes, appending "...(truncated)" if truncated.
// If maxSize <= 0, uses MaxLogBodySize.
func TruncateBody(data []byte, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(data) > maxSize {
		return string(data[:maxSize]) + "...(truncated)"
	}
	return string(data)
}

// HeaderNames returns the canonical names present in h, sorted.
func HeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, http.CanonicalHeaderKey(name))
	}
	slices.Sort(names)
	return slices.Compact(names)
}
