package requestlog

import "time"

// Entry describes one intercepted call.
type Entry struct {
	// ID is the call id also logged as call_id.
	ID string `json:"id"`

	// Timestamp is when the call was intercepted.
	Timestamp time.Time `json:"timestamp"`

	Method string `json:"method"`
	URL    string `json:"url"`
	Path   string `json:"path"`

	// Matched reports whether a rule matched. Rule is its name, which may be
	// empty for unnamed rules.
	Matched bool   `json:"matched"`
	Rule    string `json:"rule,omitempty"`

	// Outcome is passthrough, injected, crashed or cancelled.
	Outcome string `json:"outcome"`

	// Status is the injected or upstream status code; zero when the call failed.
	Status int `json:"status,omitempty"`

	// DurationMs covers injected delays and, for passthrough, the upstream call.
	DurationMs int64 `json:"durationMs"`

	// Error is the failure message for crashed, cancelled or failed calls.
	Error string `json:"error,omitempty"`
}
