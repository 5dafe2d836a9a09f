package murphy

import "net/http"

// RequestContext describes one intercepted outbound call. Adapters create a
// fresh value per call; the engine only reads it.
type RequestContext struct {
	// URL is the full absolute request URL.
	URL string
	// Path is the path component of URL, as sent on the wire.
	Path string
	// Method is the HTTP verb. Comparisons ignore case.
	Method string
	// Headers holds the request headers. Names may arrive in any case.
	Headers http.Header
}
