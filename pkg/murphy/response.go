package murphy

import (
	"bytes"
	"net/http"
	"slices"
)

// Response is a synthetic response produced by an effect.
type Response struct {
	Code    int
	Body    []byte
	Headers http.Header
}

// Equal reports whether r and o carry the same status, body bytes and headers.
func (r *Response) Equal(o *Response) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Code != o.Code || !bytes.Equal(r.Body, o.Body) {
		return false
	}
	if len(r.Headers) != len(o.Headers) {
		return false
	}
	for name, values := range r.Headers {
		other, ok := o.Headers[name]
		if !ok || !slices.Equal(values, other) {
			return false
		}
	}
	return true
}

// clone returns a copy that shares nothing with r, so callers may mutate the
// result without touching the effect's configuration.
func (r *Response) clone() *Response {
	return &Response{
		Code:    r.Code,
		Body:    bytes.Clone(r.Body),
		Headers: r.Headers.Clone(),
	}
}
