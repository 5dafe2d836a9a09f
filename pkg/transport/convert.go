package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/getmockd/murphy/pkg/murphy"
)

// FallbackReason is the status reason used for codes net/http has no text for.
const FallbackReason = "Chaos Induced"

// NewRequestContext describes req for rule matching. Headers are cloned so
// effects never see later mutations of the request.
func NewRequestContext(req *http.Request) *murphy.RequestContext {
	rc := &murphy.RequestContext{
		Method:  req.Method,
		Headers: req.Header.Clone(),
	}
	if rc.Method == "" {
		rc.Method = http.MethodGet
	}
	if rc.Headers == nil {
		rc.Headers = http.Header{}
	}
	if req.URL != nil {
		rc.URL = req.URL.String()
		rc.Path = req.URL.EscapedPath()
	}
	if rc.Path == "" {
		rc.Path = "/"
	}
	return rc
}

// ToHTTPResponse turns an injected response into the *http.Response a real
// round trip to req would have produced.
func ToHTTPResponse(req *http.Request, r *murphy.Response) *http.Response {
	reason := http.StatusText(r.Code)
	if reason == "" {
		reason = FallbackReason
	}
	header := r.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Code, reason),
		StatusCode:    r.Code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
