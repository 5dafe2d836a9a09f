package murphy

import (
	"bytes"
	"context"
	"net/http"
)

// Effect is one step of a rule. Apply returns a non-nil Response to
// short-circuit the call, a nil Response to continue with the next effect, or
// an error to fail the call.
type Effect interface {
	Apply(ctx context.Context, rc *RequestContext) (*Response, error)
	// Probability reports the chance that the effect fires, in [0, 1].
	Probability() float64
}

// Respond always answers with the given status, body and headers.
func Respond(code int, body []byte, headers http.Header) Effect {
	return &respondEffect{resp: Response{Code: code, Body: bytes.Clone(body), Headers: headers.Clone()}}
}

// OK answers 200 with an empty body and no headers.
func OK() Effect {
	return Respond(http.StatusOK, nil, nil)
}

// Status answers with code, an empty body and no headers.
func Status(code int) Effect {
	return Respond(code, nil, nil)
}

// JSON answers with code and body as application/json.
func JSON(code int, body string) Effect {
	return Respond(code, []byte(body), http.Header{"Content-Type": {"application/json"}})
}

// JSONBody answers 200 with body as application/json.
func JSONBody(body string) Effect {
	return JSON(http.StatusOK, body)
}

// Crash fails the call with an *InducedFailure carrying message, or
// DefaultCrashMessage when message is empty.
func Crash(message string) Effect {
	if message == "" {
		message = DefaultCrashMessage
	}
	return &crashEffect{err: &InducedFailure{Message: message}}
}

// CrashWith fails the call with err, returned verbatim. Prefer errors that
// look like network failures (net.Error, *net.OpError, io.ErrUnexpectedEOF).
func CrashWith(err error) Effect {
	if err == nil {
		return Crash("")
	}
	return &crashEffect{err: err}
}

type respondEffect struct {
	resp Response
}

func (e *respondEffect) Apply(context.Context, *RequestContext) (*Response, error) {
	return e.resp.clone(), nil
}

func (e *respondEffect) Probability() float64 { return 1 }

func (e *respondEffect) String() string {
	return "Respond(" + http.StatusText(e.resp.Code) + ")"
}

type crashEffect struct {
	err error
}

func (e *crashEffect) Apply(context.Context, *RequestContext) (*Response, error) {
	return nil, e.err
}

func (e *crashEffect) Probability() float64 { return 1 }

func (e *crashEffect) String() string { return "Crash(" + e.err.Error() + ")" }
