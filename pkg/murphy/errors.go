package murphy

import (
	"errors"
	"net"
)

// ErrConfiguration is wrapped by every error caused by an invalid rule or
// scenario definition.
var ErrConfiguration = errors.New("murphy: invalid configuration")

// ErrInducedFailure matches any *InducedFailure via errors.Is.
var ErrInducedFailure = errors.New("murphy: induced failure")

// DefaultCrashMessage is the message carried by Crash("").
const DefaultCrashMessage = "Murphy induced crash"

// InducedFailure is the error returned by a Crash effect. It stands in for a
// transport-level I/O failure and implements net.Error so HTTP clients treat
// it like one.
type InducedFailure struct {
	Message string
}

var _ net.Error = (*InducedFailure)(nil)

func (e *InducedFailure) Error() string { return e.Message }

// Is makes errors.Is(err, ErrInducedFailure) hold for every InducedFailure.
func (e *InducedFailure) Is(target error) bool { return target == ErrInducedFailure }

// Timeout reports false: a crash is a hard failure, not a deadline.
func (e *InducedFailure) Timeout() bool { return false }

// Temporary reports false.
//
// Deprecated: kept to satisfy net.Error.
func (e *InducedFailure) Temporary() bool { return false }
