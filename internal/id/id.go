// Package id generates identifiers for intercepted calls and proxy sessions.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// Short returns a 12-character hex id, enough to tell calls apart in logs.
func Short() string {
	u := uuid.New()
	return strings.ReplaceAll(u.String(), "-", "")[:12]
}

// Valid reports whether s is a well-formed UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
