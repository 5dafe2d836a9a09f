package cli

import "errors"

// Common CLI errors
var (
	ErrValidationFailed = errors.New("one or more scenario files are invalid")
	ErrNoScenario       = errors.New("no scenario given - use -f FILE or --profile NAME")
	ErrTooManySources   = errors.New("-f and --profile are mutually exclusive")
)
