package journal

import "errors"

var (
	// ErrMissingArgument indicates a required tool argument was absent
	// or empty.
	ErrMissingArgument = errors.New("journal: missing required argument")

	// ErrInvalidArgument indicates a tool argument failed validation.
	ErrInvalidArgument = errors.New("journal: invalid argument")
)
