package guard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthRequired means the call carried no token at all.
	ErrAuthRequired = errors.New("guard: authentication required")

	// ErrInvalidToken means a token was presented but no live session
	// stands behind it: expired, revoked, logged out, or never issued.
	ErrInvalidToken = errors.New("guard: invalid or expired token")

	// ErrForbidden means the caller is authenticated but lacks every
	// required role. PermissionError carries the specifics.
	ErrForbidden = errors.New("guard: insufficient permissions")
)

// PermissionError reports a role check failure with enough detail for the
// client to explain what is missing. It matches ErrForbidden under
// errors.Is.
type PermissionError struct {
	// Required lists the roles that would have admitted the call.
	Required []string

	// Actual lists the roles the caller's session holds.
	Actual []string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("guard: insufficient permissions: requires one of [%s], have [%s]",
		strings.Join(e.Required, ", "), strings.Join(e.Actual, ", "))
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}
