package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Authenticate when the backend
	// rejects the email/password pair or the follow-up profile fetch
	// fails. Callers get a single failure class regardless of which step
	// broke, so responses cannot be used to probe for registered emails.
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrAccountExists is returned by Register when the backend refuses
	// to create an account for an email it already knows.
	ErrAccountExists = errors.New("session: account already exists")
)
