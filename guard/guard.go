package guard

import (
	"context"

	"github.com/jonwraymond/journalops/session"
	"github.com/jonwraymond/journalops/tool"
)

// Argument keys the guard reads and writes on tool calls.
const (
	// TokenArg is the argument clients supply their bearer token under.
	TokenArg = "auth_token"

	// SessionArg is the argument the guard injects the validated
	// *session.Session under before invoking the handler.
	SessionArg = "session"
)

// TokenValidator resolves a bearer token to a live session, or nil.
// *session.Manager satisfies it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) *session.Session
}

// RequireRoles returns middleware admitting only callers whose session
// holds at least one of the required roles. Use session.RoleAny to admit
// any authenticated caller.
//
// A call with no auth_token argument fails with ErrAuthRequired before
// the validator is consulted, so unauthenticated probes cost nothing. The
// handler's args are cloned before the session is injected; the caller's
// map is never mutated.
func RequireRoles(v TokenValidator, roles ...string) tool.Middleware {
	required := make([]string, len(roles))
	copy(required, roles)

	return func(next tool.Handler) tool.Handler {
		return func(ctx context.Context, args tool.Args) (any, error) {
			token := args.String(TokenArg)
			if token == "" {
				return nil, ErrAuthRequired
			}
			s := v.ValidateToken(ctx, token)
			if s == nil {
				return nil, ErrInvalidToken
			}
			if !session.CheckRole(s, required) {
				return nil, &PermissionError{Required: required, Actual: s.Roles}
			}

			enriched := args.Clone()
			enriched[SessionArg] = s
			return next(WithSession(ctx, s), enriched)
		}
	}
}

// RequireSession admits any authenticated caller regardless of roles.
func RequireSession(v TokenValidator) tool.Middleware {
	return RequireRoles(v, session.RoleAny)
}

// RequireAuthor admits sessions that can act as an author. Editors and
// reviewers inherit the ability.
func RequireAuthor(v TokenValidator) tool.Middleware {
	return RequireRoles(v, session.RoleAuthor, session.RoleEditor, session.RoleReviewer)
}

// RequireReviewer admits reviewers and editors.
func RequireReviewer(v TokenValidator) tool.Middleware {
	return RequireRoles(v, session.RoleReviewer, session.RoleEditor)
}

// RequireEditor admits editors only.
func RequireEditor(v TokenValidator) tool.Middleware {
	return RequireRoles(v, session.RoleEditor)
}

// RequireAdmin admits admins only.
func RequireAdmin(v TokenValidator) tool.Middleware {
	return RequireRoles(v, session.RoleAdmin)
}

// FromArgs returns the session the guard injected into the args, or nil
// when the handler runs unguarded.
func FromArgs(args tool.Args) *session.Session {
	s, _ := args[SessionArg].(*session.Session)
	return s
}
