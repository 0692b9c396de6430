package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/journalops/guard"
	"github.com/jonwraymond/journalops/observe"
	"github.com/jonwraymond/journalops/session"
	"github.com/jonwraymond/journalops/tool"
	"github.com/jonwraymond/journalops/validate"
)

func userPayload(s *session.Session) map[string]any {
	return map[string]any{
		"id":    s.UserID,
		"email": s.Email,
		"name":  s.Name,
		"roles": s.Roles,
	}
}

func sessionPayload(s *session.Session) map[string]any {
	return map[string]any{
		"session_token": s.Token,
		"expires_at":    s.ExpiresAt.UTC().Format(time.RFC3339),
		"user":          userPayload(s),
	}
}

func (s *Service) authenticateUser(ctx context.Context, args tool.Args) (any, error) {
	email, err := requiredInput(args, "email")
	if err != nil {
		return nil, err
	}
	password := args.String("password")
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingArgument)
	}

	sess, err := s.sessions.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn(ctx, "authentication rejected", observe.Field{Key: "email", Value: email})
		return nil, err
	}

	s.logger.Info(ctx, "user authenticated", observe.Field{Key: "email", Value: email})
	out := sessionPayload(sess)
	out["success"] = true
	return out, nil
}

func (s *Service) createUserAccount(ctx context.Context, args tool.Args) (any, error) {
	email, err := requiredInput(args, "email")
	if err != nil {
		return nil, err
	}
	password := args.String("password")
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingArgument)
	}

	sess, err := s.sessions.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", observe.Field{Key: "email", Value: email})
	out := sessionPayload(sess)
	out["success"] = true
	return out, nil
}

func (s *Service) validateToken(ctx context.Context, args tool.Args) (any, error) {
	token := args.String(guard.TokenArg)
	if err := validate.AuthToken(token); err != nil {
		return map[string]any{"valid": false}, nil
	}
	sess := s.sessions.ValidateToken(ctx, token)
	if sess == nil {
		return map[string]any{"valid": false}, nil
	}
	return map[string]any{
		"valid":      true,
		"email":      sess.Email,
		"roles":      sess.Roles,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) getCurrentUser(ctx context.Context, args tool.Args) (any, error) {
	return userPayload(guard.FromArgs(args)), nil
}

func (s *Service) logoutUser(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	removed := s.sessions.Logout(ctx, sess.Token)
	s.logger.Info(ctx, "user logged out", observe.Field{Key: "email", Value: sess.Email})
	return map[string]any{
		"success": removed,
		"message": "Logged out",
	}, nil
}

func (s *Service) refreshSession(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	refreshed := s.sessions.Refresh(ctx, sess.Token)
	if refreshed == nil {
		// Revoked between the guard's check and here.
		return nil, guard.ErrInvalidToken
	}
	out := sessionPayload(refreshed)
	out["success"] = true
	return out, nil
}

func (s *Service) checkPermissions(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	required := args.Strings("required_roles")
	return map[string]any{
		"has_permission": session.CheckRole(sess, required),
		"user_roles":     sess.Roles,
		"required_roles": required,
	}, nil
}

func (s *Service) getSessionInfo(ctx context.Context, args tool.Args) (any, error) {
	sess := guard.FromArgs(args)
	now := time.Now()
	return map[string]any{
		"user":              userPayload(sess),
		"expires_at":        sess.ExpiresAt.UTC().Format(time.RFC3339),
		"remaining_seconds": int64(sess.Remaining(now).Seconds()),
		"active_sessions":   s.sessions.CountLiveSessions(ctx),
	}, nil
}

// requiredInput reads and sanitizes a required string argument.
func requiredInput(args tool.Args, key string) (string, error) {
	raw := args.String(key)
	if raw == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	clean, err := validate.Input(raw, validate.DefaultMaxInputLen)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidArgument, key, err)
	}
	return clean, nil
}
