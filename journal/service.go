package journal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jonwraymond/journalops/backend"
	"github.com/jonwraymond/journalops/config"
	"github.com/jonwraymond/journalops/guard"
	"github.com/jonwraymond/journalops/observe"
	"github.com/jonwraymond/journalops/ratelimit"
	"github.com/jonwraymond/journalops/session"
	"github.com/jonwraymond/journalops/tool"
	"github.com/jonwraymond/journalops/validate"
)

// Backend is the document backend surface the tools need: the auth
// operations plus the generic call used by pass-through tools.
// *backend.Client satisfies it.
type Backend interface {
	backend.AuthBackend
	Call(ctx context.Context, kind backend.CallKind, token, fn string, args map[string]any) (json.RawMessage, error)
}

// Config assembles a Service. Backend, Sessions, and Security are
// required; Limiter, Logger, and Telemetry are optional.
type Config struct {
	Backend  Backend
	Sessions *session.Manager
	Security *config.Security

	// Limiter guards the rate-limited tools. Nil disables rate limiting.
	Limiter *ratelimit.Limiter

	// Logger receives handler-level log lines. Nil discards them.
	Logger observe.Logger

	// Telemetry instruments every registered tool. Nil disables it.
	Telemetry *observe.Middleware
}

// Service owns the tool handlers and their registration.
type Service struct {
	backend   Backend
	sessions  *session.Manager
	security  *config.Security
	limiter   *ratelimit.Limiter
	logger    observe.Logger
	telemetry *observe.Middleware
}

// NewService builds a Service from the configuration.
func NewService(cfg Config) (*Service, error) {
	if cfg.Backend == nil || cfg.Sessions == nil || cfg.Security == nil {
		return nil, errors.New("journal: backend, sessions, and security are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Service{
		backend:   cfg.Backend,
		sessions:  cfg.Sessions,
		security:  cfg.Security,
		limiter:   cfg.Limiter,
		logger:    logger,
		telemetry: cfg.Telemetry,
	}, nil
}

// RegisterAll registers every tool on the registry with its middleware:
// telemetry outermost, then rate limiting, then the role guard, so
// admission is decided before any token is validated.
func (s *Service) RegisterAll(reg *tool.Registry) error {
	for _, t := range s.tools() {
		var mws []tool.Middleware
		if s.telemetry != nil {
			mws = append(mws, s.telemetry.Instrument(t.spec.Name))
		}
		if t.spec.RateLimited && s.limiter != nil {
			mws = append(mws, s.limiter.Wrap(clientKey))
		}
		if t.guard != nil {
			mws = append(mws, t.guard)
		}
		if err := reg.Register(t.spec, t.handler, mws...); err != nil {
			return err
		}
	}
	return nil
}

type toolDef struct {
	spec    tool.Spec
	guard   tool.Middleware
	handler tool.Handler
}

func (s *Service) tools() []toolDef {
	anyRole := guard.RequireSession(s.sessions)
	author := guard.RequireAuthor(s.sessions)
	reviewer := guard.RequireReviewer(s.sessions)
	editor := guard.RequireEditor(s.sessions)
	admin := guard.RequireAdmin(s.sessions)

	return []toolDef{
		{
			spec: tool.Spec{
				Name:        "authenticate_user",
				Description: "Sign in with email and password, returning a session token.",
				Public:      true,
				RateLimited: true,
			},
			handler: s.authenticateUser,
		},
		{
			spec: tool.Spec{
				Name:        "create_user_account",
				Description: "Register a new author account and sign it in.",
				Public:      true,
				RateLimited: true,
			},
			handler: s.createUserAccount,
		},
		{
			spec: tool.Spec{
				Name:        "validate_token",
				Description: "Check whether a session token is currently valid.",
				Public:      true,
			},
			handler: s.validateToken,
		},
		{
			spec: tool.Spec{
				Name:        "get_current_user",
				Description: "Return the signed-in user's profile.",
				Roles:       []string{session.RoleAny},
			},
			guard:   anyRole,
			handler: s.getCurrentUser,
		},
		{
			spec: tool.Spec{
				Name:        "logout_user",
				Description: "End the current session.",
				Roles:       []string{session.RoleAny},
			},
			guard:   anyRole,
			handler: s.logoutUser,
		},
		{
			spec: tool.Spec{
				Name:        "refresh_session",
				Description: "Re-validate the session and extend its lifetime.",
				Roles:       []string{session.RoleAny},
			},
			guard:   anyRole,
			handler: s.refreshSession,
		},
		{
			spec: tool.Spec{
				Name:        "check_permissions",
				Description: "Report whether the session satisfies a role requirement.",
				Roles:       []string{session.RoleAny},
			},
			guard:   anyRole,
			handler: s.checkPermissions,
		},
		{
			spec: tool.Spec{
				Name:        "get_session_info",
				Description: "Return details about the current session.",
				Roles:       []string{session.RoleAny},
			},
			guard:   anyRole,
			handler: s.getSessionInfo,
		},
		{
			spec: tool.Spec{
				Name:        "submit_manuscript",
				Description: "Submit a manuscript PDF for review.",
				Roles:       []string{session.RoleAuthor, session.RoleEditor, session.RoleReviewer},
				RateLimited: true,
			},
			guard:   author,
			handler: s.submitManuscript,
		},
		{
			spec: tool.Spec{
				Name:        "get_my_manuscripts",
				Description: "List the caller's submitted manuscripts.",
				Roles:       []string{session.RoleAuthor, session.RoleEditor, session.RoleReviewer},
			},
			guard:   author,
			handler: s.getMyManuscripts,
		},
		{
			spec: tool.Spec{
				Name:        "check_manuscript_status",
				Description: "Return the review status of one manuscript.",
				Roles:       []string{session.RoleAuthor, session.RoleEditor, session.RoleReviewer},
			},
			guard:   author,
			handler: s.checkManuscriptStatus,
		},
		{
			spec: tool.Spec{
				Name:        "get_assigned_reviews",
				Description: "List manuscripts assigned to the caller for review.",
				Roles:       []string{session.RoleReviewer, session.RoleEditor},
			},
			guard:   reviewer,
			handler: s.getAssignedReviews,
		},
		{
			spec: tool.Spec{
				Name:        "submit_review",
				Description: "Submit a review recommendation for a manuscript.",
				Roles:       []string{session.RoleReviewer, session.RoleEditor},
			},
			guard:   reviewer,
			handler: s.submitReview,
		},
		{
			spec: tool.Spec{
				Name:        "get_review_guidelines",
				Description: "Return the journal's review guidelines.",
				Public:      true,
			},
			handler: s.getReviewGuidelines,
		},
		{
			spec: tool.Spec{
				Name:        "assign_reviewer",
				Description: "Assign a reviewer to a manuscript.",
				Roles:       []string{session.RoleEditor},
			},
			guard:   editor,
			handler: s.assignReviewer,
		},
		{
			spec: tool.Spec{
				Name:        "make_editorial_decision",
				Description: "Record an accept, reject, or revise decision.",
				Roles:       []string{session.RoleEditor},
			},
			guard:   editor,
			handler: s.makeEditorialDecision,
		},
		{
			spec: tool.Spec{
				Name:        "get_system_statistics",
				Description: "Return server-wide usage statistics.",
				Roles:       []string{session.RoleAdmin},
			},
			guard:   admin,
			handler: s.getSystemStatistics,
		},
	}
}

// clientKey derives the rate-limit bucket for a call: an explicit
// client_id argument wins, then the transport headers, then the shared
// default bucket.
func clientKey(_ context.Context, args tool.Args) string {
	if id := args.String("client_id"); id != "" {
		return id
	}
	if headers, ok := args["headers"].(map[string]string); ok {
		return validate.ClientIdentifier(headers)
	}
	return ""
}
