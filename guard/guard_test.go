package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/journalops/session"
	"github.com/jonwraymond/journalops/tool"
)

// stubValidator resolves tokens from a fixed map and counts lookups.
type stubValidator struct {
	sessions map[string]*session.Session
	calls    int
}

func (v *stubValidator) ValidateToken(_ context.Context, token string) *session.Session {
	v.calls++
	return v.sessions[token]
}

func validatorWith(roles ...string) *stubValidator {
	return &stubValidator{sessions: map[string]*session.Session{
		"tok-good": {
			UserID:    "user_1",
			Email:     "ada@example.org",
			Name:      "Ada",
			Roles:     roles,
			Token:     "tok-good",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
}

func echoHandler(called *bool, gotArgs *tool.Args) tool.Handler {
	return func(ctx context.Context, args tool.Args) (any, error) {
		*called = true
		if gotArgs != nil {
			*gotArgs = args
		}
		return "ok", nil
	}
}

func TestRequireRolesMissingToken(t *testing.T) {
	v := validatorWith(session.RoleAuthor)
	var called bool
	h := RequireRoles(v, session.RoleAuthor)(echoHandler(&called, nil))

	for _, args := range []tool.Args{nil, {}, {"auth_token": ""}} {
		_, err := h(context.Background(), args)
		if !errors.Is(err, ErrAuthRequired) {
			t.Errorf("args %v: err = %v, want ErrAuthRequired", args, err)
		}
	}
	if called {
		t.Error("handler ran without a token")
	}
	if v.calls != 0 {
		t.Errorf("validator saw %d calls for token-less requests, want 0", v.calls)
	}
}

func TestRequireRolesInvalidToken(t *testing.T) {
	v := validatorWith(session.RoleAuthor)
	var called bool
	h := RequireRoles(v, session.RoleAuthor)(echoHandler(&called, nil))

	_, err := h(context.Background(), tool.Args{"auth_token": "tok-bogus"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
	if called {
		t.Error("handler ran with an invalid token")
	}
}

func TestRequireRolesForbidden(t *testing.T) {
	v := validatorWith(session.RoleAuthor)
	var called bool
	h := RequireRoles(v, session.RoleEditor, session.RoleAdmin)(echoHandler(&called, nil))

	_, err := h(context.Background(), tool.Args{"auth_token": "tok-good"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %T, want *PermissionError", err)
	}
	if len(perr.Required) != 2 || perr.Required[0] != session.RoleEditor {
		t.Errorf("Required = %v", perr.Required)
	}
	if len(perr.Actual) != 1 || perr.Actual[0] != session.RoleAuthor {
		t.Errorf("Actual = %v", perr.Actual)
	}
	if called {
		t.Error("handler ran despite missing role")
	}
}

func TestRequireRolesAdmits(t *testing.T) {
	v := validatorWith(session.RoleAuthor)
	var called bool
	var gotArgs tool.Args
	h := RequireRoles(v, session.RoleAuthor)(func(ctx context.Context, args tool.Args) (any, error) {
		called = true
		gotArgs = args
		if SessionFromContext(ctx) == nil {
			t.Error("context carries no session")
		}
		return "ok", nil
	})

	callerArgs := tool.Args{"auth_token": "tok-good", "title": "On Sliding Windows"}
	out, err := h(context.Background(), callerArgs)
	if err != nil || out != "ok" {
		t.Fatalf("handler result = %v, %v", out, err)
	}
	if !called {
		t.Fatal("handler never ran")
	}

	s := FromArgs(gotArgs)
	if s == nil || s.Email != "ada@example.org" {
		t.Errorf("injected session = %+v", s)
	}
	if gotArgs.String("title") != "On Sliding Windows" {
		t.Error("original arguments were not passed through")
	}
	if _, leaked := callerArgs[SessionArg]; leaked {
		t.Error("guard mutated the caller's argument map")
	}
}

func TestRequireSessionAdmitsAnyRole(t *testing.T) {
	v := validatorWith("archivist") // role the presets know nothing about
	var called bool
	h := RequireSession(v)(echoHandler(&called, nil))

	if _, err := h(context.Background(), tool.Args{"auth_token": "tok-good"}); err != nil {
		t.Fatalf("RequireSession rejected an authenticated caller: %v", err)
	}
	if !called {
		t.Error("handler never ran")
	}
}

func TestRolePresets(t *testing.T) {
	presets := map[string]func(TokenValidator) tool.Middleware{
		"author":   RequireAuthor,
		"reviewer": RequireReviewer,
		"editor":   RequireEditor,
		"admin":    RequireAdmin,
	}

	tests := []struct {
		role   string
		admits map[string]bool
	}{
		{session.RoleAuthor, map[string]bool{"author": true, "reviewer": false, "editor": false, "admin": false}},
		{session.RoleReviewer, map[string]bool{"author": true, "reviewer": true, "editor": false, "admin": false}},
		{session.RoleEditor, map[string]bool{"author": true, "reviewer": true, "editor": true, "admin": false}},
		{session.RoleAdmin, map[string]bool{"author": false, "reviewer": false, "editor": false, "admin": true}},
	}

	for _, tt := range tests {
		v := validatorWith(tt.role)
		for preset, want := range tt.admits {
			var called bool
			h := presets[preset](v)(echoHandler(&called, nil))
			_, err := h(context.Background(), tool.Args{"auth_token": "tok-good"})
			if got := err == nil; got != want {
				t.Errorf("role %q against %s preset: admitted=%v, want %v (err=%v)",
					tt.role, preset, got, want, err)
			}
		}
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	s := &session.Session{Email: "ada@example.org"}
	ctx := WithSession(context.Background(), s)
	if got := SessionFromContext(ctx); got != s {
		t.Errorf("SessionFromContext = %+v, want the stored session", got)
	}
	if got := SessionFromContext(context.Background()); got != nil {
		t.Errorf("SessionFromContext(empty) = %+v, want nil", got)
	}
}
