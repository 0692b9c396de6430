package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for backend communication.
var (
	// ErrUnavailable is returned for transport-level failures (connection,
	// timeout, non-200 status).
	ErrUnavailable = errors.New("backend: request failed")

	// ErrRejected is returned when the backend executes the call and reports
	// an application error (bad credentials, unknown function, denied query).
	ErrRejected = errors.New("backend: call rejected")

	// ErrMalformedResponse is returned when a response decodes but lacks the
	// fields the caller needs.
	ErrMalformedResponse = errors.New("backend: malformed response")
)

// CallKind selects the backend function class to invoke.
type CallKind string

const (
	CallQuery    CallKind = "query"
	CallMutation CallKind = "mutation"
	CallAction   CallKind = "action"
)

// Tokens is the credential material issued by a successful sign-in.
type Tokens struct {
	// Token is the opaque bearer token presented on subsequent calls.
	Token string

	// RefreshToken is the long-lived refresh credential, when issued.
	RefreshToken string
}

// Profile is the user record behind a bearer token.
type Profile struct {
	// ID is the backend document ID of the user.
	ID string

	// Email is the account email address.
	Email string

	// Name is the display name.
	Name string

	// Roles are the journal role labels from the user's profile data.
	// Nil when the backend has no role assignment for the account.
	Roles []string
}

// AuthBackend is the capability set the session manager consumes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Errors: absence of a valid user is an error, never a nil result.
type AuthBackend interface {
	// VerifyCredentials checks an email/password pair and returns the issued
	// tokens on success.
	VerifyCredentials(ctx context.Context, email, password string) (*Tokens, error)

	// FetchProfile returns the user record behind a bearer token. A rejected
	// or unknown token is an error.
	FetchProfile(ctx context.Context, token string) (*Profile, error)

	// CreateAccount registers a new account and returns its user ID.
	CreateAccount(ctx context.Context, email, password string) (string, error)
}

// Config configures the backend client.
type Config struct {
	// BaseURL is the backend deployment URL.
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	// Default: 10 seconds.
	Timeout time.Duration

	// HTTPClient is the HTTP client to use. If nil, a default client is used.
	HTTPClient *http.Client
}

// Client talks to the document-database backend over its HTTP function API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a backend client.
func NewClient(config Config) *Client {
	// Apply defaults
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// Call invokes a backend function and returns its raw result value. The
// token, when non-empty, is attached as a bearer credential.
func (c *Client) Call(ctx context.Context, kind CallKind, token, fn string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}

	payload, err := json.Marshal(map[string]any{
		"path":   fn,
		"args":   args,
		"format": "json",
	})
	if err != nil {
		return nil, fmt.Errorf("backend: encode request: %w", err)
	}

	endpoint := c.config.BaseURL + "/api/" + string(kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Status       string          `json:"status"`
		Value        json.RawMessage `json:"value"`
		ErrorMessage string          `json:"errorMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrMalformedResponse, err)
	}

	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, body.ErrorMessage)
	}

	return body.Value, nil
}

const (
	signInFunction       = "auth:signIn"
	loggedInUserFunction = "auth:loggedInUser"
)

// VerifyCredentials signs in with the password provider.
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (*Tokens, error) {
	value, err := c.Call(ctx, CallAction, "", signInFunction, map[string]any{
		"provider": "password",
		"params": map[string]any{
			"email":    email,
			"password": password,
			"flow":     "signIn",
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeTokens(value)
}

// FetchProfile queries the logged-in user for the given token.
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	value, err := c.Call(ctx, CallQuery, token, loggedInUserFunction, nil)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID       string `json:"_id"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		UserData struct {
			Roles []string `json:"roles"`
		} `json:"userData"`
	}
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, fmt.Errorf("%w: profile decode: %v", ErrMalformedResponse, err)
	}

	// The backend returns a null user for unauthenticated queries rather
	// than an error status.
	if raw.ID == "" {
		return nil, fmt.Errorf("%w: no user for token", ErrRejected)
	}

	return &Profile{
		ID:    raw.ID,
		Email: raw.Email,
		Name:  raw.Name,
		Roles: raw.UserData.Roles,
	}, nil
}

// CreateAccount signs up a new account with the password provider.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	value, err := c.Call(ctx, CallAction, "", signInFunction, map[string]any{
		"provider": "password",
		"params": map[string]any{
			"email":    email,
			"password": password,
			"flow":     "signUp",
		},
	})
	if err != nil {
		return "", err
	}

	var raw struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(value, &raw); err != nil {
		return "", fmt.Errorf("%w: sign-up decode: %v", ErrMalformedResponse, err)
	}
	if raw.UserID == "" {
		return "", fmt.Errorf("%w: sign-up response missing user id", ErrMalformedResponse)
	}
	return raw.UserID, nil
}

func decodeTokens(value json.RawMessage) (*Tokens, error) {
	var raw struct {
		Tokens struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, fmt.Errorf("%w: token decode: %v", ErrMalformedResponse, err)
	}
	if raw.Tokens.Token == "" {
		return nil, fmt.Errorf("%w: response missing token", ErrMalformedResponse)
	}
	return &Tokens{
		Token:        raw.Tokens.Token,
		RefreshToken: raw.Tokens.RefreshToken,
	}, nil
}

// Ensure Client implements AuthBackend
var _ AuthBackend = (*Client)(nil)
