package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/config"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 2048

var (
	errURLRequired     = errors.New("supabase project url is required")
	errAnonKeyRequired = errors.New("supabase anon key is required")
)

// Client talks to the hosted auth API (GoTrue). Password custody stays with
// the provider; this service never sees or stores password hashes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the auth endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// NewClient builds an auth provider client from configuration.
func NewClient(cfg config.SupabaseConfig, opts ...Option) (*Client, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errURLRequired
	}
	anonKey := strings.TrimSpace(cfg.AnonKey)
	if anonKey == "" {
		return nil, errAnonKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(url, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Session carries the provider-issued token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthUser is the provider's view of an account.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUpResult reports the created account. Session is nil when the provider
// requires email confirmation before issuing tokens.
type SignUpResult struct {
	User    AuthUser
	Session *Session
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenEnvelope covers both GoTrue response shapes: confirmed signups and
// password grants return the session fields at the top level with the user
// nested, while confirmation-pending signups return the bare user object.
type tokenEnvelope struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *AuthUser `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp registers a new account with the provider.
func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	var envelope tokenEnvelope
	if err := c.do(ctx, http.MethodPost, "/signup", "", credentialsPayload{Email: email, Password: password}, &envelope); err != nil {
		return nil, err
	}

	result := &SignUpResult{}
	switch {
	case envelope.User != nil:
		result.User = *envelope.User
	case envelope.ID != "":
		result.User = AuthUser{ID: envelope.ID, Email: envelope.Email}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sign up returned no user")
	}
	if envelope.AccessToken != "" {
		result.Session = &Session{
			AccessToken:  envelope.AccessToken,
			RefreshToken: envelope.RefreshToken,
		}
	}
	return result, nil
}

// SignIn exchanges email/password credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (AuthUser, *Session, error) {
	var envelope tokenEnvelope
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentialsPayload{Email: email, Password: password}, &envelope); err != nil {
		return AuthUser{}, nil, err
	}
	if envelope.User == nil || envelope.AccessToken == "" {
		return AuthUser{}, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return *envelope.User, &Session{
		AccessToken:  envelope.AccessToken,
		RefreshToken: envelope.RefreshToken,
	}, nil
}

// SignOut revokes the provider session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// SendPasswordReset asks the provider to email a reset link. The provider
// responds identically whether or not the account exists.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/recover", "", map[string]string{"email": email}, nil)
}

// UpdatePassword sets a new password for the user behind the access token,
// used after the reset link sign-in.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/user", accessToken, map[string]string{"password": newPassword}, nil)
}

// GetUser resolves the account behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (AuthUser, error) {
	var user AuthUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return AuthUser{}, err
	}
	if user.ID == "" {
		return AuthUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "token did not resolve to a user")
	}
	return user, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "auth provider client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal auth request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build auth request")
	}
	httpReq.Header.Set("apikey", c.anonKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute auth request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapProviderError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode auth response")
	}
	return nil
}

type providerError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
}

func mapProviderError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))

	var payload providerError
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = payload.ErrorDescription
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = fmt.Sprintf("auth provider returned status %d", resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.CodeRateLimit, message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	}
}
