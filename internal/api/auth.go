package api

import (
	"context"
	"fmt"

	"github.com/calebmorris/papertrade/internal/models"
)

// AuthResponse is the session-creation payload from /auth/login and
// /auth/register.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new account with credentials.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	var resp AuthResponse
	if err := c.post(ctx, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	if resp.User != nil {
		resp.User.Normalize()
	}
	return &resp, nil
}

// Login creates a session from credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.User != nil {
		resp.User.Normalize()
	}
	return &resp, nil
}

// Me fetches the current user using the client's credential source.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("auth/me returned no user")
	}
	resp.User.Normalize()
	return resp.User, nil
}

// MeWithToken fetches the current user with an explicit bearer token,
// bypassing the client's credential source. Used by the OAuth callback
// fallback before the session is persisted.
func (c *Client) MeWithToken(ctx context.Context, token string) (*models.User, error) {
	scoped := &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		logger:     c.logger,
		limiter:    c.limiter,
		creds:      StaticToken(token),
		// No unauthorized hook: a bad callback token must not tear down
		// an unrelated existing session.
	}
	return scoped.Me(ctx)
}

// Logout invalidates the server-side session. Callers clear local
// credentials regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.get(ctx, "/auth/logout", nil)
}

// GoogleAuthURL returns the OAuth redirect handoff URL. The flow itself
// happens in the browser; the provider redirects back to /auth/callback.
func (c *Client) GoogleAuthURL() string {
	return c.baseURL + "/auth/google"
}
