package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/calebmorris/papertrade/internal/models"
)

// RedirectDelay is how long a failed callback outcome is displayed
// before sending the user back to login.
const RedirectDelay = 3 * time.Second

// CallbackResult is the outcome of processing an OAuth callback.
type CallbackResult struct {
	// Target is the route to continue to.
	Target string

	// Delay is how long to wait before navigating. Zero on success.
	Delay time.Duration

	// Err is set when the callback could not establish a session. Target
	// and Delay are still populated so the caller can recover.
	Err error
}

// HandleCallback processes the query parameters delivered by the OAuth
// provider redirect. The token is persisted before anything else so a
// slow or failed user fetch cannot lose the credential. The user
// payload embedded in the redirect is preferred; if it is missing or
// malformed the user is fetched live with the new token.
func (m *Manager) HandleCallback(ctx context.Context, params url.Values) CallbackResult {
	token := params.Get("token")
	if token == "" {
		return CallbackResult{
			Target: RouteLogin,
			Delay:  RedirectDelay,
			Err:    fmt.Errorf("authentication callback carried no token"),
		}
	}

	if err := m.store.Set(KeyToken, token, m.ttl); err != nil {
		return CallbackResult{
			Target: RouteLogin,
			Delay:  RedirectDelay,
			Err:    fmt.Errorf("failed to persist token: %w", err),
		}
	}

	user := decodeCallbackUser(params.Get("user"))
	if user == nil {
		m.mu.RLock()
		client := m.client
		m.mu.RUnlock()

		if client == nil {
			return CallbackResult{
				Target: RouteLogin,
				Delay:  RedirectDelay,
				Err:    ErrNoClient,
			}
		}

		fetched, err := client.MeWithToken(ctx, token)
		if err != nil {
			// The token is already persisted; a normal bootstrap on the
			// next load may still succeed. Treat this callback as failed.
			m.logger.Warn().Err(err).Msg("Callback user fetch failed")
			return CallbackResult{
				Target: RouteLogin,
				Delay:  RedirectDelay,
				Err:    fmt.Errorf("failed to load user after sign-in: %w", err),
			}
		}
		user = fetched
	}

	if err := m.Establish(token, user); err != nil {
		return CallbackResult{
			Target: RouteLogin,
			Delay:  RedirectDelay,
			Err:    fmt.Errorf("failed to persist session: %w", err),
		}
	}

	if params.Get("isNewUser") == "true" || !user.OnboardingComplete {
		return CallbackResult{Target: RouteOnboarding}
	}
	return CallbackResult{Target: RouteDashboard}
}

// decodeCallbackUser parses the user JSON carried in the redirect, or
// nil when absent or malformed.
func decodeCallbackUser(raw string) *models.User {
	if raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	if u.ID == "" {
		return nil
	}
	u.Normalize()
	return &u
}
