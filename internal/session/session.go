package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calebmorris/papertrade/internal/api"
	"github.com/calebmorris/papertrade/internal/common"
	"github.com/calebmorris/papertrade/internal/models"
)

// State is the session's terminal authentication state.
type State int

const (
	// StateUnknown is the state before Init has run.
	StateUnknown State = iota
	// StateAuthenticated means a user identity is available. It may be
	// provisional (cached) while a live refresh is outstanding or failed
	// transiently.
	StateAuthenticated
	// StateUnauthenticated means there is no usable credential.
	StateUnauthenticated
	// StateError means bootstrap failed with no usable cached identity.
	StateError
)

// ErrNoClient reports a manager used before AttachClient.
var ErrNoClient = errors.New("session manager has no API client attached")

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Manager owns the session lifecycle: Init (bootstrap), Refresh,
// Teardown, and global 401 handling. It replaces the web client's
// module-level auth singleton with a constructed object that is passed
// to whatever needs it.
//
// Construction is two-phase because the API client needs the manager as
// its credential source: build the Manager, build the api.Client with
// WithCredentials(m) and WithUnauthorizedHook(m.HandleUnauthorized),
// then call m.AttachClient.
type Manager struct {
	store    Store
	logger   *common.Logger
	ttl      time.Duration
	navigate func(route string)

	mu      sync.RWMutex
	client  *api.Client
	state   State
	user    *models.User
	lastErr error
	loading bool
	route   string
}

// ManagerOption configures the manager
type ManagerOption func(*Manager)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTTL sets the credential persistence lifetime
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithNavigator sets the navigation hook invoked on forced redirects.
func WithNavigator(fn func(route string)) ManagerOption {
	return func(m *Manager) {
		m.navigate = fn
	}
}

// NewManager creates a session manager over a credential store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		logger:  common.NewSilentLogger(),
		ttl:     DefaultTTL,
		state:   StateUnknown,
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AttachClient binds the API client used for live user fetches and
// logout. Must be called before Init.
func (m *Manager) AttachClient(client *api.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
}

// Token implements api.CredentialSource.
func (m *Manager) Token() string {
	token, _ := m.store.Get(KeyToken)
	return token
}

// cachedUser decodes the persisted user, or nil if absent or malformed.
func (m *Manager) cachedUser() *models.User {
	raw, ok := m.store.Get(KeyUser)
	if !ok {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	u.Normalize()
	return &u
}

func (m *Manager) persistUser(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return m.store.Set(KeyUser, string(data), m.ttl)
}

func (m *Manager) clearCredentials() {
	m.store.Remove(KeyToken)
	m.store.Remove(KeyUser)
}

// Init bootstraps the session: no token means unauthenticated; with a
// token the cached user (if any) provides a provisional identity which
// is then reconciled against a live /auth/me fetch. An authentication
// rejection clears everything; a transient network failure with a
// cached user keeps the provisional identity and records the error.
func (m *Manager) Init(ctx context.Context) State {
	token := m.Token()
	if token == "" {
		m.setState(StateUnauthenticated, nil, nil)
		m.setLoading(false)
		return m.State()
	}

	cached := m.cachedUser()
	if cached != nil {
		// Provisional identity to avoid a blank state while fetching.
		m.setState(StateAuthenticated, cached, nil)
	}

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client == nil {
		m.setState(StateError, nil, ErrNoClient)
		m.setLoading(false)
		return m.State()
	}

	fresh, err := client.Me(ctx)
	switch {
	case err == nil:
		if perr := m.persistUser(fresh); perr != nil {
			m.logger.Warn().Err(perr).Msg("Failed to persist refreshed user")
		}
		m.setState(StateAuthenticated, fresh, nil)

	case isUnauthorized(err):
		// The client's 401 hook has already torn the session down; make
		// the state explicit here for callers that inspect Init's result.
		m.clearCredentials()
		m.setState(StateUnauthenticated, nil, nil)

	case cached != nil:
		// Transient failure with a usable cached identity: stay signed
		// in, surface the error for observability.
		m.logger.Warn().Err(err).Msg("User refresh failed, keeping cached identity")
		m.setState(StateAuthenticated, cached, err)

	default:
		m.setState(StateError, nil, err)
	}

	m.setLoading(false)
	return m.State()
}

// Refresh re-fetches the current user and persists it.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client == nil {
		return ErrNoClient
	}

	fresh, err := client.Me(ctx)
	if err != nil {
		if isUnauthorized(err) {
			m.clearCredentials()
			m.setState(StateUnauthenticated, nil, nil)
		}
		return err
	}

	if perr := m.persistUser(fresh); perr != nil {
		m.logger.Warn().Err(perr).Msg("Failed to persist refreshed user")
	}
	m.setState(StateAuthenticated, fresh, nil)
	return nil
}

// Establish persists a newly issued credential and user, moving the
// session to authenticated. Called after login, registration, and the
// OAuth callback.
func (m *Manager) Establish(token string, user *models.User) error {
	if err := m.store.Set(KeyToken, token, m.ttl); err != nil {
		return err
	}
	if user != nil {
		user.Normalize()
		if err := m.persistUser(user); err != nil {
			return err
		}
	}
	m.setState(StateAuthenticated, user, nil)
	m.setLoading(false)
	return nil
}

// Teardown invalidates the server-side session on a best-effort basis
// and always clears local credentials.
func (m *Manager) Teardown(ctx context.Context) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client != nil {
		if err := client.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Logout request failed, clearing local session anyway")
		}
	}

	m.clearCredentials()
	m.setState(StateUnauthenticated, nil, nil)
}

// HandleUnauthorized implements the global 401 policy: clear both
// credentials and redirect to login, unless the current route is
// already a public auth entry point (avoiding redirect loops).
func (m *Manager) HandleUnauthorized() {
	m.clearCredentials()
	m.setState(StateUnauthenticated, nil, nil)

	m.mu.RLock()
	route := m.route
	navigate := m.navigate
	m.mu.RUnlock()

	if PublicAuthRoute(route) {
		return
	}
	if navigate != nil {
		navigate(RouteLogin)
	}
}

// SetRoute records the current location, consulted by the 401 policy.
func (m *Manager) SetRoute(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.route = route
}

// TokenExpiresAt returns the expiry claim of the persisted token. The
// token is parsed without verification: the client holds no signing
// secret and only needs the timestamp for display and staleness hints.
func (m *Manager) TokenExpiresAt() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the current user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// LastError returns the most recent bootstrap/refresh error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Loading reports whether bootstrap is still in progress.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Authenticated reports whether a user identity is available.
func (m *Manager) Authenticated() bool {
	return m.State() == StateAuthenticated
}

// OnboardingComplete reports the current user's onboarding flag.
func (m *Manager) OnboardingComplete() bool {
	u := m.User()
	return u != nil && u.OnboardingComplete
}

func (m *Manager) setState(state State, user *models.User, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
	m.lastErr = err
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func isUnauthorized(err error) bool {
	apiErr, ok := api.AsAPIError(err)
	return ok && apiErr.Unauthorized()
}
