// Package app wires configuration, session, and API clients together
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calebmorris/papertrade/internal/api"
	"github.com/calebmorris/papertrade/internal/common"
	"github.com/calebmorris/papertrade/internal/models"
	"github.com/calebmorris/papertrade/internal/search"
	"github.com/calebmorris/papertrade/internal/session"
	"github.com/calebmorris/papertrade/internal/trade"
)

// App holds the assembled application dependencies.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Client  *api.Client
	Session *session.Manager
	Trades  *trade.Service
}

// NewApp loads configuration and wires the session manager, API client,
// and trade service. configPath may be empty, in which case only the
// default locations and environment overrides apply.
func NewApp(configPath string) (*App, error) {
	paths := []string{defaultConfigPath(), configPath}
	config, err := common.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	store, err := buildStore(config)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(store,
		session.WithLogger(logger),
		session.WithTTL(config.Session.GetTTL()),
	)

	client := api.NewClient(
		api.WithBaseURL(config.API.BaseURL),
		api.WithLogger(logger),
		api.WithRateLimit(config.API.RateLimit),
		api.WithTimeout(config.API.GetTimeout()),
		api.WithCredentials(manager),
		api.WithUnauthorizedHook(manager.HandleUnauthorized),
	)
	manager.AttachClient(client)

	return &App{
		Config:  config,
		Logger:  logger,
		Client:  client,
		Session: manager,
		Trades:  trade.NewService(client, logger),
	}, nil
}

// NewSearchDebouncer builds a coin-search debouncer from the configured
// window and minimum query length.
func (a *App) NewSearchDebouncer() *search.Debouncer[[]models.Coin] {
	return search.NewDebouncer(
		func(ctx context.Context, query string) ([]models.Coin, error) {
			return a.Client.SearchCoins(ctx, query)
		},
		search.WithDelay[[]models.Coin](a.Config.Search.GetDebounce()),
		search.WithMinLength[[]models.Coin](a.Config.Search.MinLength),
	)
}

// NewUserSearchDebouncer builds an account-search debouncer with the
// same window and minimum length as coin search.
func (a *App) NewUserSearchDebouncer() *search.Debouncer[[]models.SocialUser] {
	return search.NewDebouncer(
		func(ctx context.Context, query string) ([]models.SocialUser, error) {
			return a.Client.SearchUsers(ctx, query)
		},
		search.WithDelay[[]models.SocialUser](a.Config.Search.GetDebounce()),
		search.WithMinLength[[]models.SocialUser](a.Config.Search.MinLength),
	)
}

// buildStore selects the credential store backend. The encrypted backend
// reads its passphrase from PAPERTRADE_SESSION_PASSPHRASE.
func buildStore(config *common.Config) (session.Store, error) {
	file := session.NewFileStore(config.Session.Path)

	if config.Session.Backend != "encrypted" {
		return file, nil
	}

	passphrase := os.Getenv("PAPERTRADE_SESSION_PASSPHRASE")
	encrypted, err := session.NewEncryptedStore(file, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted session store: %w", err)
	}
	return encrypted, nil
}

// defaultConfigPath looks for papertrade.toml next to the binary.
func defaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "papertrade.toml")
}
