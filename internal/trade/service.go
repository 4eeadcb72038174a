package trade

import (
	"context"
	"errors"
	"sync"

	"github.com/calebmorris/papertrade/internal/api"
	"github.com/calebmorris/papertrade/internal/common"
	"github.com/calebmorris/papertrade/internal/models"
)

// ErrRequestInFlight is returned when a submission is attempted while a
// previous one has not completed. Trade submissions are never queued or
// retried; the caller waits and resubmits.
var ErrRequestInFlight = errors.New("a trade request is already in flight")

// Service owns the active order ticket and the portfolio snapshot, and
// serialises trade submissions against the backend.
type Service struct {
	client *api.Client
	logger *common.Logger

	mu        sync.Mutex
	inFlight  bool
	ticket    *Ticket
	portfolio *models.Portfolio
}

// NewService creates a trade service over the API client.
func NewService(client *api.Client, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{client: client, logger: logger}
}

// SetTicket replaces the active order ticket.
func (s *Service) SetTicket(t *Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticket = t
}

// Ticket returns the active order ticket, or nil.
func (s *Service) Ticket() *Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket
}

// Portfolio returns the last loaded snapshot, or nil.
func (s *Service) Portfolio() *models.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio
}

// LoadPortfolio fetches and caches the account snapshot.
func (s *Service) LoadPortfolio(ctx context.Context) (*models.Portfolio, error) {
	p, err := s.client.Portfolio(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.portfolio = p
	s.mu.Unlock()
	return p, nil
}

// begin claims the in-flight slot, or fails if one is already claimed.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrRequestInFlight
	}
	s.inFlight = true
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Submit validates and sends the active ticket. On success the ticket is
// cleared and the portfolio refreshed; a failed refresh does not fail
// the trade, since the backend has already executed it. On failure the
// ticket is kept so the user can correct and resubmit.
func (s *Service) Submit(ctx context.Context) (*api.TradeResult, error) {
	s.mu.Lock()
	ticket := s.ticket
	s.mu.Unlock()

	if ticket == nil {
		return nil, ErrNoCoinSelected
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	var (
		result *api.TradeResult
		err    error
	)
	if ticket.OrderType == models.OrderTypeMarket {
		result, err = s.client.ExecuteMarketTrade(ctx, ticket.Coin.ID, ticket.Coin.Symbol, ticket.Side, ticket.QuantityValue())
	} else {
		result, err = s.client.PlaceOrder(ctx, ticket.Coin.ID, ticket.Coin.Symbol, ticket.Side, ticket.QuantityValue(), ticket.OrderType, ticket.LimitPriceValue(), ticket.StopPriceValue())
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("coin", ticket.Coin.ID).Msg("Trade submission failed")
		return nil, err
	}

	s.mu.Lock()
	s.ticket = nil
	s.mu.Unlock()

	s.refreshAfterTrade(ctx)
	return result, nil
}

// ClosePosition closes pct percent of a holding and refreshes the
// snapshot. The percentage is clamped rather than rejected.
func (s *Service) ClosePosition(ctx context.Context, coinID string, pct int) (*api.TradeResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	result, err := s.client.ClosePosition(ctx, coinID, ClampPercentage(pct))
	if err != nil {
		s.logger.Warn().Err(err).Str("coin", coinID).Msg("Close position failed")
		return nil, err
	}

	s.refreshAfterTrade(ctx)
	return result, nil
}

// refreshAfterTrade reloads the portfolio after a successful mutation.
// The trade itself already succeeded, so a refresh failure is only
// logged; the stale snapshot remains until the next load.
func (s *Service) refreshAfterTrade(ctx context.Context) {
	p, err := s.client.Portfolio(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio refresh after trade failed")
		return
	}

	s.mu.Lock()
	s.portfolio = p
	s.mu.Unlock()
}
