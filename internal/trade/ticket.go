// Package trade implements order ticket computation and submission
package trade

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/calebmorris/papertrade/internal/models"
)

var (
	ErrNoCoinSelected  = errors.New("no coin selected")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidSide     = errors.New("unrecognised trade side")
	ErrInvalidType     = errors.New("unrecognised order type")
	ErrMissingPrice    = errors.New("order type requires a price")
)

// Ticket is an in-progress order form. Quantity and the prices are kept
// as the raw text the user typed; parsing happens on read so a partial
// or invalid entry simply computes to zero instead of erroring on every
// keystroke.
type Ticket struct {
	Coin       *models.Coin
	Side       models.OrderSide
	OrderType  models.OrderType
	Quantity   string
	LimitPrice string
	StopPrice  string
}

// NewTicket creates a market-buy ticket for a coin.
func NewTicket(coin *models.Coin) *Ticket {
	return &Ticket{
		Coin:      coin,
		Side:      models.SideBuy,
		OrderType: models.OrderTypeMarket,
	}
}

// parseAmount parses a user-entered number. Anything unparseable, or a
// non-finite value, reads as zero.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// QuantityValue returns the parsed quantity, zero when invalid.
func (t *Ticket) QuantityValue() float64 {
	return parseAmount(t.Quantity)
}

// LimitPriceValue returns the parsed limit price, zero when invalid.
func (t *Ticket) LimitPriceValue() float64 {
	return parseAmount(t.LimitPrice)
}

// StopPriceValue returns the parsed stop price, zero when invalid.
func (t *Ticket) StopPriceValue() float64 {
	return parseAmount(t.StopPrice)
}

// EffectivePrice is the per-unit price the ticket totals against: the
// entered limit/stop price for standing orders (zero while the entry
// does not parse), the coin's market price for market orders.
func (t *Ticket) EffectivePrice() float64 {
	switch t.OrderType {
	case models.OrderTypeLimit:
		return t.LimitPriceValue()
	case models.OrderTypeStop:
		return t.StopPriceValue()
	}
	if t.Coin == nil {
		return 0
	}
	return t.Coin.CurrentPrice
}

// Total is the estimated cost or proceeds of the ticket.
func (t *Ticket) Total() float64 {
	return t.EffectivePrice() * t.QuantityValue()
}

// MaxQuantity is the largest quantity the ticket could carry: for a buy,
// the cash balance at the coin's market price; for a sell, the held
// amount.
func (t *Ticket) MaxQuantity(portfolio *models.Portfolio) float64 {
	if t.Coin == nil || portfolio == nil {
		return 0
	}

	switch t.Side {
	case models.SideBuy:
		if t.Coin.CurrentPrice <= 0 {
			return 0
		}
		return portfolio.Balance / t.Coin.CurrentPrice

	case models.SideSell:
		holding, ok := portfolio.FindHolding(t.Coin.ID)
		if !ok {
			return 0
		}
		return holding.Quantity
	}
	return 0
}

// Validate checks the ticket is submittable.
func (t *Ticket) Validate() error {
	if t.Coin == nil {
		return ErrNoCoinSelected
	}
	if !t.Side.Valid() {
		return ErrInvalidSide
	}
	if !t.OrderType.Valid() {
		return ErrInvalidType
	}
	if t.QuantityValue() <= 0 {
		return ErrInvalidQuantity
	}

	switch t.OrderType {
	case models.OrderTypeLimit:
		if t.LimitPriceValue() <= 0 {
			return ErrMissingPrice
		}
	case models.OrderTypeStop:
		if t.StopPriceValue() <= 0 {
			return ErrMissingPrice
		}
	}
	return nil
}
