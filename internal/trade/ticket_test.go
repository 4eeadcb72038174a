package trade

import (
	"errors"
	"math"
	"testing"

	"github.com/calebmorris/papertrade/internal/models"
)

func testCoin() *models.Coin {
	return &models.Coin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 100}
}

func TestTicketTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		want     float64
	}{
		{"whole quantity", "3", 300},
		{"fractional quantity", "2.5", 250},
		{"empty quantity", "", 0},
		{"partial entry", ".", 0},
		{"garbage entry", "abc", 0},
		{"negative entry", "-1", -100},
		{"whitespace padded", " 1.5 ", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := NewTicket(testCoin())
			ticket.Quantity = tt.quantity
			if got := ticket.Total(); got != tt.want {
				t.Errorf("Expected total %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTicketEffectivePrice(t *testing.T) {
	ticket := NewTicket(testCoin())
	if got := ticket.EffectivePrice(); got != 100 {
		t.Errorf("Expected market price 100, got %v", got)
	}

	ticket.OrderType = models.OrderTypeLimit
	ticket.LimitPrice = "95"
	if got := ticket.EffectivePrice(); got != 95 {
		t.Errorf("Expected limit price 95, got %v", got)
	}

	// An unparseable limit price reads as zero, never the market price.
	ticket.LimitPrice = "x"
	if got := ticket.EffectivePrice(); got != 0 {
		t.Errorf("Expected 0 for unparseable limit price, got %v", got)
	}
	ticket.Quantity = "2"
	if got := ticket.Total(); got != 0 {
		t.Errorf("Expected total 0 on unparseable limit price, got %v", got)
	}

	ticket.OrderType = models.OrderTypeStop
	ticket.StopPrice = "110"
	if got := ticket.EffectivePrice(); got != 110 {
		t.Errorf("Expected stop price 110, got %v", got)
	}
	ticket.StopPrice = ""
	if got := ticket.EffectivePrice(); got != 0 {
		t.Errorf("Expected 0 for empty stop price, got %v", got)
	}

	ticket.OrderType = models.OrderTypeMarket
	ticket.Coin = nil
	if got := ticket.EffectivePrice(); got != 0 {
		t.Errorf("Expected 0 without a coin, got %v", got)
	}
}

func TestTicketMaxQuantity(t *testing.T) {
	portfolio := &models.Portfolio{
		Balance: 1000,
		Holdings: []models.Holding{
			{CoinID: "bitcoin", Quantity: 4},
		},
	}

	buy := NewTicket(testCoin())
	if got := buy.MaxQuantity(portfolio); got != 10 {
		t.Errorf("Expected buy max 10, got %v", got)
	}

	// The max is always computed at the market price, not the entered
	// limit price.
	limitBuy := NewTicket(testCoin())
	limitBuy.OrderType = models.OrderTypeLimit
	limitBuy.LimitPrice = "50"
	if got := limitBuy.MaxQuantity(portfolio); got != 10 {
		t.Errorf("Expected buy max 10 at market price, got %v", got)
	}

	sell := NewTicket(testCoin())
	sell.Side = models.SideSell
	if got := sell.MaxQuantity(portfolio); got != 4 {
		t.Errorf("Expected sell max 4, got %v", got)
	}

	// Selling a coin that is not held.
	sell.Coin = &models.Coin{ID: "ethereum", CurrentPrice: 50}
	if got := sell.MaxQuantity(portfolio); got != 0 {
		t.Errorf("Expected 0 for unheld coin, got %v", got)
	}

	// A zero price cannot divide the balance.
	free := NewTicket(&models.Coin{ID: "freecoin", CurrentPrice: 0})
	if got := free.MaxQuantity(portfolio); got != 0 {
		t.Errorf("Expected 0 at zero price, got %v", got)
	}

	if got := buy.MaxQuantity(nil); got != 0 {
		t.Errorf("Expected 0 without a portfolio, got %v", got)
	}
}

func TestTicketValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Ticket)
		wantErr error
	}{
		{"valid market buy", func(tk *Ticket) { tk.Quantity = "1" }, nil},
		{"no coin", func(tk *Ticket) { tk.Coin = nil; tk.Quantity = "1" }, ErrNoCoinSelected},
		{"zero quantity", func(tk *Ticket) { tk.Quantity = "0" }, ErrInvalidQuantity},
		{"empty quantity", func(tk *Ticket) {}, ErrInvalidQuantity},
		{"negative quantity", func(tk *Ticket) { tk.Quantity = "-2" }, ErrInvalidQuantity},
		{"nan quantity", func(tk *Ticket) { tk.Quantity = "NaN" }, ErrInvalidQuantity},
		{"bad side", func(tk *Ticket) { tk.Side = "hold"; tk.Quantity = "1" }, ErrInvalidSide},
		{"bad type", func(tk *Ticket) { tk.OrderType = "trailing"; tk.Quantity = "1" }, ErrInvalidType},
		{
			"limit without price",
			func(tk *Ticket) { tk.OrderType = models.OrderTypeLimit; tk.Quantity = "1" },
			ErrMissingPrice,
		},
		{
			"limit with price",
			func(tk *Ticket) {
				tk.OrderType = models.OrderTypeLimit
				tk.Quantity = "1"
				tk.LimitPrice = "95"
			},
			nil,
		},
		{
			"stop without price",
			func(tk *Ticket) { tk.OrderType = models.OrderTypeStop; tk.Quantity = "1" },
			ErrMissingPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := NewTicket(testCoin())
			tt.mutate(ticket)

			err := ticket.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseAmountRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		if got := parseAmount(s); got != 0 {
			t.Errorf("Expected 0 for %q, got %v", s, got)
		}
	}
	if got := parseAmount("1e308"); math.IsInf(got, 0) {
		t.Error("Expected finite value for 1e308")
	}
}
