package models

import "time"

// OrderSide is the direction of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType selects immediate or standing execution.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// Valid reports whether the side is a recognised value.
func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Valid reports whether the order type is a recognised value.
func (t OrderType) Valid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit || t == OrderTypeStop
}

// Order is a standing limit/stop order as returned by /trade/orders.
type Order struct {
	ID         string    `json:"id"`
	CoinID     string    `json:"coinId"`
	CoinSymbol string    `json:"coinSymbol"`
	Side       OrderSide `json:"type"`
	OrderType  OrderType `json:"orderType"`
	Quantity   float64   `json:"quantity"`
	LimitPrice float64   `json:"limitPrice,omitempty"`
	StopPrice  float64   `json:"stopPrice,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TradeRecord is a completed trade from /trade/history.
type TradeRecord struct {
	ID         string    `json:"id"`
	CoinID     string    `json:"coinId"`
	CoinSymbol string    `json:"coinSymbol"`
	Side       OrderSide `json:"type"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Total      float64   `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}
