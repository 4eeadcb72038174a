package models

// Holding represents a portfolio position. Derived fields (CurrentPrice,
// CurrentValue, ProfitLoss, ProfitLossPercentage) are computed server-side
// at snapshot time; the client never recomputes them.
type Holding struct {
	CoinID               string  `json:"coinId"`
	CoinSymbol           string  `json:"coinSymbol"`
	Quantity             float64 `json:"quantity"`
	AverageBuyPrice      float64 `json:"averageBuyPrice"`
	CurrentPrice         float64 `json:"currentPrice"`
	CurrentValue         float64 `json:"currentValue"`
	ProfitLoss           float64 `json:"profitLoss"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"`
}

// Profitable reports whether the position is currently in profit.
func (h Holding) Profitable() bool {
	return h.ProfitLoss > 0
}

// Portfolio is the server-owned account snapshot. TotalValue is trusted
// as returned; the client does not enforce the balance+holdings identity.
type Portfolio struct {
	Balance    float64   `json:"balance"`
	Holdings   []Holding `json:"holdings"`
	TotalValue float64   `json:"totalValue"`
}

// Normalize fills defaults on a freshly decoded Portfolio.
func (p *Portfolio) Normalize() {
	if p.Holdings == nil {
		p.Holdings = []Holding{}
	}
}

// FindHolding returns the holding for a coin, if any.
func (p *Portfolio) FindHolding(coinID string) (Holding, bool) {
	for _, h := range p.Holdings {
		if h.CoinID == coinID {
			return h, true
		}
	}
	return Holding{}, false
}
