package models

// Coin is a read-only market snapshot row from /trade/market and
// /trade/search. Field names follow the market-data provider's
// snake_case convention.
type Coin struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
	MarketCap      float64 `json:"market_cap"`
	Image          string  `json:"image,omitempty"`
}

// CurrencyValue holds a per-currency quote. Only USD is surfaced by the
// platform today.
type CurrencyValue struct {
	USD float64 `json:"usd"`
}

// CoinMarketData is the market_data sub-document of a coin detail response.
type CoinMarketData struct {
	CurrentPrice      CurrencyValue `json:"current_price"`
	MarketCap         CurrencyValue `json:"market_cap"`
	TotalVolume       CurrencyValue `json:"total_volume"`
	High24h           CurrencyValue `json:"high_24h"`
	Low24h            CurrencyValue `json:"low_24h"`
	PriceChange7d     float64       `json:"price_change_percentage_7d"`
	PriceChange30d    float64       `json:"price_change_percentage_30d"`
	ATH               CurrencyValue `json:"ath"`
	CirculatingSupply float64       `json:"circulating_supply"`
}

// CoinDetail is the full detail document from /trade/coins/:id.
type CoinDetail struct {
	ID            string         `json:"id"`
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	MarketCapRank int            `json:"market_cap_rank"`
	Description   CoinText       `json:"description"`
	MarketData    CoinMarketData `json:"market_data"`
}

// CoinText holds localized text; only English is used.
type CoinText struct {
	EN string `json:"en"`
}

// Snapshot reduces a detail document to the flat Coin shape the trade
// ticket works with.
func (d *CoinDetail) Snapshot() Coin {
	return Coin{
		ID:           d.ID,
		Symbol:       d.Symbol,
		Name:         d.Name,
		CurrentPrice: d.MarketData.CurrentPrice.USD,
		MarketCap:    d.MarketData.MarketCap.USD,
	}
}
