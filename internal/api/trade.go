package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/calebmorris/papertrade/internal/models"
)

// dataEnvelope is the {"data": ...} wrapper used by the trade endpoints.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// MarketData retrieves a page of market snapshot rows.
func (c *Client) MarketData(ctx context.Context, page, limit int) ([]models.Coin, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	var resp dataEnvelope[[]models.Coin]
	path := fmt.Sprintf("/trade/market?page=%d&limit=%d", page, limit)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Coin{}
	}
	return resp.Data, nil
}

// CoinDetails retrieves the full detail document for a coin.
func (c *Client) CoinDetails(ctx context.Context, coinID string) (*models.CoinDetail, error) {
	var resp dataEnvelope[*models.CoinDetail]
	path := "/trade/coins/" + url.PathEscape(coinID)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("coin %s: empty detail response", coinID)
	}
	return resp.Data, nil
}

// SearchCoins searches the market by name or symbol.
func (c *Client) SearchCoins(ctx context.Context, query string) ([]models.Coin, error) {
	var resp dataEnvelope[[]models.Coin]
	path := "/trade/search?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Coin{}
	}
	return resp.Data, nil
}

// TradeResult is the confirmation for an executed or placed order.
type TradeResult struct {
	Message string              `json:"message"`
	Trade   *models.TradeRecord `json:"trade,omitempty"`
	Order   *models.Order       `json:"order,omitempty"`
}

// ExecuteMarketTrade executes an immediate buy/sell at market price.
func (c *Client) ExecuteMarketTrade(ctx context.Context, coinID, coinSymbol string, side models.OrderSide, quantity float64) (*TradeResult, error) {
	body := map[string]interface{}{
		"coinId":     coinID,
		"coinSymbol": coinSymbol,
		"type":       side,
		"quantity":   quantity,
	}

	var resp TradeResult
	if err := c.post(ctx, "/trade/market", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlaceOrder places a standing limit or stop order. Only the price
// matching the order type is sent; the other is omitted.
func (c *Client) PlaceOrder(ctx context.Context, coinID, coinSymbol string, side models.OrderSide, quantity float64, orderType models.OrderType, limitPrice, stopPrice float64) (*TradeResult, error) {
	body := map[string]interface{}{
		"coinId":     coinID,
		"coinSymbol": coinSymbol,
		"type":       side,
		"quantity":   quantity,
		"orderType":  orderType,
	}
	switch orderType {
	case models.OrderTypeLimit:
		body["limitPrice"] = limitPrice
	case models.OrderTypeStop:
		body["stopPrice"] = stopPrice
	}

	var resp TradeResult
	if err := c.post(ctx, "/trade/order", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Orders lists the user's active standing orders.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var resp dataEnvelope[[]models.Order]
	if err := c.get(ctx, "/trade/orders", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Order{}
	}
	return resp.Data, nil
}

// CancelOrder cancels a standing order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.delete(ctx, "/trade/orders/"+url.PathEscape(orderID), nil)
}

// Portfolio retrieves the current account snapshot.
func (c *Client) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	var resp dataEnvelope[*models.Portfolio]
	if err := c.get(ctx, "/trade/portfolio", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = &models.Portfolio{}
	}
	resp.Data.Normalize()
	return resp.Data, nil
}

// TradeHistory retrieves the user's completed trades.
func (c *Client) TradeHistory(ctx context.Context) ([]models.TradeRecord, error) {
	var resp dataEnvelope[[]models.TradeRecord]
	if err := c.get(ctx, "/trade/history", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.TradeRecord{}
	}
	return resp.Data, nil
}

// ClosePosition closes all or part of a holding. Percentage is an
// integer in [1,100]. The request is non-idempotent and never retried.
func (c *Client) ClosePosition(ctx context.Context, coinID string, percentage int) (*TradeResult, error) {
	body := map[string]interface{}{
		"coinId":     coinID,
		"percentage": percentage,
	}

	var resp TradeResult
	if err := c.post(ctx, "/trade/close-position", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Leaderboard retrieves a ranked list. Known types: "value", "profit".
func (c *Client) Leaderboard(ctx context.Context, boardType string) ([]models.LeaderboardEntry, error) {
	var resp dataEnvelope[[]models.LeaderboardEntry]
	if err := c.get(ctx, "/leaderboard/"+url.PathEscape(boardType), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.LeaderboardEntry{}
	}
	return resp.Data, nil
}
