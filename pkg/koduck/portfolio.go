package koduck

import (
	"context"
	"fmt"
	"net/http"
)

// Portfolio returns all held positions.
func (c *Client) Portfolio(ctx context.Context) ([]PortfolioItem, error) {
	var out []PortfolioItem
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/portfolio"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PortfolioSummary returns the aggregate value and P&L of the portfolio.
func (c *Client) PortfolioSummary(ctx context.Context) (*PortfolioSummary, error) {
	var out PortfolioSummary
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/portfolio/summary"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TradeRecords returns the trade history, newest first.
func (c *Client) TradeRecords(ctx context.Context) ([]TradeRecord, error) {
	var out []TradeRecord
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/portfolio/trades"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTrade records a trade and returns it as stored.
func (c *Client) AddTrade(ctx context.Context, req AddTradeRequest) (*TradeRecord, error) {
	if req.Type != SideBuy && req.Type != SideSell {
		return nil, fmt.Errorf("trade type must be %s or %s, got %q", SideBuy, SideSell, req.Type)
	}
	if req.Quantity <= 0 || req.Price <= 0 {
		return nil, fmt.Errorf("trade quantity and price must be positive")
	}

	var out TradeRecord
	if err := c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/v1/portfolio/trades", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
