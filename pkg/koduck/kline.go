package koduck

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Kline returns candlesticks for q, oldest first as the server sends them.
func (c *Client) Kline(ctx context.Context, q KlineQuery) ([]KlineBar, error) {
	params := url.Values{}
	params.Set("market", q.Market)
	params.Set("symbol", q.Symbol)
	params.Set("timeframe", q.Timeframe)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.BeforeTime > 0 {
		params.Set("beforeTime", strconv.FormatInt(q.BeforeTime, 10))
	}

	var out []KlineBar
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/kline", Query: params}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestPrice returns the most recent price of a symbol. An empty timeframe
// lets the server choose.
func (c *Client) LatestPrice(ctx context.Context, market, symbol, timeframe string) (*PriceQuote, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("symbol", symbol)
	if timeframe != "" {
		params.Set("timeframe", timeframe)
	}

	var out PriceQuote
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/kline/price", Query: params}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchStocks finds A-share stocks by code or name.
func (c *Client) SearchStocks(ctx context.Context, keyword string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("limit", strconv.Itoa(limit))

	var out []SearchResult
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/a-share/search", Query: params}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
