package koduck

import (
	"context"
	"fmt"
	"net/http"
)

// Watchlist returns the user's watched symbols.
func (c *Client) Watchlist(ctx context.Context) ([]WatchlistItem, error) {
	var out []WatchlistItem
	if err := c.call(ctx, &Request{Method: http.MethodGet, Path: "/api/v1/watchlist"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToWatchlist adds a symbol and returns the stored item.
func (c *Client) AddToWatchlist(ctx context.Context, req AddWatchlistRequest) (*WatchlistItem, error) {
	var out WatchlistItem
	if err := c.call(ctx, &Request{Method: http.MethodPost, Path: "/api/v1/watchlist", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFromWatchlist deletes the item with the given id.
func (c *Client) RemoveFromWatchlist(ctx context.Context, id int64) error {
	return c.call(ctx, &Request{Method: http.MethodDelete, Path: fmt.Sprintf("/api/v1/watchlist/%d", id)}, nil)
}

// UpdateWatchlistSort moves an item to a new sort position.
func (c *Client) UpdateWatchlistSort(ctx context.Context, id int64, sortOrder int) (*WatchlistItem, error) {
	body := map[string]any{"sortOrder": sortOrder}
	var out WatchlistItem
	path := fmt.Sprintf("/api/v1/watchlist/%d/sort", id)
	if err := c.call(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
