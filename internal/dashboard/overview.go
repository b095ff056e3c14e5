package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"koduck/pkg/koduck"
)

// Summarize aggregates positions into portfolio totals. Daily P&L is not
// derivable from positions and is left zero.
func Summarize(items []koduck.PortfolioItem) koduck.PortfolioSummary {
	var s koduck.PortfolioSummary
	for _, it := range items {
		cost := it.Quantity * it.AvgCost
		mv := it.MarketValue
		if mv == 0 {
			mv = it.Quantity * it.CurrentPrice
		}
		s.TotalCost += cost
		s.TotalMarketValue += mv
	}
	s.TotalPnl = s.TotalMarketValue - s.TotalCost
	if s.TotalCost > 0 {
		s.TotalPnlPercent = s.TotalPnl / s.TotalCost * 100
	}
	return s
}

// Source is the slice of the API an overview needs. *koduck.Client
// satisfies it.
type Source interface {
	UserInfo(ctx context.Context) (*koduck.UserInfo, error)
	Watchlist(ctx context.Context) ([]koduck.WatchlistItem, error)
	PortfolioSummary(ctx context.Context) (*koduck.PortfolioSummary, error)
}

var _ Source = (*koduck.Client)(nil)

// Overview is everything the dashboard home view shows.
type Overview struct {
	User      *koduck.UserInfo
	Watchlist []koduck.WatchlistItem
	Summary   *koduck.PortfolioSummary
}

// LoadOverview fetches the user, watchlist and portfolio summary
// concurrently. The first failure cancels the remaining fetches and is
// returned. The watchlist is sorted by mode.
func LoadOverview(ctx context.Context, src Source, mode int) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := src.UserInfo(ctx)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		ov.User = u
		return nil
	})
	g.Go(func() error {
		items, err := src.Watchlist(ctx)
		if err != nil {
			return fmt.Errorf("loading watchlist: %w", err)
		}
		SortWatchlist(items, mode)
		ov.Watchlist = items
		return nil
	})
	g.Go(func() error {
		s, err := src.PortfolioSummary(ctx)
		if err != nil {
			return fmt.Errorf("loading portfolio summary: %w", err)
		}
		ov.Summary = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}
