// Package store defines the local cache for market data fetched from the
// koduck backend.
package store

import (
	"context"
	"time"

	"koduck/pkg/koduck"
)

// KlineStore persists and retrieves candlesticks per market, timeframe and
// symbol.
type KlineStore interface {
	// WriteBars merges bars into the cache. A bar with an existing timestamp
	// replaces the cached one.
	WriteBars(ctx context.Context, market, timeframe, symbol string, bars []koduck.KlineBar) error

	// ReadBars returns cached bars within [start, end], oldest first. A zero
	// start or end leaves that side open.
	ReadBars(ctx context.Context, market, timeframe, symbol string, start, end time.Time) ([]koduck.KlineBar, error)

	// LatestTimestamp returns the newest cached bar time, or zero when the
	// symbol has no cache.
	LatestTimestamp(ctx context.Context, market, timeframe, symbol string) (time.Time, error)

	// ListSymbols returns all cached symbols for market and timeframe.
	ListSymbols(ctx context.Context, market, timeframe string) ([]string, error)
}
