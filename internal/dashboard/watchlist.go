package dashboard

import (
	"math"
	"sort"
	"strings"

	"koduck/pkg/koduck"
)

// Watchlist sort modes, cycled by the TUI.
const (
	SortCustom    = 0 // user-defined sort order (asc)
	SortChange    = 1 // change percent (desc), unquoted last
	SortSymbol    = 2 // symbol (asc)
	SortModeCount = 3
)

// SortModeLabel returns a short label for the given sort mode.
func SortModeLabel(mode int) string {
	switch mode {
	case SortCustom:
		return "CUSTOM"
	case SortChange:
		return "CHANGE"
	case SortSymbol:
		return "SYMBOL"
	default:
		return "?"
	}
}

// ParseSortMode maps "custom", "change" or "symbol" to a sort mode.
func ParseSortMode(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "", "custom":
		return SortCustom, true
	case "change":
		return SortChange, true
	case "symbol":
		return SortSymbol, true
	}
	return SortCustom, false
}

// ChangePercent returns the percentage move from prevClose to price, or nil
// when prevClose is not positive.
func ChangePercent(price, prevClose float64) *float64 {
	if prevClose <= 0 {
		return nil
	}
	pct := (price - prevClose) / prevClose * 100
	return &pct
}

// SortWatchlist sorts items in place by mode. Ties fall back to symbol so
// the order is stable across refreshes.
func SortWatchlist(items []koduck.WatchlistItem, mode int) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		switch mode {
		case SortChange:
			ca, cb := changeKey(a), changeKey(b)
			if ca != cb {
				return ca > cb
			}
		case SortCustom:
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
		}
		return a.Symbol < b.Symbol
	})
}

func changeKey(it *koduck.WatchlistItem) float64 {
	if it.ChangePercent == nil {
		return math.Inf(-1)
	}
	return *it.ChangePercent
}
