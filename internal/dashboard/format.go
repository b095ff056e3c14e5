// Package dashboard provides presentation helpers and aggregation logic for
// the koduck watchlist and portfolio views, used by both the CLI and the TUI.
package dashboard

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	return humanize.Comma(n)
}

// FormatAmount formats a CNY amount or volume with 亿 (1e8) and 万 (1e4)
// suffixes.
func FormatAmount(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e8:
		return fmt.Sprintf("%.2f亿", v/1e8)
	case a >= 1e4:
		return fmt.Sprintf("%.2f万", v/1e4)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// FormatPrice formats a price with two decimals, or "-" for zero or nil.
func FormatPrice(p *float64) string {
	if p == nil || *p == 0 || math.IsNaN(*p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}

// FormatChange formats a percentage (already scaled to 100) as "+X.XX%".
// Nil renders as "-".
func FormatChange(pct *float64) string {
	if pct == nil || math.IsNaN(*pct) {
		return "-"
	}
	if *pct > 0 {
		return fmt.Sprintf("+%.2f%%", *pct)
	}
	return fmt.Sprintf("%.2f%%", *pct)
}

// Direction reports whether v is a gain (1), a loss (-1), or flat (0). Nil
// is flat.
func Direction(v *float64) int {
	switch {
	case v == nil || *v == 0 || math.IsNaN(*v):
		return 0
	case *v > 0:
		return 1
	default:
		return -1
	}
}
