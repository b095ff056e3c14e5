package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"koduck/internal/dashboard"
)

// Styles. Rises are red and falls green, as on A-share quote boards.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(1)
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
)

// printTable renders rows under headers without borders.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(1)
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.String())
}

// colorize renders s in the gain or loss color by the sign of v.
func colorize(s string, v *float64) string {
	switch dashboard.Direction(v) {
	case 1:
		return gainStyle.Render(s)
	case -1:
		return lossStyle.Render(s)
	}
	return s
}

func ptr(f float64) *float64 { return &f }

// field prints one "label: value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label+":"), value)
}
