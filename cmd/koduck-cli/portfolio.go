package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"koduck/internal/dashboard"
	"koduck/pkg/koduck"
)

func runPortfolio(ctx context.Context, a *app, args []string) error {
	items, err := a.client.Portfolio(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "no positions")
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Symbol,
			it.Name,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			fmt.Sprintf("%.2f", it.AvgCost),
			dashboard.FormatPrice(&it.CurrentPrice),
			dashboard.FormatAmount(it.MarketValue),
			colorize(fmt.Sprintf("%.2f", it.Pnl), ptr(it.Pnl)),
			colorize(dashboard.FormatChange(ptr(it.PnlPercent)), ptr(it.PnlPercent)),
		})
	}
	printTable(a.stdout, []string{"SYMBOL", "NAME", "QTY", "COST", "PRICE", "VALUE", "P&L", "P&L%"}, rows)

	s := dashboard.Summarize(items)
	printSummary(a, &s)
	return nil
}

func printSummary(a *app, s *koduck.PortfolioSummary) {
	field(a.stdout, "cost", dashboard.FormatAmount(s.TotalCost))
	field(a.stdout, "value", dashboard.FormatAmount(s.TotalMarketValue))
	field(a.stdout, "p&l", colorize(
		fmt.Sprintf("%s (%s)", dashboard.FormatAmount(s.TotalPnl), dashboard.FormatChange(&s.TotalPnlPercent)),
		&s.TotalPnl))
}

func runTrades(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		records, err := a.client.TradeRecords(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(a.stdout, "no trades")
			return nil
		}
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, []string{
				r.TradeTime,
				r.Type,
				r.Symbol,
				r.Name,
				strconv.FormatFloat(r.Quantity, 'f', -1, 64),
				fmt.Sprintf("%.2f", r.Price),
				dashboard.FormatAmount(r.Amount),
			})
		}
		printTable(a.stdout, []string{"TIME", "SIDE", "SYMBOL", "NAME", "QTY", "PRICE", "AMOUNT"}, rows)
		return nil

	case "buy", "sell":
		fs := a.newFlags("trades "+sub, "<symbol> [options]")
		market := fs.String("market", defaultMarket, "market")
		name := fs.String("name", "", "display name")
		qty := fs.Float64("qty", 0, "quantity")
		price := fs.Float64("price", 0, "price per share")
		at := fs.String("at", "", "trade time, RFC 3339 (default now on the server)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usagef("usage: koduck-cli trades %s <symbol> --qty N --price P", sub)
		}
		req := koduck.AddTradeRequest{
			Market:   *market,
			Symbol:   fs.Arg(0),
			Name:     *name,
			Type:     strings.ToUpper(sub),
			Quantity: *qty,
			Price:    *price,
		}
		if *at != "" {
			t, err := time.Parse(time.RFC3339, *at)
			if err != nil {
				return usagef("trades: bad --at: %v", err)
			}
			req.TradeTime = &t
		}
		rec, err := a.client.AddTrade(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "recorded %s %s x%s @ %.2f (id %d)\n",
			rec.Type, rec.Symbol, strconv.FormatFloat(rec.Quantity, 'f', -1, 64), rec.Price, rec.ID)
		return nil
	}
	return usagef("trades: unknown subcommand %q", sub)
}

func runOverview(ctx context.Context, a *app, args []string) error {
	mode, _ := dashboard.ParseSortMode(a.cfg.Watch.Sort)
	ov, err := dashboard.LoadOverview(ctx, a.client, mode)
	if err != nil {
		return err
	}
	field(a.stdout, "user", ov.User.Username)
	printSummary(a, ov.Summary)
	field(a.stdout, "daily p&l", colorize(
		fmt.Sprintf("%s (%s)", dashboard.FormatAmount(ov.Summary.DailyPnl), dashboard.FormatChange(&ov.Summary.DailyPnlPercent)),
		&ov.Summary.DailyPnl))
	fmt.Fprintln(a.stdout)
	printWatchlist(a, ov.Watchlist)
	return nil
}
