package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"koduck/internal/dashboard"
	"koduck/internal/util"
	"koduck/pkg/koduck"
)

const defaultMarket = "AShare"

// retryDelay is the first backoff of `price --retry`.
var retryDelay = 500 * time.Millisecond

func runWatchlist(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		fs := a.newFlags("watchlist list", "[options]")
		sortBy := fs.String("sort", a.cfg.Watch.Sort, "custom, change or symbol")
		if err := fs.Parse(args); err != nil {
			return err
		}
		mode, ok := dashboard.ParseSortMode(*sortBy)
		if !ok {
			return usagef("watchlist: unknown sort %q", *sortBy)
		}
		items, err := a.client.Watchlist(ctx)
		if err != nil {
			return err
		}
		dashboard.SortWatchlist(items, mode)
		printWatchlist(a, items)
		return nil

	case "add":
		fs := a.newFlags("watchlist add", "<symbol> [options]")
		market := fs.String("market", defaultMarket, "market")
		name := fs.String("name", "", "display name")
		note := fs.String("note", "", "note")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usagef("usage: koduck-cli watchlist add <symbol> [options]")
		}
		item, err := a.client.AddToWatchlist(ctx, koduck.AddWatchlistRequest{
			Market: *market,
			Symbol: fs.Arg(0),
			Name:   *name,
			Note:   *note,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "added %s (id %d)\n", item.Symbol, item.ID)
		return nil

	case "rm":
		if len(args) != 1 {
			return usagef("usage: koduck-cli watchlist rm <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return usagef("watchlist rm: bad id %q", args[0])
		}
		if err := a.client.RemoveFromWatchlist(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "removed %d\n", id)
		return nil

	case "sort":
		if len(args) != 2 {
			return usagef("usage: koduck-cli watchlist sort <id> <order>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return usagef("watchlist sort: bad id %q", args[0])
		}
		order, err := strconv.Atoi(args[1])
		if err != nil {
			return usagef("watchlist sort: bad order %q", args[1])
		}
		item, err := a.client.UpdateWatchlistSort(ctx, id, order)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s sort order %d\n", item.Symbol, item.SortOrder)
		return nil
	}
	return usagef("watchlist: unknown subcommand %q", sub)
}

func printWatchlist(a *app, items []koduck.WatchlistItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "watchlist is empty")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		note := ""
		if it.Note != nil {
			note = *it.Note
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10),
			it.Symbol,
			it.Name,
			dashboard.FormatPrice(it.Price),
			colorize(dashboard.FormatChange(it.ChangePercent), it.ChangePercent),
			note,
		})
	}
	printTable(a.stdout, []string{"ID", "SYMBOL", "NAME", "PRICE", "CHANGE", "NOTE"}, rows)
}

func runKline(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("kline", "<symbol> [options]")
	market := fs.String("market", defaultMarket, "market")
	timeframe := fs.StringP("timeframe", "t", "1D", "bar size, e.g. 1D, 1W, 60m")
	limit := fs.IntP("limit", "n", 30, "number of bars")
	before := fs.Int64("before", 0, "only bars before this Unix ms time")
	save := fs.Bool("cache", false, "also write the bars to the local cache")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("usage: koduck-cli kline <symbol> [options]")
	}
	symbol := fs.Arg(0)

	bars, err := a.client.Kline(ctx, koduck.KlineQuery{
		Market:     *market,
		Symbol:     symbol,
		Timeframe:  *timeframe,
		Limit:      *limit,
		BeforeTime: *before,
	})
	if err != nil {
		return err
	}
	if *save {
		if err := a.cache.WriteBars(ctx, *market, *timeframe, symbol, bars); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		chg := ptr(b.Close - b.Open)
		rows = append(rows, []string{
			b.Time().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", b.Open),
			fmt.Sprintf("%.2f", b.High),
			fmt.Sprintf("%.2f", b.Low),
			colorize(fmt.Sprintf("%.2f", b.Close), chg),
			dashboard.FormatAmount(b.Volume),
		})
	}
	printTable(a.stdout, []string{"TIME", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME"}, rows)
	return nil
}

func runPrice(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("price", "<symbol> [options]")
	market := fs.String("market", defaultMarket, "market")
	timeframe := fs.StringP("timeframe", "t", "", "bar size the price is taken from")
	retries := fs.Int("retry", 0, "retry this many times when the server is unreachable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("usage: koduck-cli price <symbol> [options]")
	}

	// The client makes one attempt per call; retrying is the caller's choice.
	var q *koduck.PriceQuote
	err := util.RetryIf(ctx, *retries+1, retryDelay, koduck.IsNetworkError, func() error {
		var err error
		q, err = a.client.LatestPrice(ctx, *market, fs.Arg(0), *timeframe)
		if err != nil && koduck.IsNetworkError(err) {
			a.log.Info("price lookup failed", "symbol", fs.Arg(0), "error", err)
		}
		return err
	})
	if err != nil {
		return err
	}
	at := ""
	if q.Timestamp > 0 {
		at = time.UnixMilli(q.Timestamp).Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(a.stdout, "%s %s %s\n", q.Symbol, dashboard.FormatPrice(&q.Price), at)
	return nil
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("search", "<keyword> [options]")
	limit := fs.IntP("limit", "n", 20, "maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("usage: koduck-cli search <keyword> [options]")
	}
	results, err := a.client.SearchStocks(ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.stdout, "no matches")
		return nil
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Symbol, r.Name, r.Market})
	}
	printTable(a.stdout, []string{"SYMBOL", "NAME", "MARKET"}, rows)
	return nil
}

// runExportKline pages backwards through history for each symbol until it
// reaches bars already cached, or runs out of pages.
func runExportKline(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("export-kline", "<symbol>... [options]")
	market := fs.String("market", defaultMarket, "market")
	timeframe := fs.StringP("timeframe", "t", "1D", "bar size")
	pageSize := fs.Int("page-size", 500, "bars per request")
	maxPages := fs.Int("pages", 10, "maximum requests per symbol")
	perMin := fs.Int("rate", 120, "maximum requests per minute, 0 for no limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usagef("usage: koduck-cli export-kline <symbol>... [options]")
	}

	limiter := util.NewRateLimiter(*perMin)
	for _, symbol := range fs.Args() {
		n, err := exportSymbol(ctx, a, limiter, *market, *timeframe, symbol, *pageSize, *maxPages)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", symbol, err)
		}
		fmt.Fprintf(a.stdout, "%s: %s bars\n", symbol, dashboard.FormatInt(int64(n)))
	}
	return nil
}

func exportSymbol(ctx context.Context, a *app, limiter *util.RateLimiter, market, timeframe, symbol string, pageSize, maxPages int) (int, error) {
	latest, err := a.cache.LatestTimestamp(ctx, market, timeframe, symbol)
	if err != nil {
		return 0, err
	}

	total := 0
	var before int64
	for page := 0; page < maxPages; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return total, err
		}
		bars, err := a.client.Kline(ctx, koduck.KlineQuery{
			Market:     market,
			Symbol:     symbol,
			Timeframe:  timeframe,
			Limit:      pageSize,
			BeforeTime: before,
		})
		if err != nil {
			return total, err
		}
		if len(bars) == 0 {
			break
		}
		if err := a.cache.WriteBars(ctx, market, timeframe, symbol, bars); err != nil {
			return total, err
		}
		total += len(bars)

		oldest := bars[0].Timestamp
		for _, b := range bars {
			if b.Timestamp < oldest {
				oldest = b.Timestamp
			}
		}
		a.log.Debug("exported kline page", "symbol", symbol, "page", page, "bars", len(bars), "oldest", oldest)
		if len(bars) < pageSize || (!latest.IsZero() && oldest <= latest.UnixMilli()) {
			break
		}
		before = oldest
	}
	return total, nil
}
