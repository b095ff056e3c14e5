// koduck-watch is a terminal watchlist viewer for the koduck backend. It uses
// the session stored by koduck-cli and refreshes quotes on a timer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"koduck/internal/config"
	"koduck/internal/dashboard"
	"koduck/internal/state"
	"koduck/internal/util"
	"koduck/pkg/koduck"
)

// closedRefresh is the refresh interval while the market is closed.
const closedRefresh = time.Minute

// Styles. Rises are red and falls green, as on A-share quote boards.
var (
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// headerStyle returns the title bar style for the stored theme.
func headerStyle(theme string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if theme == "dark" {
		return s.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("236"))
	}
	return s.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
}

// source is the slice of the API the viewer polls.
type source interface {
	Watchlist(ctx context.Context) ([]koduck.WatchlistItem, error)
}

// Messages.
type tickMsg time.Time

type loadedMsg struct {
	items []koduck.WatchlistItem
	err   error
	at    time.Time
}

// stateMsg carries a change to the persisted client state.
type stateMsg state.Event

// loginHint is shown once the session is gone.
const loginHint = "session expired, run `koduck-cli login`"

// Model.
type model struct {
	src      source
	cal      *util.TradingCalendar
	refresh  time.Duration
	timeout  time.Duration
	theme    string
	logger   *slog.Logger
	now      func() time.Time
	sortMode int
	events   <-chan state.Event // nil when the store publishes no events

	items        []koduck.WatchlistItem
	lastUpdate   time.Time
	loading      bool
	status       string // last error, shown in the footer
	unauthorized bool   // session rejected; polling stopped

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(src source, refresh, timeout time.Duration, sortMode int, theme string, logger *slog.Logger) model {
	return model{
		src:      src,
		cal:      util.NewTradingCalendar(),
		refresh:  refresh,
		timeout:  timeout,
		theme:    theme,
		logger:   logger,
		now:      time.Now,
		sortMode: sortMode,
		loading:  true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tickCmd(), waitEvent(m.events))
}

// waitEvent blocks for the next state change. It returns nil once the
// subscription is closed, or when there is none.
func waitEvent(ch <-chan state.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(e)
	}
}

// interval returns the refresh period, slowed down outside trading hours.
func (m model) interval() time.Duration {
	if !m.cal.IsMarketOpen(m.now()) && m.refresh < closedRefresh {
		return closedRefresh
	}
	return m.refresh
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) fetchCmd() tea.Cmd {
	src, timeout := m.src, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := src.Watchlist(ctx)
		return loadedMsg{items: items, err: err, at: time.Now()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.sortMode = (m.sortMode + 1) % dashboard.SortModeCount
			dashboard.SortWatchlist(m.items, m.sortMode)
			m.setContent()
			return m, nil
		case "r":
			if m.unauthorized || m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2 // header + footer
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.setContent()
		return m, nil

	case tickMsg:
		if m.unauthorized {
			return m, nil
		}
		if m.loading {
			return m, m.tickCmd()
		}
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case stateMsg:
		switch msg.Type {
		case state.EventDelete:
			if slices.Contains(msg.Keys, state.KeyToken) && !m.unauthorized {
				m.unauthorized = true
				m.status = loginHint
				m.logger.Info("session cleared, polling stopped")
			}
		case state.EventSet:
			if msg.Key == state.KeyTheme {
				m.theme = msg.Value
			}
		}
		m.setContent()
		return m, waitEvent(m.events)

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			switch {
			case koduck.IsUnauthorized(msg.err):
				m.unauthorized = true
				m.status = loginHint
			case koduck.IsNetworkError(msg.err):
				m.status = koduck.NetworkMessage
			default:
				m.status = msg.err.Error()
			}
			m.logger.Warn("watchlist refresh failed", "error", msg.err)
			m.setContent()
			return m, nil
		}
		m.status = ""
		m.items = msg.items
		m.lastUpdate = msg.at
		dashboard.SortWatchlist(m.items, m.sortMode)
		m.logger.Debug("watchlist refreshed", "items", len(m.items))
		m.setContent()
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *model) setContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerBar := headerStyle(m.theme).Render(padOrTrunc(m.headerText(), m.width))

	footerLeft := " q quit  s sort  r refresh  pgup/dn scroll"
	footerRight := ""
	if m.loading {
		footerRight = "refreshing... "
	}
	if m.status != "" {
		footerRight = m.status + " "
	}
	gap := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	if m.unauthorized {
		footerStyle = footerStyle.Background(lipgloss.Color("1"))
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

// headerText lays out the title bar. The update age is dropped first when
// the terminal is too narrow, so the sort mode stays visible.
func (m model) headerText() string {
	market := "closed"
	if m.cal.IsMarketOpen(m.now()) {
		market = "open"
	}
	head := fmt.Sprintf(" koduck watchlist    %d symbols    market: %s    sort: %s",
		len(m.items), market, dashboard.SortModeLabel(m.sortMode))
	if m.lastUpdate.IsZero() {
		return head + "    updated: - "
	}
	clock := m.lastUpdate.Format("15:04:05")
	full := head + "    updated: " + clock + " (" + humanize.RelTime(m.lastUpdate, m.now(), "ago", "from now") + ") "
	if lipgloss.Width(full) <= m.width {
		return full
	}
	return head + "    updated: " + clock + " "
}

// Column widths.
const (
	colSymbol = 8
	colName   = 12
	colPrice  = 10
	colChange = 9
)

func (m model) renderContent() string {
	var b strings.Builder
	if m.unauthorized {
		b.WriteString(errStyle.Render("  " + koduck.UnauthorizedMessage + ", run `koduck-cli login` and restart"))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.items) == 0 {
		if m.loading {
			b.WriteString(dimStyle.Render("  Loading..."))
		} else {
			b.WriteString(dimStyle.Render("  watchlist is empty, add symbols with `koduck-cli watchlist add`"))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-*s %-*s %*s %*s  %s",
		colSymbol, "SYMBOL", colName, "NAME", colPrice, "PRICE", colChange, "CHANGE", "NOTE")))
	b.WriteString("\n")
	for _, it := range m.items {
		b.WriteString("  ")
		b.WriteString(symbolStyle.Render(padOrTrunc(it.Symbol, colSymbol)))
		b.WriteString(" ")
		b.WriteString(padOrTrunc(it.Name, colName))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("%*s", colPrice, dashboard.FormatPrice(it.Price)))
		b.WriteString(" ")
		chg := fmt.Sprintf("%*s", colChange, dashboard.FormatChange(it.ChangePercent))
		switch dashboard.Direction(it.ChangePercent) {
		case 1:
			chg = gainStyle.Render(chg)
		case -1:
			chg = lossStyle.Render(chg)
		}
		b.WriteString(chg)
		if it.Note != nil && *it.Note != "" {
			b.WriteString("  ")
			b.WriteString(dimStyle.Render(*it.Note))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// padOrTrunc pads or truncates s to exactly width terminal cells.
func padOrTrunc(s string, width int) string {
	w := lipgloss.Width(s)
	if w == width {
		return s
	}
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > width {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + strings.Repeat(" ", width-used)
}

func main() {
	var configPath, baseURL string
	flags := pflag.NewFlagSet("koduck-watch", pflag.ExitOnError)
	flags.StringVar(&configPath, "config", "", "config file")
	flags.StringVar(&baseURL, "base-url", "", "backend URL, overrides the config file")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), fmt.Sprintf("koduck-watch-%s.log", time.Now().Format("2006-01-02")))
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLoggerTo(logFile, cfg.Logging.Level, "text")

	st, err := state.Open(cfg.State.Driver, cfg.State.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening state: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	sess := state.NewSession(st)
	if _, ok := sess.Token(); !ok {
		fmt.Fprintln(os.Stderr, "not logged in, run `koduck-cli login`")
		os.Exit(2)
	}
	theme, _ := st.Get(state.KeyTheme)

	client := koduck.New(cfg.API.BaseURL,
		koduck.WithSession(sess),
		koduck.WithTimeout(cfg.API.Timeout),
		koduck.WithLogger(logger),
		koduck.WithUserAgent("koduck-watch"),
	)

	sortMode, ok := dashboard.ParseSortMode(cfg.Watch.Sort)
	if !ok {
		logger.Warn("unknown sort mode in config", "sort", cfg.Watch.Sort)
	}
	logger.Info("starting watch", "base_url", cfg.API.BaseURL, "refresh", cfg.Watch.Refresh)

	m := initialModel(client, cfg.Watch.Refresh, cfg.API.Timeout, sortMode, theme, logger)
	if n, ok := st.(state.Notifier); ok {
		id, ch := n.Subscribe(16)
		defer n.Unsubscribe(id)
		m.events = ch
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
