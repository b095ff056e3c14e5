// koduck-cli is the command-line client for the koduck backend. It keeps the
// session token in the local state store so consecutive commands stay logged
// in, and exits with status 2 when the server rejects the session.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"koduck/internal/config"
	"koduck/internal/state"
	"koduck/internal/store"
	"koduck/internal/util"
	"koduck/pkg/envelope"
	"koduck/pkg/koduck"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK           = 0
	exitError        = 1
	exitUnauthorized = 2
)

// app carries everything a command needs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	state   state.Store
	session *state.Session
	client  *koduck.Client
	cache   store.KlineStore
	stdout  io.Writer
	stderr  io.Writer
}

// command runs one subcommand with its own arguments.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "Log in and store the session token", runLogin},
	{"register", "Create an account", runRegister},
	{"logout", "End the session", runLogout},
	{"whoami", "Show the logged-in user", runWhoami},
	{"profile", "Show or update the user profile", runProfile},
	{"passwd", "Change the account password", runPasswd},
	{"watchlist", "List or edit the watchlist (list|add|rm|sort)", runWatchlist},
	{"kline", "Show candlesticks for a symbol", runKline},
	{"price", "Show the latest price of a symbol", runPrice},
	{"search", "Search stocks by keyword", runSearch},
	{"portfolio", "Show positions and totals", runPortfolio},
	{"trades", "List or record trades (list|buy|sell)", runTrades},
	{"overview", "Show user, watchlist and portfolio summary", runOverview},
	{"export-kline", "Download candlesticks into the local cache", runExportKline},
	{"theme", "Show or set the UI theme preference", runTheme},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: koduck-cli [global options] <command> [options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-13s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-13s %s\n", "version", "Print the CLI version")
	fmt.Fprintf(w, "\nGlobal options:\n%s\n", flags.FlagUsages())
}

// run parses global flags, builds the app and dispatches to a command. It
// returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		configPath string
		baseURL    string
		logLevel   string
	)
	flags := pflag.NewFlagSet("koduck-cli", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.StringVar(&configPath, "config", "", "config file (default $KODUCK_CONFIG or <user config dir>/koduck/config.yaml)")
	flags.StringVar(&baseURL, "base-url", "", "backend URL, overrides the config file")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flags.Usage = func() { usage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitError
	}
	rest := flags.Args()
	if len(rest) == 0 {
		usage(stderr, flags)
		return exitError
	}

	name := rest[0]
	if name == "version" {
		fmt.Fprintf(stdout, "koduck-cli %s\n", version)
		return exitOK
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command: %s\n\n", name)
		usage(stderr, flags)
		return exitError
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return exitError
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	a, cleanup, err := newApp(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer cleanup()

	err = cmd.run(ctx, a, rest[1:])
	return a.report(err)
}

// newApp wires config, logger, state store, session, client and cache.
func newApp(cfg *config.Config, stdout, stderr io.Writer) (*app, func(), error) {
	logOut := stderr
	var logFile *os.File
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		logFile, logOut = f, f
	}
	log := util.NewLoggerTo(logOut, cfg.Logging.Level, cfg.Logging.Format)

	st, err := state.Open(cfg.State.Driver, cfg.State.Path, log)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, nil, fmt.Errorf("opening state: %w", err)
	}
	sess := state.NewSession(st)

	client := koduck.New(cfg.API.BaseURL,
		koduck.WithSession(sess),
		koduck.WithTimeout(cfg.API.Timeout),
		koduck.WithLogger(log),
		koduck.WithUserAgent("koduck-cli/"+version),
	)

	a := &app{
		cfg:     cfg,
		log:     log,
		state:   st,
		session: sess,
		client:  client,
		cache:   store.NewParquetStore(cfg.Cache.Dir),
		stdout:  stdout,
		stderr:  stderr,
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn("closing state", "error", err)
		}
		if logFile != nil {
			logFile.Close()
		}
	}
	return a, cleanup, nil
}

// report prints err for the user and maps it to an exit code.
func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	var envErr *envelope.Error
	switch {
	case koduck.IsUnauthorized(err):
		fmt.Fprintln(a.stderr, "session expired, run `koduck-cli login`")
		return exitUnauthorized
	case koduck.IsNetworkError(err):
		fmt.Fprintln(a.stderr, koduck.NetworkMessage)
		a.log.Debug("network error", "error", err)
	case errors.As(err, &envErr):
		fmt.Fprintf(a.stderr, "error: %s\n", envErr.Message)
	default:
		fmt.Fprintf(a.stderr, "error: %v\n", err)
	}
	return exitError
}

// usageError reports a malformed command line.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// newFlags returns a flag set for a subcommand writing errors to a's stderr.
func (a *app) newFlags(name, argsUsage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: koduck-cli %s %s\n", name, strings.TrimSpace(argsUsage))
		if fs.HasFlags() {
			fmt.Fprintf(a.stderr, "\nOptions:\n%s", fs.FlagUsages())
		}
	}
	return fs
}
