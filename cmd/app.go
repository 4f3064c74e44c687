// Package cmd implements the fol command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/eodhd"
	"github.com/etnz/folio/gateway"
	"github.com/etnz/folio/yahoo"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands() {
		c.Register(cmd.Command, cmd.group)
	}
}

type groupedCommand struct {
	subcommands.Command
	group string
}

func commands() []groupedCommand {
	return []groupedCommand{
		{&reportCmd{}, "reports"},
		{&dividendsCmd{}, "reports"},
		{&chartCmd{}, "reports"},
		{&tickersCmd{}, "market"},
		{&assistCmd{}, "assistant"},
		{&topicCmd{}, "help"},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file. Defaults to "+config.DefaultFile+" if it exists.")

// cacheTTL is how long market data answers are kept in memory during a run.
const cacheTTL = 10 * time.Minute

// app is what every command needs: the configuration and a logger.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// newApp loads the configuration and creates the logger, on stderr.
func newApp() (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: newLogger(os.Stderr, cfg.GetLogLevel())}, nil
}

// newLogger returns a console logger tagged with a run id.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()[:8]).
		Logger()
}

// newMarketData returns the configured market data provider, behind an
// in-memory cache.
func (a *app) newMarketData() (*gateway.Cache, error) {
	var market folio.MarketData
	switch a.cfg.Provider {
	case config.Yahoo:
		market = yahoo.NewClient(
			yahoo.WithBaseURL(a.cfg.Yahoo.BaseURL),
			yahoo.WithLogger(a.logger),
			yahoo.WithRetries(a.cfg.Yahoo.Retries, yahoo.DefaultBackoff),
		)
	case config.EODHD:
		if a.cfg.EODHD.APIKey == "" {
			return nil, errors.New("missing EODHD API key, set EODHD_API_KEY")
		}
		opts := []eodhd.Option{
			eodhd.WithBaseURL(a.cfg.EODHD.BaseURL),
			eodhd.WithLogger(a.logger),
			eodhd.WithRateLimit(a.cfg.EODHD.RateLimit),
		}
		if a.cfg.EODHD.Cache {
			dir, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("cannot locate the cache directory: %w", err)
			}
			opts = append(opts, eodhd.WithDailyCache(dir))
		}
		market = eodhd.NewClient(a.cfg.EODHD.APIKey, opts...)
	case config.Offline:
		frozen, err := gateway.LoadFrozen(a.cfg.Offline.MarketFile)
		if err != nil {
			return nil, fmt.Errorf("cannot load offline market data: %w", err)
		}
		market = frozen
	default:
		return nil, fmt.Errorf("unknown provider %q", a.cfg.Provider)
	}
	return gateway.NewCache(market, 1024, cacheTTL)
}

// readLedger decodes the transactions of the ledger file name.
func (a *app) readLedger(name string) ([]folio.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := a.cfg.Normalizer(a.logger.With().Str("ledger", name).Logger()).Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return txs, nil
}

// newReport reads the ledger and computes its report using market.
func (a *app) newReport(ctx context.Context, ledgerFile string, market folio.MarketData) (*folio.Report, error) {
	txs, err := a.readLedger(ledgerFile)
	if err != nil {
		return nil, err
	}
	tracker, err := folio.NewTracker(txs, a.cfg.TickerTable(), market, a.cfg.Currency,
		folio.WithLogger(a.logger),
		folio.WithConcurrency(a.cfg.Concurrency),
		folio.WithTimeout(a.cfg.GetTimeout()),
	)
	if err != nil {
		return nil, err
	}
	r, err := tracker.NewReport(ctx)
	if err != nil {
		return nil, err
	}
	for _, product := range r.Unmapped() {
		a.logger.Warn().Str("product", product).Msg("no ticker mapping, add it to the [tickers] section")
	}
	return r, nil
}

// ledgerArg returns the single ledger file argument of f.
func ledgerArg(f *flag.FlagSet) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting exactly one ledger file")
		return "", false
	}
	return f.Arg(0), true
}

// printMarkdown prints md to stdout, styled for the terminal when possible.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// create opens name for writing, "-" or "" is stdout.
func create(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
