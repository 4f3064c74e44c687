package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/gateway"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	format      string
	output      string
	record      string
	currency    string
	noDividends bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "value the open positions of a ledger" }
func (*reportCmd) Usage() string {
	return `fol report [-format md|html|json] [-o <file>] [-record <market.json>] <ledger.csv>

  Reads the broker's transaction export, aggregates the open positions, values
  them at the current market price and estimates the dividends they earned.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "md", "Output format: md, html or json.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
	f.StringVar(&c.record, "record", "", "Record the market data used into this file, to replay it with the offline provider.")
	f.StringVar(&c.currency, "currency", "", "Reporting currency. Overrides the configuration.")
	f.BoolVar(&c.noDividends, "no-dividends", false, "Omit the dividends section.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	switch c.format {
	case "md", "html", "json":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	ledgerFile, ok := ledgerArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.currency != "" {
		a.cfg.Currency = c.currency
	}
	cache, err := a.newMarketData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating market data provider: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cache.Close()

	var market folio.MarketData = cache
	var recorder *gateway.Recorder
	if c.record != "" {
		recorder = gateway.NewRecorder(cache)
		market = recorder
	}

	r, err := a.newReport(ctx, ledgerFile, market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing report: %v\n", err)
		return subcommands.ExitFailure
	}

	if recorder != nil {
		if err := writeSnapshot(c.record, recorder.Snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording market data: %v\n", err)
			return subcommands.ExitFailure
		}
		a.logger.Info().Str("file", c.record).Msg("market data recorded")
	}

	if err := c.write(r); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) write(r *folio.Report) error {
	opts := renderer.Options{Date: date.Today(), SkipDividends: c.noDividends}
	if c.format == "md" && c.output == "" {
		printMarkdown(renderer.RenderReport(r, opts))
		return nil
	}

	w, err := create(c.output)
	if err != nil {
		return err
	}
	switch c.format {
	case "json":
		err = renderer.WriteJSON(w, r)
	case "html":
		err = renderer.ToHTML(w, "Portfolio on "+opts.Date.String(), renderer.RenderReport(r, opts))
	default:
		_, err = fmt.Fprint(w, renderer.RenderReport(r, opts))
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeSnapshot(name string, snapshot *gateway.Frozen) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := snapshot.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
