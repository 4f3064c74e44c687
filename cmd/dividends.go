package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// dividendsCmd holds the flags for the 'dividends' subcommand.
type dividendsCmd struct {
	json bool
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "estimate the dividends earned by the open positions" }
func (*dividendsCmd) Usage() string {
	return `fol dividends [-json] <ledger.csv>

  Replays the shares held over time and matches them against every dividend
  paid, and compares with the dividends the ledger records as received.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the full report as JSON.")
}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledgerFile, ok := ledgerArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	market, err := a.newMarketData()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating market data provider: %v\n", err)
		return subcommands.ExitFailure
	}
	defer market.Close()

	r, err := a.newReport(ctx, ledgerFile, market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing dividends: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		if err := renderer.WriteJSON(os.Stdout, r); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing dividends: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderDividends(r))
	return subcommands.ExitSuccess
}
