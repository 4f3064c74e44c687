package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/eodhd"
	"github.com/etnz/folio/ledger"
	"github.com/google/subcommands"
)

// tickersCmd holds the flags for the 'tickers' subcommand.
type tickersCmd struct {
	search string
}

func (*tickersCmd) Name() string     { return "tickers" }
func (*tickersCmd) Synopsis() string { return "list the product to ticker mapping" }
func (*tickersCmd) Usage() string {
	return `fol tickers [-search <term>] [<ledger.csv>]

  Lists the product names mapped to a market ticker. With a ledger, lists the
  products of the open positions instead, and whether they are mapped.

  With -search, looks up tickers matching a name or an ISIN on EODHD.
`
}

func (c *tickersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Search EODHD for tickers matching this name or ISIN.")
}

func (c *tickersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting at most one ledger file")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.search != "" {
		if a.cfg.EODHD.APIKey == "" {
			fmt.Fprintln(os.Stderr, "Error: searching requires an EODHD API key, set EODHD_API_KEY")
			return subcommands.ExitFailure
		}
		client := eodhd.NewClient(a.cfg.EODHD.APIKey,
			eodhd.WithBaseURL(a.cfg.EODHD.BaseURL),
			eodhd.WithLogger(a.logger),
		)
		results, err := client.Search(ctx, c.search)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error searching %q: %v\n", c.search, err)
			return subcommands.ExitFailure
		}
		printMarkdown(searchMarkdown(c.search, results))
		return subcommands.ExitSuccess
	}

	var positions []folio.Position
	if f.NArg() == 1 {
		txs, err := a.readLedger(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		positions = folio.Aggregate(txs, a.cfg.TickerTable())
	}
	printMarkdown(tickersMarkdown(a.cfg.TickerTable(), positions))
	return subcommands.ExitSuccess
}

// tickersMarkdown lists the mapping of table, or of positions when not nil.
func tickersMarkdown(table folio.TickerTable, positions []folio.Position) string {
	var b strings.Builder
	if positions == nil {
		b.WriteString("# Tickers\n\n| Product | Ticker |\n|:---|:---|\n")
		for product, ticker := range table.All() {
			if ticker == "" {
				ticker = "-"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", product, ticker)
		}
		return b.String()
	}

	b.WriteString("# Tickers\n\n| Product | " + ledger.ISIN + " | Ticker |\n|:---|:---|:---|\n")
	var unmapped int
	for _, p := range positions {
		ticker := p.Ticker
		if !p.HasTicker() {
			ticker = "-"
			unmapped++
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Product, p.ISIN, ticker)
	}
	if unmapped > 0 {
		fmt.Fprintf(&b, "\n%d product(s) without ticker, add them to the [tickers] section of the configuration.\n", unmapped)
	}
	return b.String()
}

func searchMarkdown(term string, results []eodhd.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search %q\n\n", term)
	if len(results) == 0 {
		b.WriteString("No result.\n")
		return b.String()
	}
	b.WriteString("| Ticker | Name | Type | ISIN | Currency |\n|:---|:---|:---|:---|:---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.Ticker(), r.Name, r.Type, r.ISIN, r.Currency)
	}
	return b.String()
}
