package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/chart"
	"github.com/google/subcommands"
)

// chartCmd holds the flags for the 'chart' subcommand.
type chartCmd struct {
	output string
	width  int
	height int
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the allocation of the portfolio as a pie chart" }
func (*chartCmd) Usage() string {
	return `fol chart [-o allocation.png] [-width 800] [-height 800] <ledger.csv>

  Draws the share of each valued position in the portfolio, as a PNG image.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "allocation.png", "Output PNG file.")
	f.IntVar(&c.width, "width", 800, "Width of the image in pixels.")
	f.IntVar(&c.height, "height", 800, "Height of the image in pixels.")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledgerFile, ok := ledgerArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	if c.width <= 0 || c.height <= 0 {
		fmt.Fprintln(os.Stderr, "Error: width and height must be positive")
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
		fmt.Fprintf(os.Stderr, "Error computing report: %v\n", err)
		return subcommands.ExitFailure
	}
	png, err := chart.RenderAllocation(r, c.width, c.height)
	if errors.Is(err, chart.ErrNothingToDraw) {
		fmt.Fprintln(os.Stderr, "No valued position to draw.")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error drawing chart: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.output, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Allocation chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
