package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/folio/agent"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant about a ledger"
}
func (*assistCmd) Usage() string {
	return `fol assist <ledger.csv> [question...]

  Starts an interactive session with the AI assistant, which knows the report
  of the ledger. The remaining arguments are asked first.

  Requires GOOGLE_API_KEY (or GEMINI_API_KEY) in the environment.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting a ledger file")
		return subcommands.ExitUsageError
	}
	ledgerFile, question := f.Arg(0), strings.Join(f.Args()[1:], " ")

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

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	model := a.cfg.Assist.Model
	trader := agent.NewTrader(model)
	accountant := agent.NewAccountant(model, r, date.Today())
	for _, e := range []*agent.Expert{trader, accountant} {
		e.Logger = a.logger
	}
	assistant := agent.New(os.Stdout, os.Stdin, model, trader, accountant)
	assistant.Facilitator.Logger = a.logger
	assistant.Print = func(_ io.Writer, md string) error {
		printMarkdown(md)
		return nil
	}

	if err := assistant.Run(ctx, client, question); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
