package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/eodhd"
	"github.com/etnz/folio/gateway"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLedger = "Date,Product,ISIN,Quantity,Price,Local_Value,Fees,Total\n" +
	"02-01-2023,ASML HOLDING,NL0010273215,10,100.00,-1000.00,-1.00,-1001.00\n" +
	"03-07-2023,MYSTERY FUND,IE00BK5BQT80,3,100.00,-300.00,-2.00,-302.00\n"

const testMarket = `{
  "prices": {"ASML.AS": 110},
  "dividends": {"ASML.AS": [{"date": "2023-06-01", "amount": 0.5}]}
}`

// setup writes a ledger, an offline market and a configuration using them in
// a temporary working directory, and returns the ledger path.
func setup(t *testing.T) string {
	dir := t.TempDir()
	t.Chdir(dir)
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}
	ledgerFile := write("ledger.csv", testLedger)
	write("market.json", testMarket)
	cfg := write("test.toml", "currency = \"EUR\"\nprovider = \"offline\"\nlog_level = \"error\"\n\n[offline]\nmarket_file = \"market.json\"\n")

	old := *configFile
	*configFile = cfg
	t.Cleanup(func() { *configFile = old })
	return ledgerFile
}

func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c.Execute(context.Background(), fs)
}

func TestNewMarketData(t *testing.T) {
	setup(t)

	a := &app{cfg: config.Default(), logger: zerolog.Nop()}
	a.cfg.Provider = config.Offline
	market, err := a.newMarketData()
	require.NoError(t, err)
	defer market.Close()
	price, err := market.CurrentPrice(context.Background(), "ASML.AS")
	require.NoError(t, err)
	assert.Equal(t, "110", price.String())

	a.cfg.Provider = config.EODHD
	_, err = a.newMarketData()
	assert.ErrorContains(t, err, "missing EODHD API key")

	a.cfg.EODHD.APIKey = "demo"
	market, err = a.newMarketData()
	require.NoError(t, err)
	market.Close()

	a.cfg.Provider = config.Offline
	a.cfg.Offline.MarketFile = "missing.json"
	_, err = a.newMarketData()
	assert.ErrorIs(t, err, os.ErrNotExist)

	a.cfg.Provider = "bloomberg"
	_, err = a.newMarketData()
	assert.ErrorContains(t, err, `unknown provider "bloomberg"`)
}

func TestNewReport(t *testing.T) {
	ledgerFile := setup(t)
	a, err := newApp()
	require.NoError(t, err)
	assert.Equal(t, config.Offline, a.cfg.Provider)

	market, err := a.newMarketData()
	require.NoError(t, err)
	defer market.Close()

	r, err := a.newReport(context.Background(), ledgerFile, market)
	require.NoError(t, err)
	require.Len(t, r.Positions, 2)
	assert.Equal(t, "1100.00", r.TotalValue.Format(2))
	assert.Equal(t, "99.00", r.TotalGain.Format(2))
	assert.Equal(t, "5.00", r.EstimatedDividends.Format(2))
	assert.Equal(t, []string{"MYSTERY FUND"}, r.Unmapped())
}

func TestNewReportMissingLedger(t *testing.T) {
	setup(t)
	a, err := newApp()
	require.NoError(t, err)
	_, err = a.newReport(context.Background(), "nope.csv", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReportCmd(t *testing.T) {
	ledgerFile := setup(t)
	out := filepath.Join(t.TempDir(), "report.json")
	record := filepath.Join(t.TempDir(), "recorded.json")

	status := execute(t, &reportCmd{}, "-format", "json", "-o", out, "-record", record, ledgerFile)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var r map[string]any
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "EUR", r["currency"])
	assert.Equal(t, 1100.0, r["total_value"])
	assert.Equal(t, 5.0, r["estimated_dividends"])

	snapshot, err := gateway.LoadFrozen(record)
	require.NoError(t, err)
	assert.Equal(t, []string{"ASML.AS"}, snapshot.Tickers())
	assert.Equal(t, "110", snapshot.Prices["ASML.AS"].String())
}

func TestReportCmdHTML(t *testing.T) {
	ledgerFile := setup(t)
	out := filepath.Join(t.TempDir(), "report.html")

	status := execute(t, &reportCmd{}, "-format", "html", "-o", out, "-no-dividends", ledgerFile)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table>")
	assert.Contains(t, string(data), "ASML HOLDING")
	assert.NotContains(t, string(data), "Dividends</h2>")
}

func TestReportCmdUsage(t *testing.T) {
	setup(t)
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{}, "-format", "pdf", "ledger.csv"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &reportCmd{}))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &reportCmd{}, "-currency", "EURO", "ledger.csv"))
}

func TestChartCmd(t *testing.T) {
	ledgerFile := setup(t)
	out := filepath.Join(t.TempDir(), "allocation.png")

	status := execute(t, &chartCmd{}, "-o", out, "-width", "300", "-height", "300", ledgerFile)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestTickersMarkdown(t *testing.T) {
	table := folio.NewTickerTable(map[string]string{"B": "B.AS", "A": "A.PA", "C": ""})
	assert.Equal(t, "# Tickers\n\n| Product | Ticker |\n|:---|:---|\n"+
		"| A | A.PA |\n| B | B.AS |\n| C | - |\n", tickersMarkdown(table, nil))

	positions := []folio.Position{
		{Product: "B", ISIN: "NL0010273215", Ticker: "B.AS"},
		{Product: "D", ISIN: "US0378331005"},
	}
	got := tickersMarkdown(table, positions)
	assert.Contains(t, got, "| B | NL0010273215 | B.AS |\n")
	assert.Contains(t, got, "| D | US0378331005 | - |\n")
	assert.Contains(t, got, "1 product(s) without ticker")
}

func TestSearchMarkdown(t *testing.T) {
	assert.Contains(t, searchMarkdown("asml", nil), "No result.")

	got := searchMarkdown("asml", []eodhd.SearchResult{
		{Code: "ASML", Exchange: "AS", Name: "ASML Holding NV", Type: "Common Stock", ISIN: "NL0010273215", Currency: "EUR", PreviousClose: 600},
	})
	assert.Contains(t, got, "| ASML.AS | ASML Holding NV | Common Stock | NL0010273215 | EUR |")
}

func TestCompletion(t *testing.T) {
	global := flag.NewFlagSet("fol", flag.ContinueOnError)
	global.String("config", "", "")

	c := Completion(global)
	assert.Contains(t, c.Flags, "config")
	for _, name := range []string{"report", "dividends", "chart", "tickers", "assist"} {
		assert.Contains(t, c.Sub, name)
	}
	report := c.Sub["report"]
	assert.Contains(t, report.Flags, "format")
	assert.Contains(t, report.Flags, "no-dividends")
	assert.Equal(t, []string{"html", "json", "md"}, slices.Sorted(slices.Values(report.Flags["format"].Predict(""))))
}
