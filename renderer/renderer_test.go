package renderer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *folio.Report {
	d := decimal.RequireFromString
	return &folio.Report{
		Currency: "EUR",
		Positions: []folio.Position{
			{
				Product:         "ASML HOLDING",
				ISIN:            "NL0010273215",
				Ticker:          "ASML.AS",
				Shares:          folio.N(10),
				AverageBuyPrice: folio.N(100),
				Invested:        folio.N(1001),
				Fees:            folio.N(1),
				CurrentPrice:    folio.N(110),
				CurrentValue:    folio.N(1100),
				Gain:            folio.N(99),
				GainPercent:     folio.N(d("9.89")),
			},
			{
				Product:         "SOMETHING ELSE",
				ISIN:            "US0378331005",
				Shares:          folio.N(4),
				AverageBuyPrice: folio.N(50),
				Invested:        folio.N(202),
				Fees:            folio.N(2),
			},
		},
		TotalValue:         folio.N(1100),
		TotalGain:          folio.N(99),
		TotalInvested:      folio.N(1203),
		TotalFees:          folio.N(3),
		ReceivedDividends:  folio.N(15),
		EstimatedDividends: folio.N(5),
		Dividends: []folio.DividendAttribution{
			{
				Product: "ASML HOLDING",
				ISIN:    "NL0010273215",
				Ticker:  "ASML.AS",
				Events: []folio.DividendDetail{
					{Date: date.MustParse("2022-06-01"), PerShare: d("1"), Amount: decimal.Zero},
					{Date: date.MustParse("2023-06-01"), PerShare: d("0.5"), Shares: d("10"), Amount: d("5"), Held: true},
				},
				Total: d("5"),
			},
		},
	}
}

func TestRenderReport(t *testing.T) {
	got := RenderReport(testReport(), Options{Date: date.MustParse("2024-02-13")})

	assert.True(t, strings.HasPrefix(got, "# Portfolio on 2024-02-13\n"), got)
	for _, want := range []string{
		"| ASML HOLDING | NL0010273215 | ASML.AS | 10 | €100.00 | €1,001.00 | €1.00 | €110.00 | €1,100.00 | +€99.00 | 9.89% |",
		"| SOMETHING ELSE | US0378331005 | - | 4 | €50.00 | €202.00 | €2.00 | n/a | n/a | n/a | n/a |",
		"> No ticker for: SOMETHING ELSE.",
		"| Total Value | €1,100.00 |",
		"| Total Invested | €1,203.00 |",
		"| Unrealized Gain | +€99.00 |",
		"| Received Dividends | €15.00 |",
		"| Estimated Dividends | €5.00 |",
		"## Dividends",
		"| ASML HOLDING | ASML.AS | 2 | €5.00 |",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "error")
}

func TestRenderReportSkipDividends(t *testing.T) {
	got := RenderReport(testReport(), Options{SkipDividends: true})
	assert.NotContains(t, got, "## Dividends")
	assert.Contains(t, got, "## Totals")
}

func TestRenderReportEmpty(t *testing.T) {
	r := &folio.Report{Currency: "USD", Dividends: []folio.DividendAttribution{}}
	got := RenderReport(r, Options{})
	assert.Contains(t, got, "No open position.")
	assert.Contains(t, got, "No dividend history available.")
	assert.Contains(t, got, "| Total Value | n/a |")
}

func TestRenderDividends(t *testing.T) {
	got := RenderDividends(testReport())
	for _, want := range []string{
		"Received in cash: €15.00. Estimated from the dividend history: €5.00.",
		"## ASML HOLDING (ASML.AS)",
		"| 2022-06-01 | 1 | - | €0.00 |",
		"| 2023-06-01 | 0.5 | 10 | €5.00 |",
		"| **Total** | | | **€5.00** |",
	} {
		assert.Contains(t, got, want)
	}
}

func TestToHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToHTML(&buf, "Portfolio", RenderReport(testReport(), Options{})))
	got := buf.String()
	assert.Contains(t, got, "<title>Portfolio</title>")
	assert.Contains(t, got, "<table>")
	assert.Contains(t, got, ">ASML HOLDING</td>")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "EUR", got["currency"])
	assert.Equal(t, 1100.0, got["total_value"])
	positions := got["positions"].([]any)
	require.Len(t, positions, 2)
	assert.Nil(t, positions[1].(map[string]any)["current_price"])
	assert.NotContains(t, positions[1].(map[string]any), "ticker")
}
