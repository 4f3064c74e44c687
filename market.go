package folio

import (
	"context"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// DividendEvent is a dividend payout of Amount per share, on Date.
type DividendEvent struct {
	Date   date.Date       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// MarketData supplies market prices and dividend history for a ticker.
//
// Implementations report failures as errors. The accounting system never
// propagates them: a failed or empty answer makes the value unknown for that
// single position.
type MarketData interface {
	// CurrentPrice returns the most recent closing price of ticker.
	CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	// DividendHistory returns the dividends per share paid by ticker, in
	// chronological order.
	DividendHistory(ctx context.Context, ticker string) ([]DividendEvent, error)
}
