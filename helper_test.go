package folio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

const (
	asmlISIN  = "NL0010273215"
	appleISIN = "US0378331005"
)

// tx is a helper for tests to create a transaction from literals. Empty
// strings are unknown numbers.
func tx(on, product, isin, quantity, price, fees, total string) Transaction {
	return Transaction{
		Date:       date.MustParse(on),
		Product:    product,
		ISIN:       isin,
		Quantity:   ParseNumber(quantity),
		Price:      ParseNumber(price),
		LocalValue: ParseNumber(quantity).Mul(ParseNumber(price)).Neg(),
		Fees:       ParseNumber(fees),
		Total:      ParseNumber(total),
	}
}

// dec is a helper for tests to create a decimal from a const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// num is a helper for tests to create a known Number from a const.
func num(s string) Number { return N(dec(s)) }

// div is a helper for tests to create a dividend event.
func div(on, amount string) DividendEvent {
	return DividendEvent{Date: date.MustParse(on), Amount: dec(amount)}
}

var errUnavailable = errors.New("unavailable")

// fakeMarket is an in-memory MarketData that counts calls.
type fakeMarket struct {
	prices    map[string]decimal.Decimal
	dividends map[string][]DividendEvent
	// fail lists tickers for which every call fails.
	fail map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func (m *fakeMarket) count(ticker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[ticker]++
}

func (m *fakeMarket) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	m.count(ticker)
	if m.fail[ticker] {
		return decimal.Zero, errUnavailable
	}
	p, ok := m.prices[ticker]
	if !ok {
		return decimal.Zero, errUnavailable
	}
	return p, nil
}

func (m *fakeMarket) DividendHistory(ctx context.Context, ticker string) ([]DividendEvent, error) {
	m.count(ticker)
	if m.fail[ticker] {
		return nil, errUnavailable
	}
	return m.dividends[ticker], nil
}

// newTestTracker creates a tracker in EUR and fails the test on error.
func newTestTracker(t *testing.T, txs []Transaction, tickers map[string]string, market MarketData, opts ...Option) *Tracker {
	t.Helper()
	tr, err := NewTracker(txs, NewTickerTable(tickers), market, "EUR", opts...)
	if err != nil {
		t.Fatalf("NewTracker() error = %v", err)
	}
	return tr
}
