// Package gateway holds folio.MarketData implementations that do not talk to
// a market data API themselves: a frozen offline snapshot, a recorder to
// create such snapshots and an in-memory cache.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a ticker is not part of a snapshot.
var ErrNotFound = errors.New("ticker not found")

// Frozen is a folio.MarketData snapshot. It answers always the same for the
// same ticker, which makes reports reproducible.
//
// Its JSON form is:
//
//	{
//	  "prices": {"ASML.AS": 820.1},
//	  "dividends": {"ASML.AS": [{"date": "2023-04-26", "amount": 1.45}]}
//	}
type Frozen struct {
	mu        sync.RWMutex
	Prices    map[string]decimal.Decimal       `json:"prices"`
	Dividends map[string][]folio.DividendEvent `json:"dividends"`
}

// NewFrozen returns an empty snapshot.
func NewFrozen() *Frozen {
	return &Frozen{
		Prices:    make(map[string]decimal.Decimal),
		Dividends: make(map[string][]folio.DividendEvent),
	}
}

// DecodeFrozen reads a snapshot in JSON.
func DecodeFrozen(r io.Reader) (*Frozen, error) {
	f := NewFrozen()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("cannot decode market snapshot: %w", err)
	}
	for ticker, events := range f.Dividends {
		slices.SortStableFunc(events, func(a, b folio.DividendEvent) int { return a.Date.Compare(b.Date) })
		f.Dividends[ticker] = events
	}
	return f, nil
}

// LoadFrozen reads a snapshot from a JSON file.
func LoadFrozen(name string) (*Frozen, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := DecodeFrozen(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Encode writes the snapshot in JSON, tickers are sorted.
func (f *Frozen) Encode(w io.Writer) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// CurrentPrice implements folio.MarketData.
func (f *Frozen) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	price, ok := f.Prices[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s: %w", ticker, ErrNotFound)
	}
	return price, nil
}

// DividendHistory implements folio.MarketData.
func (f *Frozen) DividendHistory(ctx context.Context, ticker string) ([]folio.DividendEvent, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	events, ok := f.Dividends[ticker]
	if !ok {
		return nil, fmt.Errorf("no dividends for %s: %w", ticker, ErrNotFound)
	}
	return slices.Clone(events), nil
}

// Tickers returns the sorted list of tickers with a price or dividends.
func (f *Frozen) Tickers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tickers := slices.Collect(maps.Keys(f.Prices))
	for ticker := range f.Dividends {
		if _, ok := f.Prices[ticker]; !ok {
			tickers = append(tickers, ticker)
		}
	}
	slices.Sort(tickers)
	return tickers
}

// Recorder is a folio.MarketData that forwards calls to another one and
// records the successful answers in a snapshot.
type Recorder struct {
	Market   folio.MarketData
	Snapshot *Frozen
}

// NewRecorder returns a Recorder into a new, empty snapshot.
func NewRecorder(market folio.MarketData) *Recorder {
	return &Recorder{Market: market, Snapshot: NewFrozen()}
}

// CurrentPrice implements folio.MarketData.
func (r *Recorder) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	price, err := r.Market.CurrentPrice(ctx, ticker)
	if err != nil {
		return price, err
	}
	r.Snapshot.mu.Lock()
	defer r.Snapshot.mu.Unlock()
	r.Snapshot.Prices[ticker] = price
	return price, nil
}

// DividendHistory implements folio.MarketData.
func (r *Recorder) DividendHistory(ctx context.Context, ticker string) ([]folio.DividendEvent, error) {
	events, err := r.Market.DividendHistory(ctx, ticker)
	if err != nil {
		return events, err
	}
	r.Snapshot.mu.Lock()
	defer r.Snapshot.mu.Unlock()
	r.Snapshot.Dividends[ticker] = slices.Clone(events)
	return events, nil
}

var (
	_ folio.MarketData = (*Frozen)(nil)
	_ folio.MarketData = (*Recorder)(nil)
)
