package folio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the default number of concurrent market data calls.
	DefaultConcurrency = 4
	// DefaultTimeout is the default deadline of a single market data call.
	DefaultTimeout = 15 * time.Second
)

// Tracker combines the transactions of one account with a ticker resolver and
// a market data provider. It is the entry point to value positions and to
// estimate dividend income.
//
// A Tracker is stateless: every method recomputes its result from the
// transactions. It is safe for concurrent use as long as the MarketData is.
type Tracker struct {
	txs      []Transaction
	resolver TickerResolver
	market   MarketData
	currency string

	log         zerolog.Logger
	concurrency int
	timeout     time.Duration
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used to report market data failures.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithConcurrency sets the maximum number of concurrent market data calls.
// Values lower than 1 are ignored.
func WithConcurrency(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithTimeout sets the deadline of every single market data call. Values
// lower or equal to 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTracker creates a Tracker for txs.
//
// market may be nil, in which case nothing is priced and no dividend is
// estimated. The currency is only used to label reports, amounts are never
// converted.
func NewTracker(txs []Transaction, resolver TickerResolver, market MarketData, currency string, opts ...Option) (*Tracker, error) {
	if err := ValidateCurrency(currency); err != nil {
		return nil, fmt.Errorf("invalid reporting currency: %w", err)
	}
	t := &Tracker{
		txs:         txs,
		resolver:    resolver,
		market:      market,
		currency:    currency,
		log:         zerolog.Nop(),
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Currency returns the reporting currency.
func (t *Tracker) Currency() string { return t.currency }

// Transactions returns the transactions the tracker was created with.
func (t *Tracker) Transactions() []Transaction { return t.txs }

// Positions returns the open positions, unpriced.
func (t *Tracker) Positions() []Position { return Aggregate(t.txs, t.resolver) }

// forEach calls f for each position with a ticker, concurrently.
//
// Every call runs under its own deadline. f reports failures through its
// return value, forEach only logs them: a failed position never fails the
// others.
func (t *Tracker) forEach(ctx context.Context, positions []Position, what string, f func(ctx context.Context, i int) error) {
	if t.market == nil {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, p := range positions {
		if !p.HasTicker() {
			t.log.Debug().Str("product", p.Product).Msg("no ticker mapping")
			continue
		}
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, t.timeout)
			defer cancel()
			if err := f(cctx, i); err != nil {
				t.log.Warn().Err(err).Str("ticker", p.Ticker).Str("product", p.Product).Msgf("cannot fetch %s", what)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Value returns a copy of positions with the current price, value and
// unrealized gain filled in.
//
// Positions without a ticker or whose price cannot be fetched keep unknown
// valuation fields. The result has the same order as positions.
func (t *Tracker) Value(ctx context.Context, positions []Position) []Position {
	prices := make([]Number, len(positions))
	t.forEach(ctx, positions, "current price", func(ctx context.Context, i int) error {
		price, err := t.market.CurrentPrice(ctx, positions[i].Ticker)
		if err != nil {
			return err
		}
		prices[i] = N(price)
		return nil
	})

	valued := make([]Position, len(positions))
	for i, p := range positions {
		valued[i] = valuate(p, prices[i])
	}
	return valued
}

// valuate sets the valuation fields of p at price.
func valuate(p Position, price Number) Position {
	current := price.Mul(p.Shares)
	gain := current.Sub(p.Invested)
	percent := Unknown
	if p.Invested.IsPositive() {
		percent = gain.Div(p.Invested).Mul(N(100))
	}
	p.CurrentPrice = price.Round(2)
	p.CurrentValue = current.Round(2)
	p.Gain = gain.Round(2)
	p.GainPercent = percent.Round(2)
	return p
}

// Dividends estimates the dividends earned by each position.
//
// The result holds one attribution per position whose dividend history was
// available and not empty, in the order of positions.
func (t *Tracker) Dividends(ctx context.Context, positions []Position) []DividendAttribution {
	histories := make([][]DividendEvent, len(positions))
	t.forEach(ctx, positions, "dividend history", func(ctx context.Context, i int) error {
		events, err := t.market.DividendHistory(ctx, positions[i].Ticker)
		if err != nil {
			return err
		}
		histories[i] = events
		return nil
	})

	g := groupByInstrument(t.txs)
	var attributions []DividendAttribution
	for i, p := range positions {
		if len(histories[i]) == 0 {
			continue
		}
		attr := AttributeDividends(Timeline(g.txs[p.instrument()]), histories[i])
		attr.Product, attr.ISIN, attr.Ticker = p.Product, p.ISIN, p.Ticker
		attributions = append(attributions, attr)
	}
	return attributions
}

// NewReport computes the full report: valued positions, totals and
// dividends.
func (t *Tracker) NewReport(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	positions := t.Positions()
	valued := t.Value(ctx, positions)
	dividends := t.Dividends(ctx, positions)

	var value, gain, invested, fees accumulator
	for _, p := range valued {
		value.add(p.CurrentValue)
		gain.add(p.Gain)
		invested.add(p.Invested)
		fees.add(p.Fees)
	}
	estimated := decimal.Zero
	for _, d := range dividends {
		estimated = estimated.Add(d.Total)
	}

	r := &Report{
		Currency:           t.currency,
		Positions:          valued,
		TotalValue:         value.Total(),
		TotalGain:          gain.Total(),
		TotalInvested:      invested.Total(),
		TotalFees:          fees.Total(),
		ReceivedDividends:  ReceivedDividends(t.txs),
		EstimatedDividends: N(estimated),
		Dividends:          dividends,
	}
	if r.Dividends == nil {
		r.Dividends = []DividendAttribution{}
	}
	t.log.Debug().Int("positions", len(valued)).Int("dividends", len(dividends)).Msg("report computed")
	return r, nil
}
