package folio

// Position is the net holding of one instrument, derived from the ledger.
type Position struct {
	Product string `json:"product"`
	ISIN    string `json:"isin"`

	// Shares is the sum of the signed quantities.
	Shares Number `json:"total_shares"`
	// AverageBuyPrice is the plain mean of the unit prices of the instrument's
	// transactions, it is not weighted by quantity.
	AverageBuyPrice Number `json:"average_buy_price"`
	// Invested is the absolute value of the sum of the transaction totals.
	Invested Number `json:"total_invested"`
	// Fees is the absolute value of the sum of the transaction fees.
	Fees Number `json:"total_fees"`

	// Ticker is empty when the product has no ticker mapping.
	Ticker string `json:"ticker,omitempty"`

	// Valuation, unknown until priced, rounded to 2 decimals.
	CurrentPrice Number `json:"current_price"`
	CurrentValue Number `json:"current_value"`
	Gain         Number `json:"unrealized_gain"`
	GainPercent  Number `json:"unrealized_gain_percent"`
}

// HasTicker reports whether the position's product was resolved to a ticker.
func (p Position) HasTicker() bool { return p.Ticker != "" }

func (p Position) instrument() instrument { return instrument{p.Product, p.ISIN} }

// Aggregate groups txs by (product, ISIN) into positions.
//
// Positions are returned in the order their instrument first appears in txs.
// Only positions with a positive number of shares are returned. The resolver
// may be nil, in which case no ticker is resolved.
func Aggregate(txs []Transaction, resolver TickerResolver) []Position {
	return aggregate(groupByInstrument(txs), resolver)
}

func aggregate(g groups, resolver TickerResolver) []Position {
	positions := make([]Position, 0, len(g.keys))
	for _, key := range g.keys {
		var shares, prices, totals, fees accumulator
		for _, tx := range g.txs[key] {
			shares.add(tx.Quantity)
			prices.add(tx.Price)
			totals.add(tx.Total)
			fees.add(tx.Fees)
		}

		p := Position{
			Product:         key.Product,
			ISIN:            key.ISIN,
			Shares:          shares.Sum(),
			AverageBuyPrice: prices.Mean(),
			Invested:        totals.Sum().Abs(),
			Fees:            fees.Sum().Abs(),
		}
		if !p.Shares.IsPositive() {
			continue
		}
		if resolver != nil {
			if ticker, ok := resolver.Resolve(p.Product); ok {
				p.Ticker = ticker
			}
		}
		positions = append(positions, p)
	}
	return positions
}
