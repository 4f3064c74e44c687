package folio

// Report is the outcome of one run over a ledger: the valued positions, the
// portfolio totals and the dividend income.
type Report struct {
	Currency  string     `json:"currency"`
	Positions []Position `json:"positions"`

	// Totals only sum known values, a position that could not be priced
	// contributes nothing to TotalValue and TotalGain but its costs are still
	// part of TotalInvested and TotalFees.
	TotalValue    Number `json:"total_value"`
	TotalGain     Number `json:"total_unrealized_gain"`
	TotalInvested Number `json:"total_invested"`
	TotalFees     Number `json:"total_fees"`

	// ReceivedDividends are the cash dividends recorded in the ledger.
	ReceivedDividends Number `json:"received_dividends"`
	// EstimatedDividends are the dividends earned according to the market
	// dividend history and the shares held at each payout.
	EstimatedDividends Number                `json:"estimated_dividends"`
	Dividends          []DividendAttribution `json:"dividends"`
}

// Priced returns the positions with a known, positive current value.
func (r *Report) Priced() []Position {
	var priced []Position
	for _, p := range r.Positions {
		if p.CurrentValue.IsPositive() {
			priced = append(priced, p)
		}
	}
	return priced
}

// Unmapped returns the products of the positions without a ticker.
func (r *Report) Unmapped() []string {
	var products []string
	for _, p := range r.Positions {
		if !p.HasTicker() {
			products = append(products, p.Product)
		}
	}
	return products
}
