package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// ReceivedDividends returns the dividends the ledger records as credited in
// cash.
//
// A row counts as a received dividend when its quantity is exactly zero and
// its total is strictly negative. The totals of these rows are summed and the
// sum negated. This is a heuristic on the broker's export and it is never
// reconciled with the estimate from AttributeDividends.
func ReceivedDividends(txs []Transaction) Number {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Quantity.IsZero() && tx.Total.IsNegative() {
			total, _ := tx.Total.Decimal()
			sum = sum.Add(total)
		}
	}
	return N(sum.Neg())
}

// Timeline returns the cumulative number of shares held after each date of
// txs.
//
// txs are expected to belong to a single instrument. Transactions with an
// unknown quantity do not move the running sum. When several transactions
// share a date the timeline holds the cumulative value after the last one.
func Timeline(txs []Transaction) *date.History[decimal.Decimal] {
	h := new(date.History[decimal.Decimal])
	shares := decimal.Zero
	for _, tx := range sortedByDate(txs) {
		if q, ok := tx.Quantity.Decimal(); ok {
			shares = shares.Add(q)
		}
		h.Append(tx.Date, shares)
	}
	return h
}

// DividendDetail is the attribution of a single dividend event.
type DividendDetail struct {
	Date date.Date `json:"date"`
	// PerShare is the amount paid per share.
	PerShare decimal.Decimal `json:"per_share"`
	// Shares held on Date, zero when the event predates the first transaction.
	Shares decimal.Decimal `json:"shares"`
	// Amount is Shares x PerShare.
	Amount decimal.Decimal `json:"amount"`
	// Held is false when the event predates every transaction.
	Held bool `json:"held"`
}

// DividendAttribution is the estimated dividend income of one instrument.
type DividendAttribution struct {
	Product string           `json:"product"`
	ISIN    string           `json:"isin"`
	Ticker  string           `json:"ticker"`
	Events  []DividendDetail `json:"events"`
	Total   decimal.Decimal  `json:"total"`
}

// AttributeDividends matches every dividend event against the shares held on
// the event date.
//
// The shares held are the timeline value on the latest date not after the
// event date. Events before the first timeline date contribute zero. Negative
// share counts are used as they are.
func AttributeDividends(timeline *date.History[decimal.Decimal], events []DividendEvent) DividendAttribution {
	var attr DividendAttribution
	attr.Events = make([]DividendDetail, 0, len(events))
	for _, ev := range events {
		d := DividendDetail{Date: ev.Date, PerShare: ev.Amount}
		if shares, ok := timeline.ValueAsOf(ev.Date); ok {
			d.Shares = shares
			d.Held = true
		}
		d.Amount = d.Shares.Mul(ev.Amount)
		attr.Total = attr.Total.Add(d.Amount)
		attr.Events = append(attr.Events, d)
	}
	return attr
}
