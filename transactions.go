package folio

import (
	"slices"

	"github.com/etnz/folio/date"
)

// Transaction is one canonical row of a brokerage ledger.
//
// Quantity and Total are signed: a positive quantity is an acquisition and a
// negative one a disposal; Total is the cash effect on the account, negative
// for outflows like purchases and fees.
type Transaction struct {
	Date       date.Date `json:"date"`
	Product    string    `json:"product"`
	ISIN       string    `json:"isin"`
	Quantity   Number    `json:"quantity"`
	Price      Number    `json:"price"`
	LocalValue Number    `json:"local_value"`
	Fees       Number    `json:"fees"`
	Total      Number    `json:"total"`
}

// instrument is the grouping key of transactions.
type instrument struct {
	Product string
	ISIN    string
}

func (tx Transaction) instrument() instrument { return instrument{tx.Product, tx.ISIN} }

// groups holds transactions grouped by instrument, in first-seen order.
type groups struct {
	keys []instrument
	txs  map[instrument][]Transaction
}

// groupByInstrument groups txs by (product, ISIN). Both the group order and the
// order of transactions within a group follow the input order.
func groupByInstrument(txs []Transaction) groups {
	g := groups{txs: make(map[instrument][]Transaction)}
	for _, tx := range txs {
		k := tx.instrument()
		if _, seen := g.txs[k]; !seen {
			g.keys = append(g.keys, k)
		}
		g.txs[k] = append(g.txs[k], tx)
	}
	return g
}

// sortedByDate returns a copy of txs sorted by date, same day transactions
// keep their relative order.
func sortedByDate(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return sorted
}
