package folio

import (
	"iter"
	"maps"
	"slices"
)

// TickerResolver maps a product display name to its market ticker symbol.
type TickerResolver interface {
	// Resolve returns the ticker of product, and false if it is not mapped.
	Resolve(product string) (ticker string, ok bool)
}

// TickerTable is an immutable TickerResolver backed by a static name to symbol table.
type TickerTable struct {
	m map[string]string
}

// NewTickerTable returns a TickerTable holding a copy of m.
func NewTickerTable(m map[string]string) TickerTable {
	return TickerTable{m: maps.Clone(m)}
}

// Resolve implements TickerResolver.
func (t TickerTable) Resolve(product string) (string, bool) {
	ticker, ok := t.m[product]
	if !ok || ticker == "" {
		return "", false
	}
	return ticker, true
}

// Len returns the number of mapped products.
func (t TickerTable) Len() int { return len(t.m) }

// All returns an iterator over product names and tickers, sorted by product name.
func (t TickerTable) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, product := range slices.Sorted(maps.Keys(t.m)) {
			if !yield(product, t.m[product]) {
				return
			}
		}
	}
}
