// Package ledger reads brokerage ledger exports into folio transactions.
//
// A ledger is read in two steps: ReadCSV splits the export into rows keyed
// by their localized column names, then a Normalizer renames the columns,
// drops the rows that are not transactions and parses the fields.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
)

// Canonical column names.
const (
	Date       = "Date"
	Product    = "Product"
	ISIN       = "ISIN"
	Quantity   = "Quantity"
	Price      = "Price"
	LocalValue = "Local_Value"
	Fees       = "Fees"
	Total      = "Total"
)

// ErrNoTransactions is returned when a ledger holds no transaction at all.
var ErrNoTransactions = errors.New("no transactions in ledger")

// DefaultColumns maps the column names of the Dutch broker export to their
// canonical names.
var DefaultColumns = map[string]string{
	"Datum":                  Date,
	"Product":                Product,
	"ISIN":                   ISIN,
	"Aantal":                 Quantity,
	"Koers":                  Price,
	"Lokale waarde":          LocalValue,
	"Transactiekosten en/of": Fees,
	"Totaal":                 Total,
}

// Row is a raw ledger row, keyed by column name.
type Row map[string]string

// Stats counts what happened to the rows during normalization.
type Stats struct {
	Rows     int // rows read
	Dropped  int // rows without a valid date
	Unknowns int // numeric fields that could not be parsed
}

// Normalizer turns raw rows into transactions.
//
// The zero value is ready to use: it reads the default Dutch columns and logs
// nothing.
type Normalizer struct {
	// Columns maps localized column names to canonical ones. Nil means
	// DefaultColumns. Columns already using a canonical name are always
	// accepted.
	Columns map[string]string
	// DecimalComma reads "1.234,5" as 1234.5.
	DecimalComma bool
	Logger       zerolog.Logger
}

func (n Normalizer) columns() map[string]string {
	if n.Columns == nil {
		return DefaultColumns
	}
	return n.Columns
}

// canonical returns the canonical name of a column, or false if the column is
// unknown.
func (n Normalizer) canonical(column string) (string, bool) {
	if c, ok := n.columns()[column]; ok {
		return c, true
	}
	switch column {
	case Date, Product, ISIN, Quantity, Price, LocalValue, Fees, Total:
		return column, true
	}
	return "", false
}

// rename returns row keyed by canonical names, unknown columns are ignored.
func (n Normalizer) rename(row Row) Row {
	renamed := make(Row, len(row))
	for column, v := range row {
		if c, ok := n.canonical(column); ok {
			renamed[c] = v
		}
	}
	return renamed
}

// number parses a numeric field, an empty or invalid one is unknown.
func (n Normalizer) number(s string) folio.Number {
	s = strings.TrimSpace(s)
	if n.DecimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return folio.ParseNumber(s)
}

// Normalize converts rows into transactions, in the same order.
//
// Rows whose date is not a valid DD-MM-YYYY date are dropped: broker exports
// carry header, footer and continuation lines that are not transactions.
// Numeric fields that cannot be parsed are kept as unknown numbers.
func (n Normalizer) Normalize(rows []Row) ([]folio.Transaction, Stats) {
	stats := Stats{Rows: len(rows)}
	txs := make([]folio.Transaction, 0, len(rows))
	for i, raw := range rows {
		row := n.rename(raw)
		day := strings.TrimSpace(row[Date])
		if !date.IsLedgerDate(day) {
			stats.Dropped++
			n.Logger.Debug().Int("row", i+1).Str("date", day).Msg("dropping row without a date")
			continue
		}
		on, err := date.ParseLedger(day)
		if err != nil {
			stats.Dropped++
			n.Logger.Debug().Int("row", i+1).Err(err).Msg("dropping row with an invalid date")
			continue
		}

		tx := folio.Transaction{
			Date:       on,
			Product:    strings.TrimSpace(row[Product]),
			ISIN:       strings.TrimSpace(row[ISIN]),
			Quantity:   n.number(row[Quantity]),
			Price:      n.number(row[Price]),
			LocalValue: n.number(row[LocalValue]),
			Fees:       n.number(row[Fees]),
			Total:      n.number(row[Total]),
		}
		for column, v := range map[string]folio.Number{Quantity: tx.Quantity, Price: tx.Price, LocalValue: tx.LocalValue, Fees: tx.Fees, Total: tx.Total} {
			if !v.Known() && strings.TrimSpace(row[column]) != "" {
				stats.Unknowns++
				n.Logger.Debug().Int("row", i+1).Str("column", column).Str("value", row[column]).Msg("not a number")
			}
		}
		if tx.ISIN != "" {
			if err := folio.ValidateISIN(tx.ISIN); err != nil {
				n.Logger.Warn().Int("row", i+1).Str("isin", tx.ISIN).Err(err).Msg("suspicious ISIN")
			}
		}
		txs = append(txs, tx)
	}
	if stats.Dropped > 0 || stats.Unknowns > 0 {
		n.Logger.Info().Int("rows", stats.Rows).Int("dropped", stats.Dropped).Int("unknowns", stats.Unknowns).Msg("ledger normalized")
	}
	return txs, stats
}

// Decode reads a CSV ledger from r and normalizes it.
//
// It fails if the CSV cannot be read, if it has no date column or if no row
// is a transaction.
func (n Normalizer) Decode(r io.Reader) ([]folio.Transaction, error) {
	header, rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	if !n.hasDate(header) {
		return nil, fmt.Errorf("missing date column in header %q: %w", header, ErrNoTransactions)
	}
	txs, stats := n.Normalize(rows)
	if len(txs) == 0 {
		return nil, fmt.Errorf("none of the %d rows has a valid date: %w", stats.Rows, ErrNoTransactions)
	}
	return txs, nil
}

func (n Normalizer) hasDate(header []string) bool {
	for _, column := range header {
		if c, ok := n.canonical(column); ok && c == Date {
			return true
		}
	}
	return false
}
