// Package folio turns a brokerage transaction ledger into valued portfolio
// positions and an estimate of the dividend income they earned.
//
// The core functionalities include:
//   - Position Aggregation: grouping transactions by product and ISIN into
//     net positions, keeping only the instruments still held.
//   - Valuation: pricing positions with current market prices and computing
//     their unrealized gain.
//   - Dividend Attribution: replaying the number of shares held over time and
//     matching it against each dividend payout, as well as summing the cash
//     dividends the ledger records as received.
//
// Market prices and dividend histories come from a MarketData provider, see
// the yahoo, eodhd and gateway packages. Ledgers are read by the ledger
// package.
//
// Values that cannot be known, like an unparseable ledger field or the price
// of an unmapped product, are represented explicitly by Number and never
// silently replaced by zero.
//
// This package serves as the foundational logic for the `fol` command-line
// tool.
package folio
