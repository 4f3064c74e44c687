package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// ErrNoData is returned when the API answers with an empty series.
var ErrNoData = errors.New("no data")

// priceWindow is the number of days looked back for the latest close, it
// spans long weekends and bank holidays.
const priceWindow = 14

// CurrentPrice returns the latest daily close of ticker.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	},
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "d") // most recent first
	params.Set("from", date.Today().Add(-priceWindow).String())

	type bar struct {
		Date  date.Date       `json:"date"`
		Close decimal.Decimal `json:"close"`
	}
	var bars []bar
	if err := c.get(ctx, "/eod/"+url.PathEscape(ticker), params, &bars); err != nil {
		return decimal.Zero, err
	}
	if len(bars) == 0 {
		return decimal.Zero, fmt.Errorf("no close for %s in the last %d days: %w", ticker, priceWindow, ErrNoData)
	}
	// do not rely on the requested order
	latest := slices.MaxFunc(bars, func(a, b bar) int { return a.Date.Compare(b.Date) })
	return latest.Close, nil
}

// DividendHistory returns the dividend history of ticker, keyed by ex-dividend
// date and sorted chronologically.
func (c *Client) DividendHistory(ctx context.Context, ticker string) ([]folio.DividendEvent, error) {
	type apiDividend struct {
		Date     date.Date       `json:"date"` // ex-dividend date, see https://eodhd.com/financial-apis/api-splits-dividends
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
	}

	var content []apiDividend
	if err := c.get(ctx, "/div/"+url.PathEscape(ticker), nil, &content); err != nil {
		return nil, err
	}

	events := make([]folio.DividendEvent, 0, len(content))
	for _, d := range content {
		events = append(events, folio.DividendEvent{Date: d.Date, Amount: d.Value})
	}
	slices.SortStableFunc(events, func(a, b folio.DividendEvent) int { return a.Date.Compare(b.Date) })
	return events, nil
}

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string    `json:"Code"`
	Exchange          string    `json:"Exchange"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	Country           string    `json:"Country"`
	Currency          string    `json:"Currency"`
	ISIN              string    `json:"ISIN"`
	PreviousClose     float64   `json:"previousClose"`
	PreviousCloseDate date.Date `json:"previousCloseDate"`
}

// Ticker returns the ticker of the result in the format expected by the other
// endpoints.
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search searches for securities by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var results []SearchResult
	if err := c.get(ctx, "/search/"+url.PathEscape(term), nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

var _ folio.MarketData = (*Client)(nil)
