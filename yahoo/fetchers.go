package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// result returns the first chart result of jobj.
//
//	{
//	  "chart": {
//	    "result": [ { "meta": {...}, "timestamp": [...], "events": {...}, "indicators": {...} } ],
//	    "error": null
//	  }
//	}
func result(ticker string, jobj any) (any, error) {
	if jerr, err := jsonpath.Get("$.chart.error", jobj); err == nil && jerr != nil {
		return nil, fmt.Errorf("Yahoo Finance API error for %s: %v", ticker, jerr)
	}
	res, err := jsonpath.Get("$.chart.result[0]", jobj)
	if err != nil || res == nil {
		return nil, fmt.Errorf("no chart for %s: %w", ticker, ErrNoResult)
	}
	return res, nil
}

// number converts a JSON number into a decimal, and false if v is not a number.
func number(v any) (decimal.Decimal, bool) {
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := v.([]any); ok && len(jlist) > 0 {
		v = jlist[0]
	}
	f, ok := v.(float64)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// CurrentPrice returns the last daily close of ticker over the last 5 days,
// or the regular market price when no close is available.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")
	jobj, err := c.chart(ctx, ticker, params)
	if err != nil {
		return decimal.Zero, err
	}
	res, err := result(ticker, jobj)
	if err != nil {
		return decimal.Zero, err
	}

	// Closes of the current session can be null.
	if closes, err := jsonpath.Get("$.indicators.quote[0].close", res); err == nil {
		if list, ok := closes.([]any); ok {
			for i := len(list) - 1; i >= 0; i-- {
				if price, ok := number(list[i]); ok {
					return price, nil
				}
			}
		}
	}
	if v, err := jsonpath.Get("$.meta.regularMarketPrice", res); err == nil {
		if price, ok := number(v); ok {
			return price, nil
		}
	}
	return decimal.Zero, fmt.Errorf("no price for %s: %w", ticker, ErrNoResult)
}

// DividendHistory returns the full dividend history of ticker, sorted by
// ex-dividend date.
//
// A ticker that never paid a dividend has an empty history.
func (c *Client) DividendHistory(ctx context.Context, ticker string) ([]folio.DividendEvent, error) {
	params := url.Values{}
	params.Set("interval", "1mo")
	params.Set("range", "max")
	params.Set("events", "div")
	jobj, err := c.chart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	res, err := result(ticker, jobj)
	if err != nil {
		return nil, err
	}

	// Dividend dates are timestamps, read in the exchange time zone.
	loc := time.UTC
	if tz, err := jsonpath.Get("$.meta.exchangeTimezoneName", res); err == nil {
		if name, ok := tz.(string); ok {
			if l, err := time.LoadLocation(name); err == nil {
				loc = l
			}
		}
	}

	//	"events": { "dividends": { "1694674800": { "amount": 0.4231, "date": 1694674800 } } }
	jdivs, err := jsonpath.Get("$.events.dividends", res)
	if err != nil {
		return []folio.DividendEvent{}, nil
	}
	divs, ok := jdivs.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected dividends for %s: %v", ticker, jdivs)
	}

	events := make([]folio.DividendEvent, 0, len(divs))
	for key, jdiv := range divs {
		amount, err := jsonpath.Get("$.amount", jdiv)
		if err != nil {
			return nil, fmt.Errorf("missing dividend amount for %s at %s: %w", ticker, key, err)
		}
		value, ok := number(amount)
		if !ok {
			return nil, fmt.Errorf("invalid dividend amount for %s at %s: %v", ticker, key, amount)
		}
		ts, err := jsonpath.Get("$.date", jdiv)
		if err != nil {
			return nil, fmt.Errorf("missing dividend date for %s at %s: %w", ticker, key, err)
		}
		sec, ok := ts.(float64)
		if !ok {
			return nil, fmt.Errorf("invalid dividend date for %s at %s: %v", ticker, key, ts)
		}
		on := date.FromTime(time.Unix(int64(sec), 0).In(loc))
		events = append(events, folio.DividendEvent{Date: on, Amount: value})
	}
	slices.SortFunc(events, func(a, b folio.DividendEvent) int { return a.Date.Compare(b.Date) })
	return events, nil
}

var _ folio.MarketData = (*Client)(nil)
