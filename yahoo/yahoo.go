// Package yahoo provides a market data client for the Yahoo Finance chart API.
//
// Tickers use the Yahoo format, e.g. "ASML.AS" for ASML on Euronext Amsterdam.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
	DefaultBackoff = time.Second
)

// ErrNoResult is returned when the API has no data for a ticker.
var ErrNoResult = errors.New("no result")

// StatusError is returned when the API answers with a non 200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Yahoo Finance API returned status %d: %s", e.StatusCode, e.Body)
}

// temporary reports whether the request may succeed if retried.
func (e *StatusError) temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is a folio.MarketData backed by the Yahoo Finance chart API.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	retries int
	backoff time.Duration
}

// Option configures the client
type Option func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("client", "yahoo").Logger() }
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// WithRetries sets the number of attempts of a request, and the wait before
// the first retry. The wait doubles after every failed attempt.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		log:     zerolog.Nop(),
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chart fetches the chart of ticker, retrying with exponential backoff on
// network errors and temporary failures.
func (c *Client) chart(ctx context.Context, ticker string, params url.Values) (any, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		jobj, err := c.getChart(ctx, ticker, params)
		if err == nil {
			return jobj, nil
		}
		lastErr = err

		var status *StatusError
		if errors.As(err, &status) && !status.temporary() {
			return nil, err
		}
		if attempt == c.retries-1 || ctx.Err() != nil {
			break
		}
		waitTime := c.backoff << attempt // exponential backoff
		c.log.Warn().Err(err).
			Str("ticker", ticker).
			Int("attempt", attempt+1).
			Dur("wait", waitTime).
			Msg("Failed to get chart, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.retries, lastErr)
}

// getChart performs a single chart request and returns the decoded JSON.
func (c *Client) getChart(ctx context.Context, ticker string, params url.Values) (any, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("ticker", ticker).Str("range", params.Get("range")).Msg("Yahoo chart request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return jobj, nil
}
