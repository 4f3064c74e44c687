package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL), WithRateLimit(100))
}

func TestCurrentPrice(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/ASML.AS", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "d", r.URL.Query().Get("order"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2024-02-12","open":1,"high":1,"low":1,"close":"812.50","adjusted_close":1,"volume":10},
			{"date":"2024-02-13","open":1,"high":1,"low":1,"close":820.1,"adjusted_close":1,"volume":10}
		]`))
	})

	got, err := client.CurrentPrice(context.Background(), "ASML.AS")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("820.1").Equal(got), "got %v", got)
}

func TestCurrentPriceEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	_, err := client.CurrentPrice(context.Background(), "NONE.AS")
	assert.True(t, errors.Is(err, ErrNoData), "got %v", err)
}

func TestAPIError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Ticker Not Found.", http.StatusNotFound)
	})
	_, err := client.DividendHistory(context.Background(), "NONE.AS")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/div/NONE.AS", apiErr.Endpoint)
	assert.Contains(t, apiErr.Error(), "Ticker Not Found.")
}

func TestDividendHistory(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/div/VWRL.AS", r.URL.Path)
		w.Write([]byte(`[
			{"date":"2023-09-14","declarationDate":"2023-08-31","recordDate":"2023-09-15","paymentDate":"2023-09-27","period":"Quarterly","value":0.4231,"unadjustedValue":0.4231,"currency":"USD"},
			{"date":"2023-03-16","value":0.1546,"unadjustedValue":0.1546,"currency":"USD"}
		]`))
	})

	got, err := client.DividendHistory(context.Background(), "VWRL.AS")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date.MustParse("2023-03-16"), got[0].Date)
	assert.True(t, decimal.RequireFromString("0.1546").Equal(got[0].Amount))
	assert.Equal(t, date.MustParse("2023-09-14"), got[1].Date)
}

func TestSearch(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/ASML HOLDING", r.URL.Path)
		w.Write([]byte(`[{"Code":"ASML","Exchange":"AS","Name":"ASML Holding NV","Type":"Common Stock","Country":"Netherlands","Currency":"EUR","ISIN":"NL0010273215","previousClose":820.1,"previousCloseDate":"2024-02-13"}]`))
	})
	got, err := client.Search(context.Background(), "ASML HOLDING")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ASML.AS", got[0].Ticker())
	assert.Equal(t, "NL0010273215", got[0].ISIN)
}

func TestContextCanceled(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.CurrentPrice(ctx, "ASML.AS")
	assert.Error(t, err)
}

func TestDailyCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"date":"2023-03-16","value":0.5}]`))
	}))
	t.Cleanup(server.Close)
	client := NewClient("test-key", WithBaseURL(server.URL), WithDailyCache(t.TempDir()))

	for range 3 {
		got, err := client.DividendHistory(context.Background(), "VWRL.AS")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestDailyCacheSkipsErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	client := NewClient("test-key", WithBaseURL(server.URL), WithDailyCache(t.TempDir()))

	for range 2 {
		_, err := client.DividendHistory(context.Background(), "VWRL.AS")
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestDailyCacheExpires(t *testing.T) {
	cache := &diskCache{dir: t.TempDir()}
	req := httptest.NewRequest(http.MethodGet, "https://eodhd.com/api/div/X", nil)

	cache.today = func() date.Date { return date.MustParse("2024-01-01") }
	monday := cache.key(req)
	cache.today = func() date.Date { return date.MustParse("2024-01-02") }
	assert.NotEqual(t, monday, cache.key(req))
}
