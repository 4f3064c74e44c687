package gateway

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// Cache is a folio.MarketData that keeps the successful answers of another
// one in memory for a while. Failures are never cached.
type Cache struct {
	market folio.MarketData
	c      *ristretto.Cache
	ttl    time.Duration
}

// NewCache caches the answers of market for ttl. maxItems bounds the number
// of cached answers.
func NewCache(market folio.MarketData, maxItems int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * maxItems,
		MaxCost:            maxItems,
		BufferItems:        64,
		// cost counts items, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{market: market, c: c, ttl: ttl}, nil
}

// Close releases the cache resources.
func (c *Cache) Close() { c.c.Close() }

func (c *Cache) set(key string, val any) {
	c.c.SetWithTTL(key, val, 1, c.ttl)
	// Sets are buffered, wait so that the next call sees it.
	c.c.Wait()
}

// CurrentPrice implements folio.MarketData.
func (c *Cache) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	key := "price:" + ticker
	if v, ok := c.c.Get(key); ok {
		return v.(decimal.Decimal), nil
	}
	price, err := c.market.CurrentPrice(ctx, ticker)
	if err != nil {
		return price, err
	}
	c.set(key, price)
	return price, nil
}

// DividendHistory implements folio.MarketData.
func (c *Cache) DividendHistory(ctx context.Context, ticker string) ([]folio.DividendEvent, error) {
	key := "dividends:" + ticker
	if v, ok := c.c.Get(key); ok {
		return v.([]folio.DividendEvent), nil
	}
	events, err := c.market.DividendHistory(ctx, ticker)
	if err != nil {
		return events, err
	}
	c.set(key, events)
	return events, nil
}

var _ folio.MarketData = (*Cache)(nil)
