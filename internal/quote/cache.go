package quote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type cacheEntry struct {
	price   decimal.Decimal
	err     error
	expires time.Time
}

// Cache remembers prices and unknown-symbol answers for a TTL.
// Unavailable results are never cached.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if c.ttl <= 0 {
		return c.src.Price(ctx, symbol)
	}

	c.mu.Lock()
	e, ok := c.entries[symbol]
	c.mu.Unlock()
	if ok && c.now().Before(e.expires) {
		return e.price, e.err
	}

	price, err := c.src.Price(ctx, symbol)
	if err != nil && !errors.Is(err, ErrUnknownSymbol) {
		return price, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{price: price, err: err, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return price, err
}
