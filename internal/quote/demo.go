package quote

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var demoPrices = map[string]decimal.Decimal{
	"AAPL":  decimal.RequireFromString("150.00"),
	"GOOGL": decimal.RequireFromString("2800.00"),
	"MSFT":  decimal.RequireFromString("300.00"),
	"AMZN":  decimal.RequireFromString("3200.00"),
	"TSLA":  decimal.RequireFromString("800.00"),
}

// Demo serves prices from a static table.
type Demo struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewDemo returns the built-in demo table, optionally overridden by prices.
func NewDemo(prices ...map[string]decimal.Decimal) *Demo {
	d := &Demo{prices: make(map[string]decimal.Decimal, len(demoPrices))}
	for sym, p := range demoPrices {
		d.prices[sym] = p
	}
	for _, m := range prices {
		for sym, p := range m {
			d.prices[sym] = p
		}
	}
	return d
}

func (d *Demo) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	d.mu.RLock()
	p, ok := d.prices[symbol]
	d.mu.RUnlock()
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}
	return p, nil
}

// Set changes a demo price.
func (d *Demo) Set(symbol string, price decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prices[symbol] = price
}
