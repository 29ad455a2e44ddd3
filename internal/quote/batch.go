package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one lookup in a batch.
type Result struct {
	Price decimal.Decimal
	Err   error
}

// Lookup asks src for a price within timeout. A deadline, a cancellation or
// any provider failure other than an unknown symbol comes back as ErrUnavailable.
func Lookup(ctx context.Context, src Source, symbol string, timeout time.Duration) (decimal.Decimal, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	price, err := src.Price(ctx, symbol)
	switch {
	case err == nil:
		return price, nil
	case errors.Is(err, ErrUnknownSymbol), errors.Is(err, ErrUnavailable):
		return decimal.Zero, err
	default:
		return decimal.Zero, fmt.Errorf("%s: %w: %v", symbol, ErrUnavailable, err)
	}
}

// Batch looks up every symbol with at most limit requests in flight. Per-symbol
// failures are reported in the map, only a canceled ctx fails the call.
func Batch(ctx context.Context, src Source, symbols []string, limit int, timeout time.Duration) (map[string]Result, error) {
	results := make([]Result, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, sym := range symbols {
		g.Go(func() error {
			price, err := Lookup(gctx, src, sym, timeout)
			results[i] = Result{Price: price, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]Result, len(symbols))
	for i, sym := range symbols {
		out[sym] = results[i]
	}
	return out, nil
}
