package quote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type globalQuoteResponse struct {
	GlobalQuote  map[string]string `json:"Global Quote"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
}

const priceField = "05. price"

// Price returns the latest traded price for symbol.
func (c *Client) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)

	var resp globalQuoteResponse
	if err := c.get(ctx, query, &resp); err != nil {
		c.logger.Warn("quote request failed", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}

	// Rate limiting and key problems come back as 200 with a message.
	switch {
	case resp.Note != "":
		return decimal.Zero, fmt.Errorf("%w: %s: %s", ErrUnavailable, symbol, resp.Note)
	case resp.Information != "":
		return decimal.Zero, fmt.Errorf("%w: %s: %s", ErrUnavailable, symbol, resp.Information)
	case resp.ErrorMessage != "":
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}

	raw, ok := resp.GlobalQuote[priceField]
	if !ok || raw == "" {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: bad price %q", ErrUnavailable, symbol, raw)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrUnavailable, symbol, price)
	}
	return price, nil
}
