package quote

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/config"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrUnavailable   = errors.New("price unavailable")
)

// Source returns the current price of a symbol.
type Source interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// New builds the configured source wrapped in a cache.
func New(cfg config.QuotesConfig, logger *zap.Logger) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	var src Source
	switch cfg.Provider {
	case config.ProviderAlphaVantage:
		src = NewClient(cfg.BaseURL, cfg.APIKey,
			WithLogger(logger),
			WithTimeout(cfg.Timeout),
			WithRetries(cfg.Retries(), cfg.RetryBackoff),
		)
	default:
		logger.Info("no quote api key configured, using demo prices")
		src = NewDemo()
	}
	return NewCache(src, cfg.CacheTTL)
}
