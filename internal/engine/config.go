package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stocksim/internal/config"
	"stocksim/types"
)

// Config controls trade execution and valuation.
type Config struct {
	StartingCash decimal.Decimal
	Currency     string
	QuoteTimeout time.Duration
	Concurrency  int
}

func DefaultConfig() Config {
	return Config{
		StartingCash: types.DefaultStartingCash,
		Currency:     types.DefaultCurrency,
		QuoteTimeout: config.DefaultQuoteTimeout,
		Concurrency:  config.DefaultConcurrency,
	}
}

// NewConfig derives the engine settings from the application config.
func NewConfig(cfg *config.Config) (Config, error) {
	cash, err := cfg.Accounts.Cash()
	if err != nil {
		return Config{}, fmt.Errorf("starting cash: %w", err)
	}
	return Config{
		StartingCash: cash,
		Currency:     cfg.Accounts.Currency,
		QuoteTimeout: cfg.Quotes.Timeout,
		Concurrency:  cfg.Quotes.Concurrency,
	}, nil
}
