package config

import (
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("server.session_ttl must be > 0")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverMemory, DriverPostgres, c.Database.Driver)
	}

	switch c.Quotes.Provider {
	case ProviderDemo:
	case ProviderAlphaVantage:
		if c.Quotes.APIKey == "" {
			return errors.New("quotes.api_key is required for provider alphavantage")
		}
	default:
		return fmt.Errorf("quotes.provider must be %q or %q, got %q", ProviderDemo, ProviderAlphaVantage, c.Quotes.Provider)
	}
	if c.Quotes.Timeout <= 0 {
		return errors.New("quotes.timeout must be > 0")
	}
	if c.Quotes.Retries() < 0 {
		return errors.New("quotes.max_retries must be >= 0")
	}
	if c.Quotes.Concurrency < 1 {
		return errors.New("quotes.concurrency must be >= 1")
	}

	cash, err := c.Accounts.Cash()
	if err != nil {
		return err
	}
	if cash.IsNegative() {
		return fmt.Errorf("accounts.starting_cash must be >= 0, got %s", cash)
	}
	if money.GetCurrency(c.Accounts.Currency) == nil {
		return fmt.Errorf("accounts.currency %q is not a known currency code", c.Accounts.Currency)
	}

	return nil
}

// Cash parses the configured starting cash.
func (a AccountsConfig) Cash() (decimal.Decimal, error) {
	cash, err := decimal.NewFromString(a.StartingCash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("accounts.starting_cash %q is not a decimal: %w", a.StartingCash, err)
	}
	return cash, nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	minConns := db.MinConnections()
	if minConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if minConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, minConns, db.MaxConns)
	}
	return nil
}
