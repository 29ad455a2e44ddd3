package config

import (
	"os"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultAddr          = ":8080"
	DefaultReadTimeout   = 10 * time.Second
	DefaultWriteTimeout  = 15 * time.Second
	DefaultSessionTTL    = 24 * time.Hour
	DefaultDriver        = DriverMemory
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultQuoteURL      = "https://www.alphavantage.co/query"
	DefaultQuoteTimeout  = 5 * time.Second
	DefaultMaxRetries    = 2
	DefaultRetryBackoff  = 500 * time.Millisecond
	DefaultCacheTTL      = 30 * time.Second
	DefaultConcurrency   = 4
	DefaultStartingCash  = "10000"
	DefaultCurrency      = "USD"
	DefaultLogLevel      = "info"
	APIKeyEnv            = "ALPHA_VANTAGE_API_KEY"
	DriverMemory         = "memory"
	DriverPostgres       = "postgres"
	ProviderDemo         = "demo"
	ProviderAlphaVantage = "alphavantage"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}

	// Database defaults
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDriver
	}
	if c.Database.Postgres.Port == 0 {
		c.Database.Postgres.Port = DefaultDBPort
	}
	if c.Database.Postgres.SSLMode == "" {
		c.Database.Postgres.SSLMode = DefaultDBSSLMode
	}
	if c.Database.Postgres.MaxConns == 0 {
		c.Database.Postgres.MaxConns = DefaultMaxConns
	}
	if c.Database.Postgres.MinConns == nil {
		minConns := c.Database.Postgres.MinConnections()
		c.Database.Postgres.MinConns = &minConns
	}

	// Quote defaults
	if c.Quotes.APIKey == "" {
		c.Quotes.APIKey = os.Getenv(APIKeyEnv)
	}
	if c.Quotes.Provider == "" {
		c.Quotes.Provider = ProviderAlphaVantage
	}
	// Without a key the live provider is unusable.
	if c.Quotes.APIKey == "" {
		c.Quotes.Provider = ProviderDemo
	}
	if c.Quotes.BaseURL == "" {
		c.Quotes.BaseURL = DefaultQuoteURL
	}
	if c.Quotes.Timeout == 0 {
		c.Quotes.Timeout = DefaultQuoteTimeout
	}
	if c.Quotes.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.Quotes.MaxRetries = &retries
	}
	if c.Quotes.RetryBackoff == 0 {
		c.Quotes.RetryBackoff = DefaultRetryBackoff
	}
	if c.Quotes.CacheTTL == 0 {
		c.Quotes.CacheTTL = DefaultCacheTTL
	}
	if c.Quotes.Concurrency == 0 {
		c.Quotes.Concurrency = DefaultConcurrency
	}

	// Account defaults
	if c.Accounts.StartingCash == "" {
		c.Accounts.StartingCash = DefaultStartingCash
	}
	if c.Accounts.Currency == "" {
		c.Accounts.Currency = DefaultCurrency
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
