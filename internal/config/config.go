package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Quotes   QuotesConfig   `yaml:"quotes"`
	Accounts AccountsConfig `yaml:"accounts"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// DatabaseConfig selects the store. Driver is "memory" or "postgres".
type DatabaseConfig struct {
	Driver   string   `yaml:"driver"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection. MinConns is a pointer so an
// explicit 0 survives defaulting.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns *int   `yaml:"min_conns"`
}

// QuotesConfig holds price provider settings. Provider is "demo" or "alphavantage".
// MaxRetries is a pointer so an explicit 0 disables retries.
type QuotesConfig struct {
	Provider     string        `yaml:"provider"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   *int          `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	Concurrency  int           `yaml:"concurrency"`
}

// AccountsConfig holds settings applied to new accounts.
type AccountsConfig struct {
	StartingCash string `yaml:"starting_cash"`
	Currency     string `yaml:"currency"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MinConnections is MinConns, or the default when unset.
func (db DBConfig) MinConnections() int {
	if db.MinConns == nil {
		return min(DefaultMinConns, db.MaxConns)
	}
	return *db.MinConns
}

// Retries is MaxRetries, or the default when unset.
func (q QuotesConfig) Retries() int {
	if q.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *q.MaxRetries
}
