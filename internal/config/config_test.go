package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9000"
  session_ttl: 2h
database:
  driver: postgres
  postgres:
    host: localhost
    port: 5433
    name: stocksim
    user: sim
    password: simpass
quotes:
  provider: alphavantage
  api_key: abc123
  timeout: 3s
accounts:
  starting_cash: "25000.50"
  currency: EUR
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Server.SessionTTL != 2*time.Hour {
		t.Errorf("Server.SessionTTL = %v, want 2h", cfg.Server.SessionTTL)
	}
	if cfg.Database.Postgres.Port != 5433 {
		t.Errorf("Database.Postgres.Port = %d, want 5433", cfg.Database.Postgres.Port)
	}
	if cfg.Quotes.Timeout != 3*time.Second {
		t.Errorf("Quotes.Timeout = %v, want 3s", cfg.Quotes.Timeout)
	}
	if cfg.Accounts.Currency != "EUR" {
		t.Errorf("Accounts.Currency = %q, want EUR", cfg.Accounts.Currency)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_AV_KEY", "av-key")

	yaml := `
database:
  driver: postgres
  postgres:
    host: localhost
    name: stocksim
    user: sim
    password: ${TEST_DB_PASSWORD}
quotes:
  api_key: ${TEST_AV_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Database.Postgres.Password != "secret123" {
		t.Errorf("Database.Postgres.Password = %q, want %q", cfg.Database.Postgres.Password, "secret123")
	}
	if cfg.Quotes.Provider != ProviderAlphaVantage {
		t.Errorf("Quotes.Provider = %q, want %q", cfg.Quotes.Provider, ProviderAlphaVantage)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverMemory)
	}
	if cfg.Quotes.Provider != ProviderDemo {
		t.Errorf("Quotes.Provider = %q, want %q without an api key", cfg.Quotes.Provider, ProviderDemo)
	}
	if cfg.Quotes.Timeout != DefaultQuoteTimeout {
		t.Errorf("Quotes.Timeout = %v, want default %v", cfg.Quotes.Timeout, DefaultQuoteTimeout)
	}
	if cfg.Accounts.StartingCash != DefaultStartingCash {
		t.Errorf("Accounts.StartingCash = %q, want default %q", cfg.Accounts.StartingCash, DefaultStartingCash)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadWithDefaultsKeepsExplicitZero(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantRetries  int
		wantMinConns int
	}{
		{
			name: "explicit zeros",
			yaml: `
database:
  driver: postgres
  postgres: {host: localhost, name: db, user: u, password: p, max_conns: 1, min_conns: 0}
quotes:
  max_retries: 0
`,
			wantRetries:  0,
			wantMinConns: 0,
		},
		{
			name: "unset fields take defaults",
			yaml: `
database:
  driver: postgres
  postgres: {host: localhost, name: db, user: u, password: p}
`,
			wantRetries:  DefaultMaxRetries,
			wantMinConns: DefaultMinConns,
		},
		{
			name: "default min_conns fits a small pool",
			yaml: `
database:
  driver: postgres
  postgres: {host: localhost, name: db, user: u, password: p, max_conns: 1}
`,
			wantRetries:  DefaultMaxRetries,
			wantMinConns: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAndValidate(writeTempFile(t, tt.yaml))
			if err != nil {
				t.Fatalf("LoadAndValidate failed: %v", err)
			}
			if got := cfg.Quotes.Retries(); got != tt.wantRetries {
				t.Errorf("Quotes.Retries() = %d, want %d", got, tt.wantRetries)
			}
			if got := cfg.Database.Postgres.MinConnections(); got != tt.wantMinConns {
				t.Errorf("Postgres.MinConnections() = %d, want %d", got, tt.wantMinConns)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STOCKSIM_TEST_VAR=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("STOCKSIM_TEST_VAR", "")
	os.Unsetenv("STOCKSIM_TEST_VAR")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("STOCKSIM_TEST_VAR"); got != "from-dotenv" {
		t.Errorf("STOCKSIM_TEST_VAR = %q, want from-dotenv", got)
	}

	if err := LoadEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: `database.driver must be "memory" or "postgres", got "sqlite"`,
		},
		{
			name: "missing postgres host",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
			},
			wantErr: "database.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: intPtr(10)}
			},
			wantErr: "database.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "alphavantage without key",
			mutate: func(c *Config) {
				c.Quotes.Provider = ProviderAlphaVantage
				c.Quotes.APIKey = ""
			},
			wantErr: "quotes.api_key is required for provider alphavantage",
		},
		{
			name:    "negative starting cash",
			mutate:  func(c *Config) { c.Accounts.StartingCash = "-1" },
			wantErr: "accounts.starting_cash must be >= 0, got -1",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *Config) { c.Accounts.Currency = "XXZ" },
			wantErr: `accounts.currency "XXZ" is not a known currency code`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
			} else if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func intPtr(v int) *int { return &v }
