// Package cli implements the stocksim command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/logging"
	"stocksim/internal/quote"
	"stocksim/internal/repository"
	"stocksim/internal/watch"
	"stocksim/types"
)

// Register adds every subcommand to c.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")
	c.Register(&migrateCmd{}, "server")

	c.Register(&registerCmd{}, "accounts")
	c.Register(&tradeCmd{}, "accounts")
	c.Register(&portfolioCmd{}, "accounts")
	c.Register(&historyCmd{}, "accounts")
	c.Register(&exportCmd{}, "accounts")

	c.Register(&quoteCmd{}, "market")

	c.Register(&verifyCmd{}, "maintenance")
}

// A CLI run is short lived, so global flags are fine.
var (
	configPath = flag.String("config", "", "Path to the YAML configuration file. Defaults apply when empty.")
	envFile    = flag.String("env-file", ".env", "Optional .env file loaded before the configuration.")
)

// app is everything a command needs, built from the configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  repository.Store
	quotes quote.Source
	engine *engine.Engine
	auth   *auth.Service
	watch  *watch.Service
}

func openApp(ctx context.Context, check func(*config.Config) error) (*app, error) {
	if err := config.LoadEnv(*envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	engCfg, err := engine.NewConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	quotes := quote.New(cfg.Quotes, logger.Named("quote"))
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		quotes: quotes,
		engine: engine.NewEngine(store, quotes, engCfg, logger.Named("engine")),
		auth: auth.NewService(store, auth.Config{
			StartingCash: engCfg.StartingCash,
			Currency:     engCfg.Currency,
			SessionTTL:   cfg.Server.SessionTTL,
		}, logger.Named("auth")),
		watch: watch.NewService(store, quotes, cfg.Quotes.Timeout, cfg.Quotes.Concurrency, logger.Named("watch")),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// account looks up the account named by a -user flag.
func (a *app) account(ctx context.Context, username string) (types.Account, error) {
	if username == "" {
		return types.Account{}, errors.New("-user is required")
	}
	acct, err := a.store.GetAccountByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return types.Account{}, fmt.Errorf("no account named %q", username)
	}
	return acct, err
}

// errMemoryStore is returned to commands whose effect would be lost when the
// process exits.
var errMemoryStore = errors.New("database.driver is memory: nothing persists between runs, configure postgres")

// requirePersistent rejects configurations whose store dies with the process.
func requirePersistent(cfg *config.Config) error {
	if cfg.Database.Driver == config.DriverMemory {
		return errMemoryStore
	}
	return nil
}

// run opens the app, runs fn and maps its error to an exit status. Commands
// run this way read or write accounts and need a persistent store.
func run(ctx context.Context, fn func(ctx context.Context, a *app) error) subcommands.ExitStatus {
	return runApp(ctx, requirePersistent, fn)
}

// runApp is run with a custom check on the configuration, nil for none.
func runApp(ctx context.Context, check func(*config.Config) error, fn func(ctx context.Context, a *app) error) subcommands.ExitStatus {
	a, err := openApp(ctx, check)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		if kind := engine.KindOf(err); kind != engine.KindUnknown {
			fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", engine.Message(kind), kind)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
