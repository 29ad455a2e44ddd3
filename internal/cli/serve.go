package cli

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"stocksim/internal/api"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API" }
func (*serveCmd) Usage() string {
	return `stocksim serve [-addr <host:port>]

  Serves the JSON API until interrupted. Postgres schemas are migrated on start.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Overrides server.addr.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runApp(ctx, nil, func(ctx context.Context, a *app) error {
		if c.addr != "" {
			a.cfg.Server.Addr = c.addr
		}
		srv := api.NewServer(a.cfg.Server, a.store, a.engine, a.auth, a.watch, a.logger.Named("api"))

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- srv.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err := <-errc; err != nil {
			a.logger.Warn("server exited with error", zap.Error(err))
		}
		return nil
	})
}
