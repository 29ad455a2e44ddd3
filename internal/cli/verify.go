package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"stocksim/internal/engine"
)

type verifyCmd struct{}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "replay every account's log and compare with stored balances" }
func (*verifyCmd) Usage() string {
	return `stocksim verify

  Replays each account's transaction log from the starting cash and reports
  any account whose stored cash or positions disagree with the replay.
`
}

func (*verifyCmd) SetFlags(*flag.FlagSet) {}

func (*verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app) error {
		accounts, err := a.engine.Accounts(ctx)
		if err != nil {
			return err
		}

		bar := initProgressBar(len(accounts))
		var failed []*engine.Reconciliation
		for _, acct := range accounts {
			rec, err := a.engine.Reconcile(ctx, acct.ID)
			if err != nil {
				return err
			}
			if !rec.OK() {
				failed = append(failed, rec)
				a.logger.Warn("ledger mismatch", zap.Int64("account_id", acct.ID), zap.Int("mismatches", len(rec.Mismatches)))
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()
		fmt.Println()

		if len(failed) == 0 {
			fmt.Printf("%d accounts verified, no mismatches\n", len(accounts))
			return nil
		}
		printMarkdown(renderReconciliation(failed))
		return fmt.Errorf("%d of %d accounts do not reconcile", len(failed), len(accounts))
	})
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Verifying ledgers..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
