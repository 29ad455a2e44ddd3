package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"stocksim/internal/engine"
	"stocksim/types"
)

type registerCmd struct {
	user     string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account funded with the starting cash" }
func (*registerCmd) Usage() string {
	return `stocksim register -user <name> -password <password>
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Username, 4-15 characters.")
	f.StringVar(&c.password, "password", "", "Password, 4-20 characters.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app) error {
		acct, _, err := a.auth.Register(ctx, c.user, c.password)
		if err != nil {
			return err
		}
		fmt.Printf("Created account %d for %s with %s\n", acct.ID, acct.Username, types.FormatMoney(acct.Cash, acct.Currency))
		return nil
	})
}

type tradeCmd struct {
	user   string
	side   string
	symbol string
	shares int64
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "buy or sell shares at the current price" }
func (*tradeCmd) Usage() string {
	return `stocksim trade -user <name> -side buy|sell -symbol <ticker> -shares <n>
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Account username.")
	f.StringVar(&c.side, "side", "buy", "buy or sell.")
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol.")
	f.Int64Var(&c.shares, "shares", 0, "Number of whole shares.")
}

func (c *tradeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	side, err := types.ParseSide(c.side)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, func(ctx context.Context, a *app) error {
		acct, err := a.account(ctx, c.user)
		if err != nil {
			return err
		}
		res, err := a.engine.ExecuteTrade(ctx, types.NewTradeRequest(acct.ID, c.symbol, side, c.shares))
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		fmt.Printf("Cash: %s\n", types.FormatMoney(res.NewCash, acct.Currency))
		if res.RealizedGain != nil {
			fmt.Printf("Realized gain: %s\n", types.FormatMoney(*res.RealizedGain, acct.Currency))
		}
		return nil
	})
}

type portfolioCmd struct {
	user string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show holdings valued at current prices" }
func (*portfolioCmd) Usage() string {
	return `stocksim portfolio -user <name>
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Account username.")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app) error {
		acct, err := a.account(ctx, c.user)
		if err != nil {
			return err
		}
		report, err := a.engine.GetPortfolio(ctx, acct.ID)
		if err != nil {
			return err
		}
		printMarkdown(renderPortfolio(acct, report))
		return nil
	})
}

type historyCmd struct {
	user string
	head int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list executed trades, newest first" }
func (*historyCmd) Usage() string {
	return `stocksim history -user <name> [-head <n>]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Account username.")
	f.IntVar(&c.head, "head", 0, "Show only the N most recent trades.")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app) error {
		acct, err := a.account(ctx, c.user)
		if err != nil {
			return err
		}
		txs, err := a.engine.History(ctx, acct.ID)
		if err != nil {
			return err
		}
		if c.head > 0 && len(txs) > c.head {
			txs = txs[:c.head]
		}
		printMarkdown(renderHistory(txs, acct.Currency))
		return nil
	})
}

type exportCmd struct {
	user string
	out  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write transaction history as CSV" }
func (*exportCmd) Usage() string {
	return `stocksim export -user <name> [-o <file>]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Account username.")
	f.StringVar(&c.out, "o", "transactions.csv", "Output file.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app) error {
		acct, err := a.account(ctx, c.user)
		if err != nil {
			return err
		}
		if err := a.engine.ExportTransactionsFile(ctx, acct.ID, c.out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", c.out)
		return nil
	})
}

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "print current prices" }
func (*quoteCmd) Usage() string {
	return `stocksim quote <symbol>...
`
}

func (*quoteCmd) SetFlags(*flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return subcommands.ExitUsageError
	}
	return runApp(ctx, nil, func(ctx context.Context, a *app) error {
		for _, sym := range f.Args() {
			q, err := a.engine.Quote(ctx, sym)
			switch {
			case err != nil:
				fmt.Printf("%-8s %s\n", q.Symbol, engine.Message(engine.KindOf(err)))
			case !q.Valid:
				fmt.Printf("%-8s unknown symbol\n", q.Symbol)
			default:
				fmt.Printf("%-8s %s\n", q.Symbol, types.FormatMoney(*q.Price, a.cfg.Accounts.Currency))
			}
		}
		return nil
	})
}
