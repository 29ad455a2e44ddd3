package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stocksim/internal/engine"
	"stocksim/types"
)

func money(d decimal.Decimal, currency string) string {
	return types.FormatMoney(d, currency)
}

func optMoney(d *decimal.Decimal, currency string) string {
	if d == nil {
		return "n/a"
	}
	return money(*d, currency)
}

func renderPortfolio(acct types.Account, r *engine.PortfolioReport) string {
	cur := r.Currency
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio of %s\n\n", acct.Username)
	fmt.Fprintf(&b, "| Symbol | Shares | Avg Price | Price | Value | Unrealized | Unrealized %% | Realized |\n")
	fmt.Fprintf(&b, "|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range r.Positions {
		pct := "n/a"
		if p.UnrealizedGainPct != nil {
			pct = p.UnrealizedGainPct.StringFixed(2) + "%"
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			p.Symbol, p.Shares, p.AvgPrice.StringFixed(2),
			optMoney(p.Price, cur), optMoney(p.TotalValue, cur), optMoney(p.UnrealizedGain, cur),
			pct, money(p.RealizedGain, cur))
	}
	fmt.Fprintf(&b, "\n- **Cash:** %s\n", money(r.Cash, cur))
	fmt.Fprintf(&b, "- **Holdings:** %s\n", money(r.PortfolioValue, cur))
	fmt.Fprintf(&b, "- **Total:** %s\n", money(r.TotalAccountValue, cur))
	fmt.Fprintf(&b, "- **Realized gains:** %s\n", money(r.TotalRealizedGain, cur))
	if len(r.Unpriced) > 0 {
		fmt.Fprintf(&b, "\n_No price for %s; excluded from totals._\n", strings.Join(r.Unpriced, ", "))
	}
	return b.String()
}

func renderHistory(txs []types.Transaction, currency string) string {
	var b strings.Builder
	b.WriteString("# Transactions\n\n")
	if len(txs) == 0 {
		b.WriteString("_No trades yet._\n")
		return b.String()
	}
	b.WriteString("| Date | Side | Symbol | Shares | Price | Total |\n")
	b.WriteString("|---|---|---|---:|---:|---:|\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			tx.Timestamp.Format("2006-01-02 15:04"), tx.Side, tx.Symbol, tx.Shares,
			money(tx.Price, currency), money(tx.Total(), currency))
	}
	return b.String()
}

func renderReconciliation(recs []*engine.Reconciliation) string {
	sort.Slice(recs, func(i, j int) bool { return recs[i].AccountID < recs[j].AccountID })

	var b strings.Builder
	b.WriteString("# Ledger mismatches\n\n")
	for _, rec := range recs {
		fmt.Fprintf(&b, "## %s (account %d)\n\n", rec.Username, rec.AccountID)
		if rec.ReplayErr != nil {
			fmt.Fprintf(&b, "- replay failed: %v\n\n", rec.ReplayErr)
			continue
		}
		for _, m := range rec.Mismatches {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\n")
	}
	return b.String()
}
