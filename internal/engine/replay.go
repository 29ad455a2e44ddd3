package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stocksim/types"
)

// ReplayResult is the state an account should be in given its transaction log.
type ReplayResult struct {
	AccountID     int64
	Cash          decimal.Decimal
	Positions     map[string]types.Position
	RealizedGains map[string]decimal.Decimal
	Transactions  int
}

// Replay applies txs, oldest first, to a fresh account holding startingCash.
// A transaction that could not have executed stops the replay.
func Replay(accountID int64, startingCash decimal.Decimal, txs []types.Transaction) (*ReplayResult, error) {
	p := newPortfolio(accountID, startingCash)
	for _, tx := range txs {
		if err := p.process(tx); err != nil {
			return nil, err
		}
	}

	result := &ReplayResult{
		AccountID:     accountID,
		Cash:          p.cash,
		Positions:     make(map[string]types.Position, len(p.positions)),
		RealizedGains: p.realized,
		Transactions:  p.applied,
	}
	for sym, pos := range p.positions {
		result.Positions[sym] = *pos
	}
	return result, nil
}

// Mismatch is one difference between stored and replayed state.
type Mismatch struct {
	Field    string `json:"field"`
	Symbol   string `json:"symbol,omitempty"`
	Stored   string `json:"stored"`
	Replayed string `json:"replayed"`
}

func (m Mismatch) String() string {
	if m.Symbol == "" {
		return fmt.Sprintf("%s: stored %s, replayed %s", m.Field, m.Stored, m.Replayed)
	}
	return fmt.Sprintf("%s %s: stored %s, replayed %s", m.Symbol, m.Field, m.Stored, m.Replayed)
}

type Reconciliation struct {
	AccountID  int64         `json:"accountId"`
	Username   string        `json:"username"`
	Replayed   *ReplayResult `json:"-"`
	ReplayErr  error         `json:"-"`
	Mismatches []Mismatch    `json:"mismatches"`
}

func (r *Reconciliation) OK() bool {
	return r.ReplayErr == nil && len(r.Mismatches) == 0
}

// Reconcile replays an account's log and compares the result with the stored
// cash and positions.
func (e *Engine) Reconcile(ctx context.Context, accountID int64) (*Reconciliation, error) {
	acct, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	positions, err := e.store.ListPositions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := e.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{AccountID: acct.ID, Username: acct.Username}
	replayed, err := Replay(accountID, e.cfg.StartingCash, txs)
	if err != nil {
		rec.ReplayErr = err
		return rec, nil
	}
	rec.Replayed = replayed
	rec.Mismatches = compareState(acct, positions, replayed)
	return rec, nil
}

func compareState(acct types.Account, positions []types.Position, replayed *ReplayResult) []Mismatch {
	var out []Mismatch
	if !acct.Cash.Equal(replayed.Cash) {
		out = append(out, Mismatch{Field: "cash", Stored: acct.Cash.String(), Replayed: replayed.Cash.String()})
	}

	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		seen[p.Symbol] = true
		want, ok := replayed.Positions[p.Symbol]
		if !ok {
			out = append(out, Mismatch{Field: "position", Symbol: p.Symbol, Stored: fmt.Sprintf("%d shares", p.Shares), Replayed: "none"})
			continue
		}
		if p.Shares != want.Shares {
			out = append(out, Mismatch{Field: "shares", Symbol: p.Symbol, Stored: fmt.Sprint(p.Shares), Replayed: fmt.Sprint(want.Shares)})
		}
		if !p.AvgPrice.Equal(want.AvgPrice) {
			out = append(out, Mismatch{Field: "avg_price", Symbol: p.Symbol, Stored: p.AvgPrice.String(), Replayed: want.AvgPrice.String()})
		}
	}

	var missing []string
	for sym := range replayed.Positions {
		if !seen[sym] {
			missing = append(missing, sym)
		}
	}
	sort.Strings(missing)
	for _, sym := range missing {
		out = append(out, Mismatch{Field: "position", Symbol: sym, Stored: "none", Replayed: fmt.Sprintf("%d shares", replayed.Positions[sym].Shares)})
	}
	return out
}
