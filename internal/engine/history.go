package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"stocksim/types"
)

// History returns the account's transactions, newest first.
func (e *Engine) History(ctx context.Context, accountID int64) ([]types.Transaction, error) {
	txs, err := e.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(txs)
	return txs, nil
}

// Transaction returns one of the account's transactions.
func (e *Engine) Transaction(ctx context.Context, accountID int64, id uuid.UUID) (types.Transaction, error) {
	tx, err := e.store.GetTransaction(ctx, id)
	if err != nil {
		return types.Transaction{}, err
	}
	if tx.AccountID != accountID {
		return types.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotOwner)
	}
	return tx, nil
}

// Quote returns the current price of symbol. An unknown symbol is reported
// as an invalid quote rather than an error.
func (e *Engine) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	symbol = types.NormalizeSymbol(symbol)
	q := types.Quote{Symbol: symbol}
	if !types.ValidSymbol(symbol) {
		return q, nil
	}
	price, err := e.price(ctx, symbol)
	if err != nil {
		if KindOf(err) == KindInvalidSymbol {
			return q, nil
		}
		return q, err
	}
	q.Price = &price
	q.Valid = true
	return q, nil
}

// Accounts lists every account, used by ledger verification.
func (e *Engine) Accounts(ctx context.Context) ([]types.Account, error) {
	return e.store.ListAccounts(ctx)
}
