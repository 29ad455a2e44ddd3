package engine

import (
	"context"

	"github.com/google/uuid"

	"stocksim/internal/repository"
	"stocksim/types"
)

// ledgerStore is the persistence the engine needs.
type ledgerStore interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx ledgerTx) error) error
	GetAccount(ctx context.Context, accountID int64) (types.Account, error)
	ListAccounts(ctx context.Context) ([]types.Account, error)
	ListPositions(ctx context.Context, accountID int64) ([]types.Position, error)
	ListTransactions(ctx context.Context, accountID int64) ([]types.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (types.Transaction, error)
}

type ledgerTx = repository.LedgerTx
