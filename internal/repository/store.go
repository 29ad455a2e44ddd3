package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocksim/types"
)

// Global error declarations.
var (
	ErrNotFound            = errors.New("not found in datasource")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrDuplicateAlert      = errors.New("a similar alert already exists")
	ErrLedgerInconsistency = errors.New("ledger inconsistency: rollback failed")
)

// LedgerTx is the set of reads and writes a trade performs inside one atomic unit.
type LedgerTx interface {
	// LockAccount reads the account and holds it against concurrent trades
	// until the unit ends.
	LockAccount(ctx context.Context, accountID int64) (types.Account, error)
	// GetPosition returns nil, nil when the account holds no shares of symbol.
	GetPosition(ctx context.Context, accountID int64, symbol string) (*types.Position, error)
	UpdateCash(ctx context.Context, accountID int64, cash decimal.Decimal) error
	UpsertPosition(ctx context.Context, pos types.Position) error
	DeletePosition(ctx context.Context, accountID int64, symbol string) error
	InsertTransaction(ctx context.Context, tx types.Transaction) error
}

// Ledger owns accounts, positions and the transaction log.
type Ledger interface {
	// InTx runs fn as one all-or-nothing unit. If fn fails every write it made
	// is discarded; if that discard fails the returned error wraps
	// ErrLedgerInconsistency.
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	GetAccount(ctx context.Context, accountID int64) (types.Account, error)
	ListAccounts(ctx context.Context) ([]types.Account, error)
	ListPositions(ctx context.Context, accountID int64) ([]types.Position, error)
	// ListTransactions returns the log oldest first.
	ListTransactions(ctx context.Context, accountID int64) ([]types.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (types.Transaction, error)
}

// Accounts manages registration data.
type Accounts interface {
	CreateAccount(ctx context.Context, acct types.Account) (types.Account, error)
	GetAccount(ctx context.Context, accountID int64) (types.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (types.Account, error)
}

// Watchlists manages watched symbols and price alerts.
type Watchlists interface {
	AddWatch(ctx context.Context, item types.WatchItem) error
	RemoveWatch(ctx context.Context, accountID int64, symbol string) error
	ListWatch(ctx context.Context, accountID int64) ([]types.WatchItem, error)
	CreateAlert(ctx context.Context, alert types.Alert) error
	DeleteAlert(ctx context.Context, accountID int64, id uuid.UUID) error
	ListAlerts(ctx context.Context, accountID int64) ([]types.Alert, error)
}

// Store is everything the simulator persists.
type Store interface {
	Ledger
	Accounts
	Watchlists
	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*Database)(nil)
	_ Store = (*MemoryStore)(nil)
)
