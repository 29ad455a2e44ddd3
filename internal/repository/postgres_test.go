package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stocksim/types"
)

const testDatabaseEnv = "STOCKSIM_TEST_DATABASE_URL"

// openTestDatabase connects to the database named by STOCKSIM_TEST_DATABASE_URL
// and applies the schema. Tests using it are skipped when the variable is unset.
func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	url := os.Getenv(testDatabaseEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}
	ctx := context.Background()
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse %s: %v", testDatabaseEnv, err)
	}
	db, err := connect(ctx, poolCfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newPgAccount(t *testing.T, db *Database) types.Account {
	t.Helper()
	ctx := context.Background()
	acct, err := db.CreateAccount(ctx, types.Account{
		Username:  "t-" + uuid.NewString()[:8],
		Cash:      types.DefaultStartingCash,
		Currency:  types.DefaultCurrency,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.conn.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, acct.ID)
	})
	return acct
}

func TestPostgresAccounts(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	acct := newPgAccount(t, db)

	if _, err := db.CreateAccount(ctx, types.Account{Username: acct.Username, Cash: decimal.Zero, Currency: "USD", CreatedAt: time.Now()}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username err = %v, want %v", err, ErrUsernameTaken)
	}

	got, err := db.GetAccountByUsername(ctx, acct.Username)
	if err != nil {
		t.Fatalf("GetAccountByUsername: %v", err)
	}
	if got.ID != acct.ID || !got.Cash.Equal(types.DefaultStartingCash) {
		t.Errorf("got %+v, want %+v", got, acct)
	}

	if err := db.UpdateCash(ctx, acct.ID, decimal.RequireFromString("-1")); err == nil {
		t.Error("negative cash should violate the check constraint")
	}
	if _, err := db.GetAccount(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing account err = %v, want %v", err, ErrNotFound)
	}
}

func TestPostgresPositionPrecision(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	acct := newPgAccount(t, db)

	avg := decimal.RequireFromString("100.0233166666666667")
	err := db.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		return tx.UpsertPosition(ctx, types.Position{AccountID: acct.ID, Symbol: "AAPL", Shares: 3, AvgPrice: avg, UpdatedAt: time.Now()})
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	pos, err := db.GetPosition(ctx, acct.ID, "AAPL")
	if err != nil || pos == nil {
		t.Fatalf("GetPosition = %v, %v", pos, err)
	}
	if !pos.AvgPrice.Equal(avg) {
		t.Errorf("avg price = %s, want %s", pos.AvgPrice, avg)
	}
}

func TestPostgresTransactionOrder(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	acct := newPgAccount(t, db)

	// Same timestamp: insertion order must survive.
	at := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	var want []uuid.UUID
	for _, side := range []types.Side{types.SideTypeBuy, types.SideTypeSell, types.SideTypeBuy} {
		tx := types.Transaction{ID: uuid.New(), AccountID: acct.ID, Symbol: "AAPL", Shares: 1, Price: decimal.NewFromInt(150), Side: side, Timestamp: at}
		if err := db.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
		want = append(want, tx.ID)
	}

	txs, err := db.ListTransactions(ctx, acct.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(want))
	}
	for i, tx := range txs {
		if tx.ID != want[i] {
			t.Errorf("transaction %d = %s, want %s", i, tx.ID, want[i])
		}
	}
}

func TestPostgresLockAccountSerializes(t *testing.T) {
	db := openTestDatabase(t)
	ctx := context.Background()
	acct := newPgAccount(t, db)

	locked := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- db.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
			if _, err := tx.LockAccount(ctx, acct.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return tx.UpdateCash(ctx, acct.ID, decimal.NewFromInt(500))
		})
	}()
	<-locked

	secondDone := make(chan error, 1)
	var seen decimal.Decimal
	go func() {
		secondDone <- db.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
			a, err := tx.LockAccount(ctx, acct.ID)
			seen = a.Cash
			return err
		})
	}()

	select {
	case err := <-secondDone:
		t.Fatalf("second lock returned while the first was held: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first tx: %v", err)
	}
	if err := <-secondDone; err != nil {
		t.Fatalf("second tx: %v", err)
	}
	if !seen.Equal(decimal.NewFromInt(500)) {
		t.Errorf("second tx saw cash %s, want the committed 500", seen)
	}
}
