package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocksim/types"
)

func newAccount(t *testing.T, m *MemoryStore, username string) types.Account {
	t.Helper()
	acct, err := m.CreateAccount(context.Background(), types.Account{
		Username: username,
		Cash:     types.DefaultStartingCash,
		Currency: types.DefaultCurrency,
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return acct
}

func TestMemoryStoreCreateAccount(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	a := newAccount(t, m, "alice")
	b := newAccount(t, m, "bobby")
	if a.ID == b.ID {
		t.Fatalf("ids not unique: %d", a.ID)
	}

	if _, err := m.CreateAccount(ctx, types.Account{Username: "alice"}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username error = %v, want ErrUsernameTaken", err)
	}

	got, err := m.GetAccountByUsername(ctx, "bobby")
	if err != nil || got.ID != b.ID {
		t.Errorf("GetAccountByUsername = %+v, %v", got, err)
	}
	if _, err := m.GetAccount(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount(99) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreInTxCommit(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	acct := newAccount(t, m, "alice")

	txn := types.Transaction{
		ID:        uuid.New(),
		AccountID: acct.ID,
		Symbol:    "AAPL",
		Shares:    10,
		Price:     decimal.NewFromInt(150),
		Side:      types.SideTypeBuy,
		Timestamp: time.Now(),
	}

	err := m.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		if err := tx.UpdateCash(ctx, acct.ID, decimal.NewFromInt(8500)); err != nil {
			return err
		}
		if err := tx.UpsertPosition(ctx, types.Position{AccountID: acct.ID, Symbol: "AAPL", Shares: 10, AvgPrice: decimal.NewFromInt(150)}); err != nil {
			return err
		}
		locked, err := tx.LockAccount(ctx, acct.ID)
		if err != nil {
			return err
		}
		if !locked.Cash.Equal(decimal.NewFromInt(8500)) {
			t.Errorf("tx should read its own cash write, got %s", locked.Cash)
		}
		return tx.InsertTransaction(ctx, txn)
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}

	got, _ := m.GetAccount(ctx, acct.ID)
	if !got.Cash.Equal(decimal.NewFromInt(8500)) {
		t.Errorf("cash = %s, want 8500", got.Cash)
	}
	positions, _ := m.ListPositions(ctx, acct.ID)
	if len(positions) != 1 || positions[0].Shares != 10 {
		t.Errorf("positions = %+v", positions)
	}
	stored, err := m.GetTransaction(ctx, txn.ID)
	if err != nil || stored.Symbol != "AAPL" {
		t.Errorf("GetTransaction = %+v, %v", stored, err)
	}
}

func TestMemoryStoreInTxRollback(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	acct := newAccount(t, m, "alice")
	boom := errors.New("recorder failed")

	err := m.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		if err := tx.UpdateCash(ctx, acct.ID, decimal.NewFromInt(1)); err != nil {
			return err
		}
		if err := tx.UpsertPosition(ctx, types.Position{AccountID: acct.ID, Symbol: "MSFT", Shares: 1, AvgPrice: decimal.NewFromInt(300)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want %v", err, boom)
	}

	got, _ := m.GetAccount(ctx, acct.ID)
	if !got.Cash.Equal(types.DefaultStartingCash) {
		t.Errorf("cash = %s, want unchanged %s", got.Cash, types.DefaultStartingCash)
	}
	if positions, _ := m.ListPositions(ctx, acct.ID); len(positions) != 0 {
		t.Errorf("positions leaked from rolled back tx: %+v", positions)
	}
}

func TestMemoryTxConstraints(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	acct := newAccount(t, m, "alice")

	tests := []struct {
		name string
		fn   func(tx LedgerTx) error
		want error
	}{
		{"negative cash", func(tx LedgerTx) error {
			return tx.UpdateCash(ctx, acct.ID, decimal.NewFromInt(-1))
		}, errConstraint},
		{"zero shares", func(tx LedgerTx) error {
			return tx.UpsertPosition(ctx, types.Position{AccountID: acct.ID, Symbol: "AAPL", AvgPrice: decimal.NewFromInt(1)})
		}, errConstraint},
		{"delete missing position", func(tx LedgerTx) error {
			return tx.DeletePosition(ctx, acct.ID, "AAPL")
		}, ErrNotFound},
		{"unknown account", func(tx LedgerTx) error {
			_, err := tx.LockAccount(ctx, 42)
			return err
		}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.InTx(ctx, func(_ context.Context, tx LedgerTx) error { return tt.fn(tx) })
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMemoryStoreTransactionsKeepAppendOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	acct := newAccount(t, m, "alice")
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, sym := range []string{"AAPL", "MSFT", "TSLA"} {
		err := m.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
			return tx.InsertTransaction(ctx, types.Transaction{
				ID: uuid.New(), AccountID: acct.ID, Symbol: sym, Shares: 1,
				Price: decimal.NewFromInt(10), Side: types.SideTypeBuy, Timestamp: ts,
			})
		})
		if err != nil {
			t.Fatalf("InTx: %v", err)
		}
	}

	txs, _ := m.ListTransactions(ctx, acct.ID)
	if len(txs) != 3 {
		t.Fatalf("len = %d, want 3", len(txs))
	}
	for i, want := range []string{"AAPL", "MSFT", "TSLA"} {
		if txs[i].Symbol != want {
			t.Errorf("txs[%d] = %s, want %s", i, txs[i].Symbol, want)
		}
	}
}

func TestMemoryStoreWatchAndAlerts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if err := m.AddWatch(ctx, types.WatchItem{AccountID: 1, Symbol: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddWatch(ctx, types.WatchItem{AccountID: 1, Symbol: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	if items, _ := m.ListWatch(ctx, 1); len(items) != 1 {
		t.Errorf("watch items = %d, want 1", len(items))
	}
	if err := m.RemoveWatch(ctx, 1, "MSFT"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveWatch(MSFT) = %v, want ErrNotFound", err)
	}

	alert := types.Alert{ID: uuid.New(), AccountID: 1, Symbol: "AAPL", TargetPrice: decimal.RequireFromString("150.00"), Direction: types.AlertAbove}
	if err := m.CreateAlert(ctx, alert); err != nil {
		t.Fatal(err)
	}
	dup := alert
	dup.ID = uuid.New()
	dup.TargetPrice = decimal.NewFromInt(150)
	if err := m.CreateAlert(ctx, dup); !errors.Is(err, ErrDuplicateAlert) {
		t.Errorf("duplicate alert error = %v", err)
	}
	if err := m.DeleteAlert(ctx, 2, alert.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting another account's alert = %v, want ErrNotFound", err)
	}
	if err := m.DeleteAlert(ctx, 1, alert.ID); err != nil {
		t.Errorf("DeleteAlert: %v", err)
	}
}
