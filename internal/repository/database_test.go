package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeTx struct {
	pgx.Tx
	rollbackErr error
	commitErr   error
	committed   bool
	rolledBack  bool
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return f.rollbackErr
}

type fakeConn struct {
	pgxConn
	tx       *fakeTx
	beginErr error
}

func (f *fakeConn) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestDatabaseInTx(t *testing.T) {
	errFn := errors.New("insufficient funds")

	tests := []struct {
		name         string
		tx           *fakeTx
		fnErr        error
		wantErr      error
		wantCommit   bool
		wantRollback bool
	}{
		{
			name:       "commits on success",
			tx:         &fakeTx{},
			wantCommit: true,
		},
		{
			name:         "rolls back and returns cause",
			tx:           &fakeTx{},
			fnErr:        errFn,
			wantErr:      errFn,
			wantRollback: true,
		},
		{
			name:         "failed rollback is a ledger inconsistency",
			tx:           &fakeTx{rollbackErr: errors.New("connection reset")},
			fnErr:        errFn,
			wantErr:      ErrLedgerInconsistency,
			wantRollback: true,
		},
		{
			name:         "already closed tx is not an inconsistency",
			tx:           &fakeTx{rollbackErr: pgx.ErrTxClosed},
			fnErr:        errFn,
			wantErr:      errFn,
			wantRollback: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newDatabase(&fakeConn{tx: tt.tx})
			err := db.InTx(context.Background(), func(context.Context, LedgerTx) error {
				return tt.fnErr
			})
			if tt.wantErr == nil && err != nil {
				t.Fatalf("InTx() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("InTx() error = %v, want %v", err, tt.wantErr)
			}
			if tt.tx.committed != tt.wantCommit {
				t.Errorf("committed = %v, want %v", tt.tx.committed, tt.wantCommit)
			}
			if tt.tx.rolledBack != tt.wantRollback {
				t.Errorf("rolledBack = %v, want %v", tt.tx.rolledBack, tt.wantRollback)
			}
		})
	}
}

func TestDatabaseInTxRollbackIgnoresCanceledContext(t *testing.T) {
	tx := &fakeTx{}
	db := newDatabase(&fakeConn{tx: tx})

	ctx, cancel := context.WithCancel(context.Background())
	err := db.InTx(ctx, func(context.Context, LedgerTx) error {
		cancel()
		return context.Canceled
	})
	if errors.Is(err, ErrLedgerInconsistency) {
		t.Fatalf("rollback used the canceled context: %v", err)
	}
	if !tx.rolledBack {
		t.Error("expected rollback")
	}
}

func TestDatabaseInTxBeginError(t *testing.T) {
	db := newDatabase(&fakeConn{beginErr: errors.New("pool closed")})
	called := false
	err := db.InTx(context.Background(), func(context.Context, LedgerTx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("fn should not run without a transaction")
	}
}
