package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stocksim/internal/config"
)

const rollbackTimeout = 5 * time.Second

// dbtx is satisfied by both the pool and an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxConn interface {
	dbtx
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Database is the PostgreSQL store.
type Database struct {
	conn pgxConn
	*queries
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, cfg config.DBConfig) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConnections())
	poolCfg.MaxConns = int32(cfg.MaxConns)
	return connect(ctx, poolCfg)
}

// connect opens a pool with NUMERIC columns decoded as shopspring decimals.
func connect(ctx context.Context, poolCfg *pgxpool.Config) (*Database, error) {
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	// Ensure the connection is established.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newDatabase(pool), nil
}

func newDatabase(conn pgxConn) *Database {
	return &Database{conn: conn, queries: &queries{db: conn}}
}

// InTx runs fn in a READ COMMITTED transaction. Accounts are locked with
// SELECT ... FOR UPDATE, which serializes trades per account.
func (db *Database) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	tx, err := db.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &queries{db: tx}); err != nil {
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %v (cause: %w)", ErrLedgerInconsistency, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.conn.Ping(ctx)
}

func (db *Database) Close() {
	db.conn.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
