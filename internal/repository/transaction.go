package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stocksim/types"
)

const transactionColumns = `id, account_id, symbol, shares, price, side, executed_at`

func scanTransaction(row pgx.Row) (types.Transaction, error) {
	var t types.Transaction
	var side string
	err := row.Scan(&t.ID, &t.AccountID, &t.Symbol, &t.Shares, &t.Price, &side, &t.Timestamp)
	t.Side = types.Side(side)
	return t, err
}

func (q *queries) InsertTransaction(ctx context.Context, tx types.Transaction) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.AccountID, tx.Symbol, tx.Shares, tx.Price, string(tx.Side), tx.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (q *queries) ListTransactions(ctx context.Context, accountID int64) ([]types.Transaction, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = $1
		ORDER BY executed_at, seq`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []types.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (q *queries) GetTransaction(ctx context.Context, id uuid.UUID) (types.Transaction, error) {
	row := q.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Transaction{}, fmt.Errorf("transaction %s %w", id, ErrNotFound)
		}
		return types.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}
