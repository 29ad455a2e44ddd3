package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stocksim/types"
)

func (q *queries) GetPosition(ctx context.Context, accountID int64, symbol string) (*types.Position, error) {
	var p types.Position
	err := q.db.QueryRow(ctx, `
		SELECT account_id, symbol, shares, avg_price, updated_at
		FROM positions
		WHERE account_id = $1 AND symbol = $2`,
		accountID, symbol,
	).Scan(&p.AccountID, &p.Symbol, &p.Shares, &p.AvgPrice, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get position: %w", err)
	}
	return &p, nil
}

func (q *queries) ListPositions(ctx context.Context, accountID int64) ([]types.Position, error) {
	rows, err := q.db.Query(ctx, `
		SELECT account_id, symbol, shares, avg_price, updated_at
		FROM positions
		WHERE account_id = $1
		ORDER BY symbol`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var positions []types.Position
	for rows.Next() {
		var p types.Position
		if err := rows.Scan(&p.AccountID, &p.Symbol, &p.Shares, &p.AvgPrice, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (q *queries) UpsertPosition(ctx context.Context, pos types.Position) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO positions (account_id, symbol, shares, avg_price, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, symbol) DO UPDATE SET
			shares     = EXCLUDED.shares,
			avg_price  = EXCLUDED.avg_price,
			updated_at = EXCLUDED.updated_at`,
		pos.AccountID, pos.Symbol, pos.Shares, pos.AvgPrice, pos.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

func (q *queries) DeletePosition(ctx context.Context, accountID int64, symbol string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM positions WHERE account_id = $1 AND symbol = $2`, accountID, symbol)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d/%s %w", accountID, symbol, ErrNotFound)
	}
	return nil
}
