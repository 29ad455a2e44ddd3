package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stocksim/types"
)

// AddWatch is idempotent: watching a symbol twice keeps the first entry.
func (q *queries) AddWatch(ctx context.Context, item types.WatchItem) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO watchlist (account_id, symbol, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, symbol) DO NOTHING`,
		item.AccountID, item.Symbol, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("add watch: %w", err)
	}
	return nil
}

func (q *queries) RemoveWatch(ctx context.Context, accountID int64, symbol string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM watchlist WHERE account_id = $1 AND symbol = $2`, accountID, symbol)
	if err != nil {
		return fmt.Errorf("remove watch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("watch %s %w", symbol, ErrNotFound)
	}
	return nil
}

func (q *queries) ListWatch(ctx context.Context, accountID int64) ([]types.WatchItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT account_id, symbol, added_at
		FROM watchlist
		WHERE account_id = $1
		ORDER BY added_at, symbol`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watch: %w", err)
	}
	defer rows.Close()

	var items []types.WatchItem
	for rows.Next() {
		var w types.WatchItem
		if err := rows.Scan(&w.AccountID, &w.Symbol, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watch: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (q *queries) CreateAlert(ctx context.Context, alert types.Alert) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO alerts (id, account_id, symbol, target_price, direction, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		alert.ID, alert.AccountID, alert.Symbol, alert.TargetPrice, string(alert.Direction), alert.Note, alert.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAlert
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (q *queries) DeleteAlert(ctx context.Context, accountID int64, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM alerts WHERE account_id = $1 AND id = $2`, accountID, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s %w", id, ErrNotFound)
	}
	return nil
}

func (q *queries) ListAlerts(ctx context.Context, accountID int64) ([]types.Alert, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, account_id, symbol, target_price, direction, note, created_at
		FROM alerts
		WHERE account_id = $1
		ORDER BY created_at`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var a types.Alert
		var direction string
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Symbol, &a.TargetPrice, &direction, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Direction = types.AlertDirection(direction)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
