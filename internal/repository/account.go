package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"stocksim/types"
)

// queries holds the SQL shared by pool reads and transactional writes.
type queries struct {
	db dbtx
}

const accountColumns = `id, username, password_hash, cash, currency, created_at`

func scanAccount(row pgx.Row) (types.Account, error) {
	var a types.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Cash, &a.Currency, &a.CreatedAt)
	return a, err
}

// CreateAccount inserts a new account and returns it with its assigned id.
func (q *queries) CreateAccount(ctx context.Context, acct types.Account) (types.Account, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO accounts (username, password_hash, cash, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		acct.Username, acct.PasswordHash, acct.Cash, acct.Currency, acct.CreatedAt,
	)
	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Account{}, fmt.Errorf("%s: %w", acct.Username, ErrUsernameTaken)
		}
		return types.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// GetAccount retrieves an account by id.
func (q *queries) GetAccount(ctx context.Context, accountID int64) (types.Account, error) {
	row := q.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	a, err := scanAccount(row)
	return accountResult(a, err, fmt.Sprintf("account %d", accountID))
}

// GetAccountByUsername retrieves an account by its unique username.
func (q *queries) GetAccountByUsername(ctx context.Context, username string) (types.Account, error) {
	row := q.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	a, err := scanAccount(row)
	return accountResult(a, err, "username "+username)
}

// LockAccount reads an account with a row lock held until the transaction ends.
func (q *queries) LockAccount(ctx context.Context, accountID int64) (types.Account, error) {
	row := q.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, accountID)
	a, err := scanAccount(row)
	return accountResult(a, err, fmt.Sprintf("account %d", accountID))
}

func (q *queries) ListAccounts(ctx context.Context) ([]types.Account, error) {
	rows, err := q.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []types.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q *queries) UpdateCash(ctx context.Context, accountID int64, cash decimal.Decimal) error {
	tag, err := q.db.Exec(ctx, `UPDATE accounts SET cash = $2 WHERE id = $1`, accountID, cash)
	if err != nil {
		return fmt.Errorf("update cash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d %w", accountID, ErrNotFound)
	}
	return nil
}

func accountResult(a types.Account, err error, what string) (types.Account, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Account{}, fmt.Errorf("%s %w", what, ErrNotFound)
		}
		return types.Account{}, fmt.Errorf("get %s: %w", what, err)
	}
	return a, nil
}
