package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocksim/types"
)

var errConstraint = errors.New("constraint violation")

type positionKey struct {
	accountID int64
	symbol    string
}

// MemoryStore keeps everything in process memory. It has a single writer:
// InTx holds writeMu for the whole unit and buffers its writes until commit.
type MemoryStore struct {
	writeMu sync.Mutex

	mu           sync.RWMutex
	nextID       int64
	accounts     map[int64]types.Account
	usernames    map[string]int64
	positions    map[positionKey]types.Position
	transactions []types.Transaction
	txIndex      map[uuid.UUID]int
	watch        map[int64][]types.WatchItem
	alerts       map[int64][]types.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[int64]types.Account),
		usernames: make(map[string]int64),
		positions: make(map[positionKey]types.Position),
		txIndex:   make(map[uuid.UUID]int),
		watch:     make(map[int64][]types.WatchItem),
		alerts:    make(map[int64][]types.Alert),
	}
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	tx := &memTx{
		store:     m,
		cash:      make(map[int64]decimal.Decimal),
		positions: make(map[positionKey]*types.Position),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.apply(tx)
	return nil
}

func (m *MemoryStore) apply(tx *memTx) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, cash := range tx.cash {
		acct := m.accounts[id]
		acct.Cash = cash
		m.accounts[id] = acct
	}
	for key, pos := range tx.positions {
		if pos == nil {
			delete(m.positions, key)
			continue
		}
		m.positions[key] = *pos
	}
	for _, t := range tx.txs {
		m.txIndex[t.ID] = len(m.transactions)
		m.transactions = append(m.transactions, t)
	}
}

func (m *MemoryStore) CreateAccount(_ context.Context, acct types.Account) (types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usernames[acct.Username]; ok {
		return types.Account{}, fmt.Errorf("%s: %w", acct.Username, ErrUsernameTaken)
	}
	if acct.Cash.IsNegative() {
		return types.Account{}, fmt.Errorf("negative cash: %w", errConstraint)
	}
	m.nextID++
	acct.ID = m.nextID
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = time.Now().UTC()
	}
	m.accounts[acct.ID] = acct
	m.usernames[acct.Username] = acct.ID
	return acct, nil
}

func (m *MemoryStore) GetAccount(_ context.Context, accountID int64) (types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return types.Account{}, fmt.Errorf("account %d %w", accountID, ErrNotFound)
	}
	return acct, nil
}

func (m *MemoryStore) GetAccountByUsername(_ context.Context, username string) (types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usernames[username]
	if !ok {
		return types.Account{}, fmt.Errorf("username %s %w", username, ErrNotFound)
	}
	return m.accounts[id], nil
}

func (m *MemoryStore) ListAccounts(_ context.Context) ([]types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]types.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	slices.SortFunc(accounts, func(a, b types.Account) int {
		return int(a.ID - b.ID)
	})
	return accounts, nil
}

func (m *MemoryStore) ListPositions(_ context.Context, accountID int64) ([]types.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var positions []types.Position
	for key, p := range m.positions {
		if key.accountID == accountID {
			positions = append(positions, p)
		}
	}
	slices.SortFunc(positions, func(a, b types.Position) int {
		switch {
		case a.Symbol < b.Symbol:
			return -1
		case a.Symbol > b.Symbol:
			return 1
		}
		return 0
	})
	return positions, nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, accountID int64) ([]types.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var txs []types.Transaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (m *MemoryStore) GetTransaction(_ context.Context, id uuid.UUID) (types.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.txIndex[id]
	if !ok {
		return types.Transaction{}, fmt.Errorf("transaction %s %w", id, ErrNotFound)
	}
	return m.transactions[i], nil
}

func (m *MemoryStore) AddWatch(_ context.Context, item types.WatchItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.watch[item.AccountID] {
		if w.Symbol == item.Symbol {
			return nil
		}
	}
	m.watch[item.AccountID] = append(m.watch[item.AccountID], item)
	return nil
}

func (m *MemoryStore) RemoveWatch(_ context.Context, accountID int64, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.watch[accountID]
	for i, w := range items {
		if w.Symbol == symbol {
			m.watch[accountID] = slices.Delete(items, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("watch %s %w", symbol, ErrNotFound)
}

func (m *MemoryStore) ListWatch(_ context.Context, accountID int64) ([]types.WatchItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.watch[accountID]), nil
}

func (m *MemoryStore) CreateAlert(_ context.Context, alert types.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.alerts[alert.AccountID] {
		if a.Symbol == alert.Symbol && a.Direction == alert.Direction && a.TargetPrice.Equal(alert.TargetPrice) {
			return ErrDuplicateAlert
		}
	}
	m.alerts[alert.AccountID] = append(m.alerts[alert.AccountID], alert)
	return nil
}

func (m *MemoryStore) DeleteAlert(_ context.Context, accountID int64, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alerts := m.alerts[accountID]
	for i, a := range alerts {
		if a.ID == id {
			m.alerts[accountID] = slices.Delete(alerts, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("alert %s %w", id, ErrNotFound)
}

func (m *MemoryStore) ListAlerts(_ context.Context, accountID int64) ([]types.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.alerts[accountID]), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}

// memTx buffers writes over the committed state. A nil position marks a delete.
type memTx struct {
	store     *MemoryStore
	cash      map[int64]decimal.Decimal
	positions map[positionKey]*types.Position
	txs       []types.Transaction
}

func (t *memTx) LockAccount(ctx context.Context, accountID int64) (types.Account, error) {
	acct, err := t.store.GetAccount(ctx, accountID)
	if err != nil {
		return types.Account{}, err
	}
	if cash, ok := t.cash[accountID]; ok {
		acct.Cash = cash
	}
	return acct, nil
}

func (t *memTx) GetPosition(_ context.Context, accountID int64, symbol string) (*types.Position, error) {
	key := positionKey{accountID, symbol}
	if pos, ok := t.positions[key]; ok {
		if pos == nil {
			return nil, nil
		}
		p := *pos
		return &p, nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	p, ok := t.store.positions[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *memTx) UpdateCash(ctx context.Context, accountID int64, cash decimal.Decimal) error {
	if cash.IsNegative() {
		return fmt.Errorf("update cash: negative balance %s: %w", cash, errConstraint)
	}
	if _, err := t.store.GetAccount(ctx, accountID); err != nil {
		return err
	}
	t.cash[accountID] = cash
	return nil
}

func (t *memTx) UpsertPosition(_ context.Context, pos types.Position) error {
	if pos.Shares <= 0 || !pos.AvgPrice.IsPositive() {
		return fmt.Errorf("upsert position: %d shares at %s: %w", pos.Shares, pos.AvgPrice, errConstraint)
	}
	t.positions[positionKey{pos.AccountID, pos.Symbol}] = &pos
	return nil
}

func (t *memTx) DeletePosition(ctx context.Context, accountID int64, symbol string) error {
	existing, err := t.GetPosition(ctx, accountID, symbol)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("position %d/%s %w", accountID, symbol, ErrNotFound)
	}
	t.positions[positionKey{accountID, symbol}] = nil
	return nil
}

func (t *memTx) InsertTransaction(_ context.Context, tx types.Transaction) error {
	t.store.mu.RLock()
	_, dup := t.store.txIndex[tx.ID]
	t.store.mu.RUnlock()
	if dup || slices.ContainsFunc(t.txs, func(o types.Transaction) bool { return o.ID == tx.ID }) {
		return fmt.Errorf("insert transaction %s: duplicate id: %w", tx.ID, errConstraint)
	}
	if tx.Shares <= 0 || !tx.Price.IsPositive() || !tx.Side.Valid() {
		return fmt.Errorf("insert transaction: %w", errConstraint)
	}
	t.txs = append(t.txs, tx)
	return nil
}
