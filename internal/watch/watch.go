// Package watch keeps per-account watchlists and price alerts.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/quote"
	"stocksim/internal/repository"
	"stocksim/types"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidTarget    = errors.New("target price must be positive")
	ErrInvalidDirection = errors.New("direction must be above or below")
	ErrDuplicateAlert   = repository.ErrDuplicateAlert
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	store       repository.Watchlists
	quotes      quote.Source
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(store repository.Watchlists, quotes quote.Source, timeout time.Duration, concurrency int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		quotes:      quotes,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Entry is a watched symbol with its current price, nil when unavailable.
type Entry struct {
	Symbol  string           `json:"symbol"`
	AddedAt time.Time        `json:"addedAt"`
	Price   *decimal.Decimal `json:"price"`
}

// AlertStatus is an alert evaluated against the current price.
type AlertStatus struct {
	types.Alert
	CurrentPrice  *decimal.Decimal `json:"currentPrice"`
	Triggered     bool             `json:"triggered"`
	Difference    *decimal.Decimal `json:"difference"`
	DifferencePct *decimal.Decimal `json:"differencePct"`
}

// Add watches symbol. Unknown symbols are refused so the list only holds
// tickers the oracle can price.
func (s *Service) Add(ctx context.Context, accountID int64, symbol string) (types.WatchItem, error) {
	symbol, err := s.checkSymbol(ctx, symbol)
	if err != nil {
		return types.WatchItem{}, err
	}
	item := types.WatchItem{AccountID: accountID, Symbol: symbol, AddedAt: s.now()}
	if err := s.store.AddWatch(ctx, item); err != nil {
		return types.WatchItem{}, err
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, accountID int64, symbol string) error {
	return s.store.RemoveWatch(ctx, accountID, types.NormalizeSymbol(symbol))
}

func (s *Service) List(ctx context.Context, accountID int64) ([]Entry, error) {
	items, err := s.store.ListWatch(ctx, accountID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(items))
	for i, it := range items {
		symbols[i] = it.Symbol
	}
	prices, err := quote.Batch(ctx, s.quotes, symbols, s.concurrency, s.timeout)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(items))
	for i, it := range items {
		entries[i] = Entry{Symbol: it.Symbol, AddedAt: it.AddedAt}
		if res := prices[it.Symbol]; res.Err == nil {
			p := res.Price
			entries[i].Price = &p
		}
	}
	return entries, nil
}

type NewAlert struct {
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Direction   string          `json:"direction"`
	Note        string          `json:"note"`
}

func (s *Service) CreateAlert(ctx context.Context, accountID int64, in NewAlert) (types.Alert, error) {
	if !in.TargetPrice.IsPositive() {
		return types.Alert{}, ErrInvalidTarget
	}
	dir := types.AlertDirection(in.Direction)
	if dir != types.AlertAbove && dir != types.AlertBelow {
		return types.Alert{}, ErrInvalidDirection
	}
	symbol, err := s.checkSymbol(ctx, in.Symbol)
	if err != nil {
		return types.Alert{}, err
	}

	alert := types.Alert{
		ID:          uuid.New(),
		AccountID:   accountID,
		Symbol:      symbol,
		TargetPrice: in.TargetPrice,
		Direction:   dir,
		Note:        in.Note,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return types.Alert{}, err
	}
	s.logger.Info("alert created",
		zap.Int64("account_id", accountID),
		zap.String("symbol", symbol),
		zap.String("direction", string(dir)),
		zap.String("target", in.TargetPrice.String()),
	)
	return alert, nil
}

func (s *Service) DeleteAlert(ctx context.Context, accountID int64, id uuid.UUID) error {
	return s.store.DeleteAlert(ctx, accountID, id)
}

// Alerts lists the account's alerts evaluated at current prices.
func (s *Service) Alerts(ctx context.Context, accountID int64) ([]AlertStatus, error) {
	alerts, err := s.store.ListAlerts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var symbols []string
	for _, a := range alerts {
		if !seen[a.Symbol] {
			seen[a.Symbol] = true
			symbols = append(symbols, a.Symbol)
		}
	}
	prices, err := quote.Batch(ctx, s.quotes, symbols, s.concurrency, s.timeout)
	if err != nil {
		return nil, err
	}

	out := make([]AlertStatus, len(alerts))
	for i, a := range alerts {
		out[i] = evaluate(a, prices[a.Symbol])
	}
	return out, nil
}

func evaluate(a types.Alert, res quote.Result) AlertStatus {
	st := AlertStatus{Alert: a}
	if res.Err != nil {
		return st
	}
	price := res.Price
	diff := price.Sub(a.TargetPrice)
	pct := diff.Div(a.TargetPrice).Mul(hundred).Round(2)

	st.CurrentPrice = &price
	st.Triggered = a.Triggered(price)
	st.Difference = &diff
	st.DifferencePct = &pct
	return st
}

func (s *Service) checkSymbol(ctx context.Context, symbol string) (string, error) {
	symbol = types.NormalizeSymbol(symbol)
	if !types.ValidSymbol(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if _, err := quote.Lookup(ctx, s.quotes, symbol, s.timeout); errors.Is(err, quote.ErrUnknownSymbol) {
		return "", fmt.Errorf("%w: %w", ErrInvalidSymbol, err)
	}
	return symbol, nil
}
