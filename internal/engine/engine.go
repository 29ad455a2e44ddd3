package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/quote"
	"stocksim/types"
)

type Engine struct {
	store  ledgerStore
	quotes quote.Source
	cfg    Config
	logger *zap.Logger
	locks  accountLocks

	now   func() time.Time
	newID func() uuid.UUID
}

func NewEngine(store ledgerStore, quotes quote.Source, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = types.DefaultCurrency
	}
	return &Engine{
		store:  store,
		quotes: quotes,
		cfg:    cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// TradeResult describes an executed trade. Position is nil after a sell that
// closed it; RealizedGain is only set for sells.
type TradeResult struct {
	Success       bool              `json:"success"`
	Transaction   types.Transaction `json:"transaction"`
	ExecutedPrice decimal.Decimal   `json:"executedPrice"`
	NewCash       decimal.Decimal   `json:"newCash"`
	Position      *types.Position   `json:"position"`
	RealizedGain  *decimal.Decimal  `json:"realizedGain,omitempty"`
	Message       string            `json:"message"`
}

// ExecuteTrade prices the request, validates it and applies the cash change,
// position change and log append as one unit. Trades on the same account run
// one at a time.
func (e *Engine) ExecuteTrade(ctx context.Context, req types.TradeRequest) (*TradeResult, error) {
	req.Symbol = types.NormalizeSymbol(req.Symbol)
	if err := e.checkRequest(req); err != nil {
		e.reject(req, err)
		return nil, err
	}

	price, err := e.price(ctx, req.Symbol)
	if err != nil {
		e.reject(req, err)
		return nil, err
	}

	unlock := e.locks.lock(req.AccountID)
	defer unlock()

	var result *TradeResult
	err = e.store.InTx(ctx, func(ctx context.Context, tx ledgerTx) error {
		var err error
		result, err = e.execute(ctx, tx, req, price)
		return err
	})
	if err != nil {
		err = classify(err)
		e.reject(req, err)
		return nil, err
	}

	e.logger.Info("trade executed",
		zap.Int64("account_id", req.AccountID),
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.Int64("shares", req.Shares),
		zap.String("price", price.String()),
		zap.String("cash", result.NewCash.String()),
	)
	return result, nil
}

func (e *Engine) execute(ctx context.Context, tx ledgerTx, req types.TradeRequest, price decimal.Decimal) (*TradeResult, error) {
	acct, err := tx.LockAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	pos, err := tx.GetPosition(ctx, req.AccountID, req.Symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateTrade(req.Side, req.Shares, price, acct.Cash, pos); err != nil {
		return nil, err
	}

	now := e.now()
	total := price.Mul(decimal.NewFromInt(req.Shares))
	result := &TradeResult{Success: true, ExecutedPrice: price}

	switch req.Side {
	case types.SideTypeBuy:
		next := applyBuy(pos, req.AccountID, req.Symbol, req.Shares, price, now)
		if err := tx.UpsertPosition(ctx, next); err != nil {
			return nil, err
		}
		result.NewCash = acct.Cash.Sub(total)
		result.Position = &next
	case types.SideTypeSell:
		next, gain := applySell(*pos, req.Shares, price, now)
		if next == nil {
			err = tx.DeletePosition(ctx, req.AccountID, req.Symbol)
		} else {
			err = tx.UpsertPosition(ctx, *next)
		}
		if err != nil {
			return nil, err
		}
		result.NewCash = acct.Cash.Add(total)
		result.Position = next
		result.RealizedGain = &gain
	}

	if err := tx.UpdateCash(ctx, req.AccountID, result.NewCash); err != nil {
		return nil, err
	}

	result.Transaction = types.Transaction{
		ID:        e.newID(),
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Shares:    req.Shares,
		Price:     price,
		Side:      req.Side,
		Timestamp: now,
	}
	if err := tx.InsertTransaction(ctx, result.Transaction); err != nil {
		return nil, err
	}

	result.Message = e.tradeMessage(req, price)
	return result, nil
}

func (e *Engine) checkRequest(req types.TradeRequest) error {
	if req.Shares <= 0 {
		return ErrInvalidQuantity
	}
	if !req.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, req.Side)
	}
	if !types.ValidSymbol(req.Symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, req.Symbol)
	}
	return nil
}

// price fetches the execution price rounded to the currency's minor unit.
func (e *Engine) price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	p, err := quote.Lookup(ctx, e.quotes, symbol, e.cfg.QuoteTimeout)
	if err != nil {
		return decimal.Zero, priceError(symbol, err)
	}
	p = types.RoundToMinor(p, e.cfg.Currency)
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w: rounds to %s", symbol, ErrPriceUnavailable, p)
	}
	return p, nil
}

func (e *Engine) tradeMessage(req types.TradeRequest, price decimal.Decimal) string {
	verb := "Bought"
	if req.Side == types.SideTypeSell {
		verb = "Sold"
	}
	return fmt.Sprintf("%s %d shares of %s at %s", verb, req.Shares, req.Symbol, types.FormatMoney(price, e.cfg.Currency))
}

func (e *Engine) reject(req types.TradeRequest, err error) {
	fields := []zap.Field{
		zap.Int64("account_id", req.AccountID),
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.Int64("shares", req.Shares),
		zap.String("kind", string(KindOf(err))),
		zap.Error(err),
	}
	if errors.Is(err, ErrLedgerInconsistency) {
		e.logger.Error("trade rollback failed", fields...)
		return
	}
	e.logger.Warn("trade rejected", fields...)
}

// classify leaves domain errors as they are and marks everything else from the
// store as a persistence failure.
func classify(err error) error {
	switch KindOf(err) {
	case KindUnknown:
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	default:
		return err
	}
}
