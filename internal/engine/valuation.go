package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/quote"
	"stocksim/types"
)

var hundred = decimal.NewFromInt(100)

// PositionValue is a position marked to the current price. Price and the
// values derived from it are nil when no price was available.
type PositionValue struct {
	Symbol            string           `json:"symbol"`
	Shares            int64            `json:"shares"`
	AvgPrice          decimal.Decimal  `json:"avgPrice"`
	CostBasis         decimal.Decimal  `json:"costBasis"`
	Price             *decimal.Decimal `json:"price"`
	TotalValue        *decimal.Decimal `json:"totalValue"`
	UnrealizedGain    *decimal.Decimal `json:"unrealizedGain"`
	UnrealizedGainPct *decimal.Decimal `json:"unrealizedGainPct"`
	RealizedGain      decimal.Decimal  `json:"realizedGain"`
}

func (v PositionValue) Priced() bool {
	return v.Price != nil
}

// PortfolioReport values an account. Unpriced lists symbols left out of
// PortfolioValue because the oracle had no price for them.
type PortfolioReport struct {
	AccountID         int64                      `json:"accountId"`
	Currency          string                     `json:"currency"`
	Cash              decimal.Decimal            `json:"cash"`
	Positions         []PositionValue            `json:"positions"`
	PortfolioValue    decimal.Decimal            `json:"portfolioValue"`
	TotalAccountValue decimal.Decimal            `json:"totalAccountValue"`
	Unpriced          []string                   `json:"unpriced"`
	RealizedGains     map[string]decimal.Decimal `json:"realizedGains"`
	TotalRealizedGain decimal.Decimal            `json:"totalRealizedGain"`
	GeneratedAt       time.Time                  `json:"generatedAt"`
}

// GetPortfolio values every position at the current price. Nothing is written.
func (e *Engine) GetPortfolio(ctx context.Context, accountID int64) (*PortfolioReport, error) {
	acct, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	positions, err := e.store.ListPositions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	prices, err := quote.Batch(ctx, e.quotes, symbols, e.cfg.Concurrency, e.cfg.QuoteTimeout)
	if err != nil {
		return nil, err
	}

	report := valuePositions(acct, positions, prices, e.cfg.Currency)
	report.GeneratedAt = e.now()

	realized, err := e.realizedGains(ctx, accountID)
	if err != nil {
		e.logger.Warn("realized gains unavailable", zap.Int64("account_id", accountID), zap.Error(err))
	} else {
		report.RealizedGains = realized
		for i := range report.Positions {
			report.Positions[i].RealizedGain = realized[report.Positions[i].Symbol]
		}
		for _, g := range realized {
			report.TotalRealizedGain = report.TotalRealizedGain.Add(g)
		}
	}
	return report, nil
}

func valuePositions(acct types.Account, positions []types.Position, prices map[string]quote.Result, currency string) *PortfolioReport {
	report := &PortfolioReport{
		AccountID:     acct.ID,
		Currency:      currency,
		Cash:          acct.Cash,
		Positions:     make([]PositionValue, 0, len(positions)),
		Unpriced:      []string{},
		RealizedGains: map[string]decimal.Decimal{},
	}

	for _, p := range positions {
		v := PositionValue{
			Symbol:    p.Symbol,
			Shares:    p.Shares,
			AvgPrice:  p.AvgPrice,
			CostBasis: p.CostBasis(),
		}
		res := prices[p.Symbol]
		if res.Err != nil || !res.Price.IsPositive() {
			report.Unpriced = append(report.Unpriced, p.Symbol)
			report.Positions = append(report.Positions, v)
			continue
		}

		price := types.RoundToMinor(res.Price, currency)
		total := p.MarketValue(price)
		gain := price.Sub(p.AvgPrice).Mul(decimal.NewFromInt(p.Shares))
		pct := price.Sub(p.AvgPrice).Div(p.AvgPrice).Mul(hundred).Round(2)

		v.Price = &price
		v.TotalValue = &total
		v.UnrealizedGain = &gain
		v.UnrealizedGainPct = &pct
		report.Positions = append(report.Positions, v)
		report.PortfolioValue = report.PortfolioValue.Add(total)
	}

	report.TotalAccountValue = report.Cash.Add(report.PortfolioValue)
	return report
}

func (e *Engine) realizedGains(ctx context.Context, accountID int64) (map[string]decimal.Decimal, error) {
	txs, err := e.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	replayed, err := Replay(accountID, e.cfg.StartingCash, txs)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return replayed.RealizedGains, nil
}
