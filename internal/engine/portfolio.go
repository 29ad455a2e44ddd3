package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stocksim/types"
)

// AvgPricePlaces is the scale average cost basis is kept at. It matches the
// precision of decimal division so a fill never loses more than that.
const AvgPricePlaces = 16

// applyBuy returns the position after buying shares at price. pos is nil for a
// first buy.
func applyBuy(pos *types.Position, accountID int64, symbol string, shares int64, price decimal.Decimal, now time.Time) types.Position {
	if pos == nil {
		return types.Position{
			AccountID: accountID,
			Symbol:    symbol,
			Shares:    shares,
			AvgPrice:  price,
			UpdatedAt: now,
		}
	}
	next := *pos
	next.AvgPrice = weightedAvg(pos.AvgPrice, decimal.NewFromInt(pos.Shares), price, decimal.NewFromInt(shares)).
		Round(AvgPricePlaces)
	next.Shares = pos.Shares + shares
	next.UpdatedAt = now
	return next
}

// applySell returns the position left after selling shares, nil when none
// remain, and the gain realized against the average cost.
func applySell(pos types.Position, shares int64, price decimal.Decimal, now time.Time) (*types.Position, decimal.Decimal) {
	realized := realizedGain(price, pos.AvgPrice, shares)
	if pos.Shares == shares {
		return nil, realized
	}
	next := pos
	next.Shares = pos.Shares - shares
	next.UpdatedAt = now
	return &next, realized
}

func realizedGain(price, avgPrice decimal.Decimal, shares int64) decimal.Decimal {
	return price.Sub(avgPrice).Mul(decimal.NewFromInt(shares))
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}

// portfolio is an in-memory book that applies transactions with the same
// rules as live trading.
type portfolio struct {
	accountID int64
	cash      decimal.Decimal
	positions map[string]*types.Position
	realized  map[string]decimal.Decimal
	applied   int
}

func newPortfolio(accountID int64, initialCash decimal.Decimal) *portfolio {
	return &portfolio{
		accountID: accountID,
		cash:      initialCash,
		positions: make(map[string]*types.Position),
		realized:  make(map[string]decimal.Decimal),
	}
}

func (p *portfolio) process(tx types.Transaction) error {
	pos := p.positions[tx.Symbol]
	if err := ValidateTrade(tx.Side, tx.Shares, tx.Price, p.cash, pos); err != nil {
		return fmt.Errorf("transaction %s (%s %d %s @ %s): %w", tx.ID, tx.Side, tx.Shares, tx.Symbol, tx.Price, err)
	}

	total := tx.Total()
	switch tx.Side {
	case types.SideTypeBuy:
		next := applyBuy(pos, p.accountID, tx.Symbol, tx.Shares, tx.Price, tx.Timestamp)
		p.positions[tx.Symbol] = &next
		p.cash = p.cash.Sub(total)
	case types.SideTypeSell:
		next, gain := applySell(*pos, tx.Shares, tx.Price, tx.Timestamp)
		if next == nil {
			delete(p.positions, tx.Symbol)
		} else {
			p.positions[tx.Symbol] = next
		}
		p.realized[tx.Symbol] = p.realized[tx.Symbol].Add(gain)
		p.cash = p.cash.Add(total)
	}
	p.applied++
	return nil
}
