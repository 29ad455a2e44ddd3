package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stocksim/types"
)

// ValidateTrade decides whether a trade of shares at price may execute against
// cash and the existing position (nil when none). It has no side effects.
func ValidateTrade(side types.Side, shares int64, price, cash decimal.Decimal, pos *types.Position) error {
	if shares <= 0 {
		return ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: non-positive price %s", ErrPriceUnavailable, price)
	}

	switch side {
	case types.SideTypeBuy:
		cost := price.Mul(decimal.NewFromInt(shares))
		if cost.GreaterThan(cash) {
			return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, cost, cash)
		}
	case types.SideTypeSell:
		if pos == nil {
			return ErrNoPosition
		}
		if pos.Shares < shares {
			return fmt.Errorf("%w: hold %d, selling %d", ErrInsufficientShares, pos.Shares, shares)
		}
	default:
		return ErrInvalidSide
	}
	return nil
}
