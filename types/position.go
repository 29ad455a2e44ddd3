package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an account's holding of one symbol. It only exists while Shares > 0.
type Position struct {
	AccountID int64           `json:"accountId"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	AvgPrice  decimal.Decimal `json:"avgPrice"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CostBasis is the total amount paid for the shares still held.
func (p Position) CostBasis() decimal.Decimal {
	return p.AvgPrice.Mul(decimal.NewFromInt(p.Shares))
}

func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Shares))
}
