package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an executed trade. It is written once and never updated.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID int64           `json:"accountId"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Side      Side            `json:"side"`
	Timestamp time.Time       `json:"timestamp"`
}

// Total is the cash amount that changed hands.
func (t Transaction) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}
