package types

import (
	"github.com/shopspring/decimal"
)

type Quote struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Valid  bool             `json:"valid"`
}
