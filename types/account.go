package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStartingCash is credited to every account at registration.
var DefaultStartingCash = decimal.NewFromInt(10000)

type Account struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Cash         decimal.Decimal `json:"cash"`
	Currency     string          `json:"currency"`
	CreatedAt    time.Time       `json:"createdAt"`
}
