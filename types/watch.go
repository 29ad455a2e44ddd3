package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WatchItem struct {
	AccountID int64     `json:"accountId"`
	Symbol    string    `json:"symbol"`
	AddedAt   time.Time `json:"addedAt"`
}

type AlertDirection string

const (
	AlertAbove AlertDirection = "above"
	AlertBelow AlertDirection = "below"
)

type Alert struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   int64           `json:"accountId"`
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Direction   AlertDirection  `json:"direction"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Triggered reports whether price has crossed the alert's target.
func (a Alert) Triggered(price decimal.Decimal) bool {
	if a.Direction == AlertAbove {
		return price.GreaterThanOrEqual(a.TargetPrice)
	}
	return price.LessThanOrEqual(a.TargetPrice)
}
