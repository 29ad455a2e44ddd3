package api

import (
	"github.com/shopspring/decimal"

	"stocksim/internal/auth"
	"stocksim/types"
)

// CredentialsRequest is the body of POST /api/register and /api/login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Account types.Account `json:"account"`
	Session auth.Session  `json:"session"`
}

// TradeRequest is the body of POST /api/trades.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Shares int64  `json:"shares"`
}

// WatchRequest is the body of POST /api/watchlist.
type WatchRequest struct {
	Symbol string `json:"symbol"`
}

// AlertRequest is the body of POST /api/alerts.
type AlertRequest struct {
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
	Direction   string          `json:"direction"`
	Note        string          `json:"note"`
}

// ErrorResponse carries an error kind and a message safe to show users.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
