package types

import (
	"strings"
)

// TradeRequest is a market order for a whole number of shares.
type TradeRequest struct {
	AccountID int64
	Symbol    string
	Side      Side
	Shares    int64
}

func NewTradeRequest(accountID int64, symbol string, side Side, shares int64) TradeRequest {
	return TradeRequest{
		AccountID: accountID,
		Symbol:    NormalizeSymbol(symbol),
		Side:      side,
		Shares:    shares,
	}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidSymbol reports whether symbol looks like a ticker: 1-10 characters of
// A-Z, 0-9, '.' or '-'.
func ValidSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 10 {
		return false
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
