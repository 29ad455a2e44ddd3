package engine

import (
	"errors"
	"fmt"

	"stocksim/internal/quote"
	"stocksim/internal/repository"
)

// Kind classifies an error for the request boundary.
type Kind string

const (
	KindInvalidQuantity     Kind = "InvalidQuantity"
	KindInvalidSide         Kind = "InvalidSide"
	KindInvalidSymbol       Kind = "InvalidSymbol"
	KindPriceUnavailable    Kind = "PriceUnavailable"
	KindInsufficientFunds   Kind = "InsufficientFunds"
	KindInsufficientShares  Kind = "InsufficientShares"
	KindNoPosition          Kind = "NoPosition"
	KindNotFound            Kind = "NotFound"
	KindForbidden           Kind = "Forbidden"
	KindPersistenceFailure  Kind = "PersistenceFailure"
	KindLedgerInconsistency Kind = "LedgerInconsistency"
	KindUnknown             Kind = "Unknown"
)

var (
	ErrInvalidQuantity    = errors.New("shares must be a positive whole number")
	ErrInvalidSide        = errors.New("side must be BUY or SELL")
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrPriceUnavailable   = errors.New("price unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNoPosition         = errors.New("no position in symbol")
	ErrNotOwner           = errors.New("transaction belongs to another account")
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrLedgerInconsistency means a failed trade could not be rolled back.
	// Cash, positions and the log may disagree until an operator reconciles.
	ErrLedgerInconsistency = repository.ErrLedgerInconsistency
)

var kinds = []struct {
	err  error
	kind Kind
}{
	// Inconsistency is checked first: it wraps the error that caused the rollback.
	{ErrLedgerInconsistency, KindLedgerInconsistency},
	{ErrInvalidQuantity, KindInvalidQuantity},
	{ErrInvalidSide, KindInvalidSide},
	{ErrInvalidSymbol, KindInvalidSymbol},
	{quote.ErrUnknownSymbol, KindInvalidSymbol},
	{ErrPriceUnavailable, KindPriceUnavailable},
	{quote.ErrUnavailable, KindPriceUnavailable},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrInsufficientShares, KindInsufficientShares},
	{ErrNoPosition, KindNoPosition},
	{ErrNotOwner, KindForbidden},
	{repository.ErrNotFound, KindNotFound},
	{ErrPersistenceFailure, KindPersistenceFailure},
}

// KindOf returns the kind of the first known error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

var messages = map[Kind]string{
	KindInvalidQuantity:     "Please enter a positive whole number of shares.",
	KindInvalidSide:         "Orders must be either a buy or a sell.",
	KindInvalidSymbol:       "That symbol is not recognised.",
	KindPriceUnavailable:    "A price for that symbol is not available right now. Please try again.",
	KindInsufficientFunds:   "You do not have enough cash for this purchase.",
	KindInsufficientShares:  "You do not own enough shares to sell.",
	KindNoPosition:          "You do not own any shares of that symbol.",
	KindNotFound:            "Not found.",
	KindForbidden:           "You do not have access to that record.",
	KindPersistenceFailure:  "The trade could not be saved. No changes were made.",
	KindLedgerInconsistency: "The trade failed and could not be fully undone. An operator has been notified.",
	KindUnknown:             "Something went wrong.",
}

// Message returns the user-facing text for a kind.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}

// priceError turns an oracle failure into ErrInvalidSymbol or ErrPriceUnavailable.
func priceError(symbol string, err error) error {
	if errors.Is(err, quote.ErrUnknownSymbol) {
		return fmt.Errorf("%s: %w: %w", symbol, ErrInvalidSymbol, err)
	}
	return fmt.Errorf("%s: %w: %w", symbol, ErrPriceUnavailable, err)
}
