package types

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

// MinorUnits returns the number of decimal places of a currency, 2 when unknown.
func MinorUnits(currency string) int32 {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return 2
	}
	return int32(cur.Fraction)
}

// RoundToMinor rounds an amount to the currency's minor unit.
func RoundToMinor(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(MinorUnits(currency))
}

// FormatMoney renders an amount with the currency symbol, e.g. "$1,500.00".
func FormatMoney(amount decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(MinorUnits(currency)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}
