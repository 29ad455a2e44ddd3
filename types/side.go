package types

import (
	"fmt"
	"strings"
)

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideTypeBuy:
		return SideTypeBuy, nil
	case SideTypeSell:
		return SideTypeSell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

func (s Side) Valid() bool {
	return s == SideTypeBuy || s == SideTypeSell
}
