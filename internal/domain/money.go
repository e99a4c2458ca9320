package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cent is the smallest displayed currency unit.
var Cent = decimal.New(1, -2)

// FormatMoney renders d with two decimals. Half-cent values round to even.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixedBank(2)
}

// ParseMoney parses an exact decimal, tolerating a leading "$" and surrounding blanks.
func ParseMoney(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MoneyPtr returns a pointer to a copy of d.
func MoneyPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// MustMoney parses s and panics on failure. Intended for literals in tests and seeds.
func MustMoney(s string) decimal.Decimal {
	d, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return d
}

func equalMoneyPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
