// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds a monetary value to 2 decimal places (half-up).
// Intermediate arithmetic keeps full precision; rounding happens only
// at the persistence boundary.
func Round2(m Money) Money {
	return m.Round(2)
}

// MulInt multiplies a Money value by an integer count.
func MulInt(m Money, n int64) Money {
	return m.Mul(decimal.NewFromInt(n))
}

// DivInt divides a Money value by an integer count with full precision.
// Caller must guarantee n != 0.
func DivInt(m Money, n int64) Money {
	return m.Div(decimal.NewFromInt(n))
}
