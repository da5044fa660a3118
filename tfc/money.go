/*
Package tfc implements the Tax-Free Childcare top-up engine.

PURPOSE:
  This package contains the domain types and algorithms for the UK
  Tax-Free Childcare scheme: for every payment a parent makes toward
  childcare, the government contributes 20% on top, capped per child
  per rolling 3-month quarter.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A GBP amount backed by decimal.Decimal
  - Round2: The single rounding convention (half-up, 2 decimal places)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Boundary rounding: values are rounded once, when persisted or
     returned to a caller, never mid-calculation
  3. Purity: all calculations are side-effect-free functions

SEE ALSO:
  - quarter.go: Quarter window computation from a reconfirmation anchor
  - contribution.go: The parent/government split calculation
  - ledger.go: Payment persistence interface and derived sums
*/
package tfc

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - GBP amount with 2-decimal boundary rounding
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

// ParseMoney parses a decimal string ("123.45") into Money.
// Anything that is not a plain decimal number (including NaN, Inf,
// or empty input) is rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Value: d}, nil
}

func Zero() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(b Money) Money              { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money              { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money    { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                     { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool               { return m.Value.IsNegative() }
func (m Money) IsZero() bool                   { return m.Value.IsZero() }
func (m Money) IsPositive() bool               { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool       { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool          { return m.Value.LessThan(b.Value) }
func (m Money) Equal(b Money) bool             { return m.Value.Equal(b.Value) }
func (m Money) Min(b Money) Money              { if m.LessThan(b) { return m }; return b }
func (m Money) Max(b Money) Money              { if m.GreaterThan(b) { return m }; return b }

// Round2 rounds half-up to 2 decimal places. This is the only rounding
// convention in the system; it is applied at persistence and response
// boundaries, never between intermediate steps.
func (m Money) Round2() Money {
	return Money{Value: m.Value.Round(2)}
}

// Float64 returns the amount as a float64 for display/serialization only.
// Calculations always stay in decimal.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// String formats with exactly two decimal places ("80.00").
func (m Money) String() string {
	return m.Value.StringFixed(2)
}
