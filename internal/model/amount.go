package model

import "github.com/shopspring/decimal"

// Amount is a signed monetary value. Debits are negative, credits are
// zero or positive.
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps an already-signed value.
func NewAmount(value decimal.Decimal) Amount {
	return Amount{value: value}
}

// Debit returns -|value|.
func Debit(value decimal.Decimal) Amount {
	return Amount{value: value.Abs().Neg()}
}

// Credit returns |value|.
func Credit(value decimal.Decimal) Amount {
	return Amount{value: value.Abs()}
}

// Value returns the signed value.
func (a Amount) Value() decimal.Decimal {
	return a.value
}

// IsNegative reports whether the amount reduces the balance.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// Magnitude returns the absolute value.
func (a Amount) Magnitude() decimal.Decimal {
	return a.value.Abs()
}

// Equal compares two amounts numerically.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

func (a Amount) String() string {
	return a.value.StringFixed(2)
}
