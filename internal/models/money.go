package models

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount tagged with an ISO 4217 currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a Money value.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// NewMoneyFromFloat creates a Money value from a float amount.
func NewMoneyFromFloat(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// MulInt returns m multiplied by an integer quantity.
func (m Money) MulInt(n int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(n))), Currency: m.Currency}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// ToFloat returns the amount as a float64 for display and logging only.
func (m Money) ToFloat() float64 {
	f, _ := m.Amount.Float64()
	return f
}
