package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction as money in or money out.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// TypeForAmount derives the type from the sign of a signed amount.
func TypeForAmount(amount decimal.Decimal) Type {
	if amount.IsNegative() {
		return TypeExpense
	}
	return TypeIncome
}

// Transaction is one row of the canonical table.
type Transaction struct {
	Date        time.Time // midnight UTC, no time-of-day
	Description string
	Amount      decimal.Decimal // positive = income, negative = expense
	Type        Type
	Category    string // empty until categorized
	Merchant    string
}

// AbsAmount returns the unsigned amount.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsExpense reports whether the row is money out.
func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// IsIncome reports whether the row is money in.
func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// Month returns the calendar month the transaction falls in.
func (t Transaction) Month() Month {
	return MonthOf(t.Date)
}

// DateOnly truncates a time to midnight UTC of the same calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
