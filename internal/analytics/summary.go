// Package analytics computes read-only aggregates over a categorized table.
// Every function is pure: it never modifies its input and returns fresh
// values.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the headline KPIs.
type Summary struct {
	Income      decimal.Decimal
	Expense     decimal.Decimal // unsigned
	Net         decimal.Decimal
	SavingsRate decimal.Decimal // percent of income, 2 places
}

// SummaryKPIs totals income and expense. SavingsRate is zero when there is no
// income.
func SummaryKPIs(t model.Table) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, row := range t.Rows() {
		switch {
		case row.IsIncome():
			income = income.Add(row.AbsAmount())
		case row.IsExpense():
			expense = expense.Add(row.AbsAmount())
		}
	}

	s := Summary{
		Income:      income,
		Expense:     expense,
		Net:         income.Sub(expense),
		SavingsRate: decimal.Zero,
	}
	if income.IsPositive() {
		s.SavingsRate = s.Net.Div(income).Mul(hundred).Round(2)
	}
	return s
}
