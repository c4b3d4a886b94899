package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// MonthlyPoint is one month of the trend.
type MonthlyPoint struct {
	Month   model.Month
	Income  decimal.Decimal
	Expense decimal.Decimal // unsigned
	Net     decimal.Decimal
}

// MonthlyTrend returns income, expense, and net per calendar month, oldest
// first. Months with no transactions are absent.
func MonthlyTrend(t model.Table) []MonthlyPoint {
	return monthlyTotals(t)
}

// monthlyTotals is the shared month aggregate behind the trend and the
// anomaly detector.
func monthlyTotals(t model.Table) []MonthlyPoint {
	byMonth := make(map[model.Month]*MonthlyPoint)
	for _, row := range t.Rows() {
		m := row.Month()
		p, ok := byMonth[m]
		if !ok {
			p = &MonthlyPoint{Month: m, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[m] = p
		}
		switch {
		case row.IsIncome():
			p.Income = p.Income.Add(row.AbsAmount())
		case row.IsExpense():
			p.Expense = p.Expense.Add(row.AbsAmount())
		}
	}

	points := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		p.Net = p.Income.Sub(p.Expense)
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Month.Before(points[j].Month)
	})
	return points
}
