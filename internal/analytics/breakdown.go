package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// CategorySpend is total expense for one category.
type CategorySpend struct {
	Category string
	Expense  decimal.Decimal
}

// MerchantSpend is total expense for one merchant.
type MerchantSpend struct {
	Merchant string
	Expense  decimal.Decimal
}

// ByCategory sums expense per category, largest first with ties broken by
// name. Income rows are excluded.
func ByCategory(t model.Table) []CategorySpend {
	totals := expenseBy(t, func(row model.Transaction) string { return row.Category })

	out := make([]CategorySpend, 0, len(totals))
	for k, v := range totals {
		out = append(out, CategorySpend{Category: k, Expense: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Expense.Cmp(out[j].Expense); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopMerchants returns at most n merchants by expense, largest first with
// ties broken by name. n <= 0 yields an empty result.
func TopMerchants(t model.Table, n int) []MerchantSpend {
	if n <= 0 {
		return []MerchantSpend{}
	}

	totals := expenseBy(t, func(row model.Transaction) string { return row.Merchant })

	out := make([]MerchantSpend, 0, len(totals))
	for k, v := range totals {
		out = append(out, MerchantSpend{Merchant: k, Expense: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Expense.Cmp(out[j].Expense); c != 0 {
			return c > 0
		}
		return out[i].Merchant < out[j].Merchant
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func expenseBy(t model.Table, key func(model.Transaction) string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, row := range t.Rows() {
		if !row.IsExpense() {
			continue
		}
		k := key(row)
		totals[k] = totals[k].Add(row.AbsAmount())
	}
	return totals
}
