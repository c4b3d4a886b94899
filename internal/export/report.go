package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/spendlens/spendlens/internal/analytics"
)

// Result table file names written by WriteReport.
const (
	SummaryFile      = "summary.csv"
	MonthlyFile      = "monthly_trend.csv"
	CategoriesFile   = "by_category.csv"
	TopMerchantsFile = "top_merchants.csv"
	RecurringFile    = "recurring.csv"
	AnomaliesFile    = "anomalies.csv"
)

type summaryRow struct {
	Income      string `csv:"income"`
	Expense     string `csv:"expense"`
	Net         string `csv:"net"`
	SavingsRate string `csv:"savings_rate"`
}

type monthlyRow struct {
	Month   string `csv:"month"`
	Income  string `csv:"income"`
	Expense string `csv:"expense"`
	Net     string `csv:"net"`
}

type categoryRow struct {
	Category string `csv:"category"`
	Expense  string `csv:"expense"`
}

type merchantRow struct {
	Merchant string `csv:"merchant"`
	Expense  string `csv:"expense"`
}

type recurringRow struct {
	Merchant    string `csv:"merchant"`
	Amount      string `csv:"amount"`
	Frequency   string `csv:"frequency"`
	Occurrences int    `csv:"occurrences"`
	LastSeen    string `csv:"last_seen"`
}

type anomalyRow struct {
	Month        string `csv:"month"`
	Expense      string `csv:"expense"`
	TrailingMean string `csv:"trailing_mean"`
	Deviation    string `csv:"z_score"`
}

// WriteReport writes one CSV per result table into dir, creating it if
// needed, and returns the paths written.
func WriteReport(dir string, r *analytics.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}

	summary := []summaryRow{{
		Income:      r.Summary.Income.StringFixed(2),
		Expense:     r.Summary.Expense.StringFixed(2),
		Net:         r.Summary.Net.StringFixed(2),
		SavingsRate: r.Summary.SavingsRate.StringFixed(2),
	}}

	monthly := make([]monthlyRow, 0, len(r.Monthly))
	for _, p := range r.Monthly {
		monthly = append(monthly, monthlyRow{
			Month:   p.Month.String(),
			Income:  p.Income.StringFixed(2),
			Expense: p.Expense.StringFixed(2),
			Net:     p.Net.StringFixed(2),
		})
	}

	categories := make([]categoryRow, 0, len(r.Categories))
	for _, c := range r.Categories {
		categories = append(categories, categoryRow{Category: c.Category, Expense: c.Expense.StringFixed(2)})
	}

	merchants := make([]merchantRow, 0, len(r.TopMerchants))
	for _, m := range r.TopMerchants {
		merchants = append(merchants, merchantRow{Merchant: m.Merchant, Expense: m.Expense.StringFixed(2)})
	}

	recurring := make([]recurringRow, 0, len(r.Recurring))
	for _, rc := range r.Recurring {
		recurring = append(recurring, recurringRow{
			Merchant:    rc.Merchant,
			Amount:      rc.Amount.StringFixed(2),
			Frequency:   string(rc.Frequency),
			Occurrences: rc.Occurrences,
			LastSeen:    rc.LastSeen.Format(dateFormat),
		})
	}

	anomalies := make([]anomalyRow, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		anomalies = append(anomalies, anomalyRow{
			Month:        a.Month.String(),
			Expense:      a.Expense.StringFixed(2),
			TrailingMean: a.TrailingMean.StringFixed(2),
			Deviation:    strconv.FormatFloat(a.Deviation, 'f', 2, 64),
		})
	}

	tables := []struct {
		name string
		rows any
	}{
		{SummaryFile, &summary},
		{MonthlyFile, &monthly},
		{CategoriesFile, &categories},
		{TopMerchantsFile, &merchants},
		{RecurringFile, &recurring},
		{AnomaliesFile, &anomalies},
	}

	paths := make([]string, 0, len(tables))
	for _, tbl := range tables {
		path := filepath.Join(dir, tbl.name)
		if err := writeCSVFile(path, tbl.rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
