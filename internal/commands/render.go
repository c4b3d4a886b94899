package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spendlens/spendlens/internal/analytics"
	"github.com/spendlens/spendlens/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95A5A6"))
)

// renderer writes report sections as aligned tables.
type renderer struct {
	w        io.Writer
	p        *message.Printer
	currency string
}

func newRenderer(w io.Writer, currency string) *renderer {
	return &renderer{w: w, p: message.NewPrinter(language.English), currency: currency}
}

// money formats an amount with grouping, e.g. ₹85,000.00.
func (r *renderer) money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + r.currency + r.p.Sprintf("%.2f", d.InexactFloat64())
}

func (r *renderer) title(s string) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, titleStyle.Render(s))
}

func (r *renderer) table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, headerStyle.Render(h))
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func (r *renderer) summary(s analytics.Summary) {
	r.title("Quick Summary")
	r.table([]string{"Metric", "Value"}, [][]string{
		{"Total Income", r.money(s.Income)},
		{"Total Expense", r.money(s.Expense)},
		{"Net Savings", r.money(s.Net)},
		{"Savings Rate", s.SavingsRate.StringFixed(2) + "%"},
	})
}

func (r *renderer) trend(points []analytics.MonthlyPoint) {
	r.title("Monthly Trend")
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{p.Month.String(), r.money(p.Income), r.money(p.Expense), r.money(p.Net)}
	}
	r.table([]string{"Month", "Income", "Expense", "Net"}, rows)
}

func (r *renderer) categories(cats []analytics.CategorySpend, total decimal.Decimal) {
	r.title("Spending by Category")
	rows := make([][]string, len(cats))
	for i, c := range cats {
		share := "0.0%"
		if total.IsPositive() {
			share = c.Expense.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
		}
		rows[i] = []string{c.Category, r.money(c.Expense), share}
	}
	r.table([]string{"Category", "Expense", "Share"}, rows)
}

func (r *renderer) merchants(ms []analytics.MerchantSpend) {
	r.title(fmt.Sprintf("Top %d Merchants", len(ms)))
	rows := make([][]string, len(ms))
	for i, m := range ms {
		rows[i] = []string{fmt.Sprintf("%d", i+1), m.Merchant, r.money(m.Expense)}
	}
	r.table([]string{"#", "Merchant", "Expense"}, rows)
}

func (r *renderer) recurring(charges []analytics.RecurringCharge) {
	r.title("Recurring Charges")
	if len(charges) == 0 {
		fmt.Fprintln(r.w, subtleStyle.Render("No recurring charges detected."))
		return
	}
	rows := make([][]string, len(charges))
	for i, c := range charges {
		rows[i] = []string{
			c.Merchant,
			r.money(c.Amount),
			string(c.Frequency),
			fmt.Sprintf("%d", c.Occurrences),
			c.LastSeen.Format(time.DateOnly),
		}
	}
	r.table([]string{"Merchant", "Amount", "Frequency", "Count", "Last Seen"}, rows)
}

func (r *renderer) anomalies(as []analytics.Anomaly) {
	r.title("Anomalies")
	if len(as) == 0 {
		fmt.Fprintln(r.w, successStyle.Render("No significant monthly anomalies detected."))
		return
	}
	fmt.Fprintln(r.w, warningStyle.Render(fmt.Sprintf("%d month(s) with unusual spending:", len(as))))
	rows := make([][]string, len(as))
	for i, a := range as {
		rows[i] = []string{
			a.Month.String(),
			r.money(a.Expense),
			r.money(a.TrailingMean),
			fmt.Sprintf("%+.2f", a.Deviation),
		}
	}
	r.table([]string{"Month", "Expense", "Trailing Mean", "Z-Score"}, rows)
}

// transactions shows the n most recent rows.
func (r *renderer) transactions(t model.Table, n int) {
	if n <= 0 || t.Len() == 0 {
		return
	}
	recent := t.SortedByDate(true)
	if n > recent.Len() {
		n = recent.Len()
	}
	r.title(fmt.Sprintf("Recent Transactions (%d of %d)", n, t.Len()))
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		txn := recent.At(i)
		rows[i] = []string{
			txn.Date.Format(time.DateOnly),
			txn.Merchant,
			r.money(txn.Amount),
			txn.Category,
			txn.Description,
		}
	}
	r.table([]string{"Date", "Merchant", "Amount", "Category", "Description"}, rows)
}
