package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Frequency is the detected cadence of a recurring charge.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// cadence bands in days, inclusive.
var cadences = []struct {
	freq     Frequency
	min, max int
}{
	{FrequencyWeekly, 5, 9},
	{FrequencyMonthly, 25, 35},
}

// RecurringCharge is a merchant charged a stable amount on a regular cadence.
type RecurringCharge struct {
	Merchant    string
	Amount      decimal.Decimal // median charge, unsigned
	Frequency   Frequency
	Occurrences int
	LastSeen    time.Time
}

// RecurringDetector finds subscription-like charges.
type RecurringDetector struct {
	// MinMonths is the number of distinct calendar months a charge must span.
	MinMonths int
	// Tolerance is the allowed relative deviation from a cluster's median.
	Tolerance float64
}

// DefaultRecurringDetector returns the standard thresholds.
func DefaultRecurringDetector() RecurringDetector {
	return RecurringDetector{MinMonths: 3, Tolerance: 0.05}
}

// DetectRecurring runs the default detector.
func DetectRecurring(t model.Table) []RecurringCharge {
	return DefaultRecurringDetector().Detect(t)
}

// Detect groups expenses by merchant and, within each merchant, clusters
// charges whose amounts sit within Tolerance of each other. A cluster is
// recurring when it spans at least MinMonths months on a single weekly or
// monthly cadence; one-off purchases at the same merchant do not hide it.
// Results are sorted by merchant.
func (d RecurringDetector) Detect(t model.Table) []RecurringCharge {
	byMerchant := make(map[string][]model.Transaction)
	for _, row := range t.Rows() {
		if row.IsExpense() {
			byMerchant[row.Merchant] = append(byMerchant[row.Merchant], row)
		}
	}

	out := []RecurringCharge{}
	for merchant, rows := range byMerchant {
		if rc, ok := d.detectOne(merchant, rows); ok {
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Merchant < out[j].Merchant })
	return out
}

// detectOne tries a cluster around every distinct amount and keeps the
// qualifying one with the most occurrences, then the larger amount.
func (d RecurringDetector) detectOne(merchant string, rows []model.Transaction) (RecurringCharge, bool) {
	if len(rows) < d.MinMonths || len(rows) < 2 {
		return RecurringCharge{}, false
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	var best RecurringCharge
	found := false
	tried := make(map[string]struct{})
	for _, anchor := range rows {
		key := anchor.AbsAmount().String()
		if _, ok := tried[key]; ok {
			continue
		}
		tried[key] = struct{}{}

		rc, ok := d.cluster(merchant, rows, anchor.AbsAmount())
		if !ok {
			continue
		}
		if !found || rc.Occurrences > best.Occurrences ||
			(rc.Occurrences == best.Occurrences && rc.Amount.GreaterThan(best.Amount)) {
			best, found = rc, true
		}
	}
	return best, found
}

// cluster gathers the date-ordered rows within Tolerance of center, re-centres
// on their median, and checks months and cadence.
func (d RecurringDetector) cluster(merchant string, rows []model.Transaction, center decimal.Decimal) (RecurringCharge, bool) {
	kept := d.within(rows, center)
	if len(kept) < 2 {
		return RecurringCharge{}, false
	}
	amounts := make([]decimal.Decimal, len(kept))
	for i, row := range kept {
		amounts[i] = row.AbsAmount()
	}
	med := median(amounts)
	kept = d.within(rows, med)

	months := make(map[model.Month]struct{})
	for _, row := range kept {
		months[row.Month()] = struct{}{}
	}
	if len(months) < d.MinMonths || len(kept) < 2 {
		return RecurringCharge{}, false
	}

	freq, ok := cadenceOf(kept)
	if !ok {
		return RecurringCharge{}, false
	}

	return RecurringCharge{
		Merchant:    merchant,
		Amount:      med.Round(2),
		Frequency:   freq,
		Occurrences: len(kept),
		LastSeen:    kept[len(kept)-1].Date,
	}, true
}

func (d RecurringDetector) within(rows []model.Transaction, center decimal.Decimal) []model.Transaction {
	band := center.Mul(decimal.NewFromFloat(d.Tolerance))
	var kept []model.Transaction
	for _, row := range rows {
		if row.AbsAmount().Sub(center).Abs().LessThanOrEqual(band) {
			kept = append(kept, row)
		}
	}
	return kept
}

// cadenceOf reports the single band every gap between consecutive rows falls
// in.
func cadenceOf(rows []model.Transaction) (Frequency, bool) {
	var freq Frequency
	for i := 1; i < len(rows); i++ {
		days := int(rows[i].Date.Sub(rows[i-1].Date).Hours() / 24)
		f, ok := bandFor(days)
		if !ok || (freq != "" && f != freq) {
			return "", false
		}
		freq = f
	}
	return freq, freq != ""
}

func bandFor(days int) (Frequency, bool) {
	for _, c := range cadences {
		if days >= c.min && days <= c.max {
			return c.freq, true
		}
	}
	return "", false
}
