package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Anomaly is a month whose expense deviates sharply from the months before it.
type Anomaly struct {
	Month        model.Month
	Expense      decimal.Decimal
	TrailingMean decimal.Decimal // mean expense of all earlier months
	Deviation    float64         // z-score against earlier months
}

// AnomalyDetector flags months by expanding-window z-score.
type AnomalyDetector struct {
	// Threshold is the |z| above which a month is flagged.
	Threshold float64
	// MinHistory is the number of earlier months needed before a month is
	// scored.
	MinHistory int
}

// DefaultAnomalyDetector returns the standard thresholds.
func DefaultAnomalyDetector() AnomalyDetector {
	return AnomalyDetector{Threshold: 2, MinHistory: 3}
}

// AnomalySpend runs the default detector.
func AnomalySpend(t model.Table) []Anomaly {
	return DefaultAnomalyDetector().Detect(t)
}

// Detect scores each month's expense against the population mean and
// standard deviation of every earlier month. Months with fewer than
// MinHistory earlier months, or whose history has no variance, are never
// flagged. Output is oldest first.
func (d AnomalyDetector) Detect(t model.Table) []Anomaly {
	points := monthlyTotals(t)
	minHistory := d.MinHistory
	if minHistory < 1 {
		minHistory = 1
	}

	out := []Anomaly{}
	if len(points) <= minHistory {
		return out
	}

	history := make([]float64, 0, len(points))
	for i, p := range points {
		expense := p.Expense.InexactFloat64()
		if i >= minHistory {
			mean, stddev := meanStddev(history)
			if stddev > 0 {
				z := (expense - mean) / stddev
				if math.Abs(z) > d.Threshold {
					out = append(out, Anomaly{
						Month:        p.Month,
						Expense:      p.Expense,
						TrailingMean: decimal.NewFromFloat(mean).Round(2),
						Deviation:    z,
					})
				}
			}
		}
		history = append(history, expense)
	}
	return out
}
