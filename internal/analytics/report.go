package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/spendlens/spendlens/internal/model"
)

// DefaultTopN is the number of merchants reported when Options.TopN is unset.
const DefaultTopN = 10

// Options configure an Engine.
type Options struct {
	TopN      int
	Recurring RecurringDetector
	Anomaly   AnomalyDetector
}

// DefaultOptions returns the standard analytics settings.
func DefaultOptions() Options {
	return Options{
		TopN:      DefaultTopN,
		Recurring: DefaultRecurringDetector(),
		Anomaly:   DefaultAnomalyDetector(),
	}
}

// Report bundles every analytic over one table.
type Report struct {
	Summary      Summary
	Monthly      []MonthlyPoint
	Categories   []CategorySpend
	TopMerchants []MerchantSpend
	Recurring    []RecurringCharge
	Anomalies    []Anomaly
}

// Engine builds reports.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Build computes all analytics concurrently. The table is shared read-only.
func (e *Engine) Build(ctx context.Context, t model.Table) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var r Report
	var g errgroup.Group

	g.Go(func() error {
		r.Summary = SummaryKPIs(t)
		return nil
	})
	g.Go(func() error {
		r.Monthly = MonthlyTrend(t)
		return nil
	})
	g.Go(func() error {
		r.Categories = ByCategory(t)
		return nil
	})
	g.Go(func() error {
		r.TopMerchants = TopMerchants(t, e.opts.TopN)
		return nil
	})
	g.Go(func() error {
		r.Recurring = e.opts.Recurring.Detect(t)
		return nil
	})
	g.Go(func() error {
		r.Anomalies = e.opts.Anomaly.Detect(t)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &r, nil
}
