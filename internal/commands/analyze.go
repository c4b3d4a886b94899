package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/analytics"
	"github.com/spendlens/spendlens/internal/export"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		in     inputs
		top    int
		outDir string
		recent int
	)

	cmd := &cobra.Command{
		Use:   "analyze [statement files...]",
		Short: "Import statements and print a spending report",
		Example: `  spendlens analyze chase.csv hdfc.csv
  spendlens analyze --dir import/ --out-dir reports/
  spendlens analyze --sample
  cat statement.csv | spendlens analyze -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.files = args
			in.stdin = cmd.InOrStdin()
			table, err := a.load(cmd.Context(), in)
			if err != nil {
				return err
			}

			opts := a.cfg.AnalyticsOptions()
			if cmd.Flags().Changed("top") {
				if top < 1 {
					return fmt.Errorf("--top must be at least 1, got %d", top)
				}
				opts.TopN = top
			}
			if !cmd.Flags().Changed("transactions") {
				recent = a.cfg.Display.Transactions
			}

			report, err := analytics.NewEngine(opts).Build(cmd.Context(), table)
			if err != nil {
				return fmt.Errorf("building report: %w", err)
			}

			r := newRenderer(cmd.OutOrStdout(), a.cfg.Display.Currency)
			fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d transactions\n", table.Len())
			r.summary(report.Summary)
			r.trend(report.Monthly)
			r.categories(report.Categories, report.Summary.Expense)
			r.merchants(report.TopMerchants)
			r.recurring(report.Recurring)
			r.anomalies(report.Anomalies)
			r.transactions(table, recent)

			if outDir != "" {
				paths, err := export.WriteReport(outDir, report)
				if err != nil {
					return err
				}
				a.logger.Info("wrote report", "dir", outDir, "files", len(paths))
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", successStyle.Render(fmt.Sprintf("Report written to %s (%d files)", outDir, len(paths))))
			}
			return nil
		},
	}

	addInputFlags(cmd, &in)
	cmd.Flags().IntVar(&top, "top", analytics.DefaultTopN, "number of top merchants to show")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "also write the report tables as CSV files to this directory")
	cmd.Flags().IntVarP(&recent, "transactions", "n", 0, "number of recent transactions to list (0 hides them)")

	return cmd
}
