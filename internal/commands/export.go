package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		in     inputs
		output string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "export [statement files...]",
		Short: "Write the cleaned, categorized transactions as one CSV",
		Example: `  spendlens export chase.csv hdfc.csv -o transactions.csv
  spendlens export --dir import/ --sort date-desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortOrder, err := export.ParseSort(order)
			if err != nil {
				return err
			}

			in.files = args
			in.stdin = cmd.InOrStdin()
			table, err := a.load(cmd.Context(), in)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return export.WriteTransactions(cmd.OutOrStdout(), table, sortOrder)
			}

			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := export.WriteTransactions(f, table, sortOrder); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}

			a.logger.Info("exported transactions", "path", output, "rows", table.Len())
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Exported %d transactions to %s", table.Len(), output)))
			return nil
		},
	}

	addInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output CSV file (- for stdout)")
	cmd.Flags().StringVar(&order, "sort", string(export.SortNone), "row order: none, date-desc, or date-asc")

	return cmd
}
