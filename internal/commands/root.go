package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/buildinfo"
	"github.com/spendlens/spendlens/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "spendlens",
		Short: "Clean up bank statement CSVs and analyze your spending",
		Long: `spendlens normalizes bank and card exports into one clean transaction table,
categorizes every row, and reports income, spending trends, top merchants,
recurring charges, and unusual months.`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", config.FileName, "project config file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")

	_ = a.v.BindPFlag("config", pf.Lookup("config"))
	_ = a.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", pf.Lookup("log-format"))

	a.v.SetEnvPrefix("SPENDLENS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newInitCommand(a))
	rootCmd.AddCommand(newAnalyzeCommand(a))
	rootCmd.AddCommand(newExportCommand(a))

	return rootCmd
}
