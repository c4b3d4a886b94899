package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/config"
)

const rulesFile = "rules/categorization-rules.yaml"

func newInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new spendlens project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			a.logger.Debug("project initialized", "dir", absDir)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized spendlens project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config and rules file")

	return cmd
}

func runInit(dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if !force {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		}
	}

	// Create directory structure.
	for _, d := range []string{"rules", "import", "reports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write spendlens.yaml.
	cfg := config.Default()
	cfg.Categorize.RulesFile = rulesFile
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the built-in categorization rules for editing.
	if err := categorize.WriteDefaultRules(filepath.Join(dir, rulesFile)); err != nil {
		return err
	}

	// Write .gitignore; statements and reports hold personal data.
	gitignore := "import/\nreports/\n*.rejects.csv\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
