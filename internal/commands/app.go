package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spendlens/spendlens/internal/cache"
	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/pipeline"
	"github.com/spendlens/spendlens/internal/rejects"
	"github.com/spendlens/spendlens/internal/sample"
)

// app is the state shared by subcommands once the root pre-run has loaded
// config and logging.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetString("logging.level"), a.v.GetString("logging.format"))
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	slog.SetDefault(logger)

	a.configPath = a.v.GetString("config")
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}

	// Environment overrides, e.g. SPENDLENS_IMPORT_DAY_FIRST=false.
	if a.v.IsSet("import.day_first") {
		cfg.Import.DayFirst = a.v.GetBool("import.day_first")
	}
	if a.v.IsSet("categorize.rules_file") {
		cfg.Categorize.RulesFile = a.v.GetString("categorize.rules_file")
	}
	if a.v.IsSet("analytics.top_merchants") {
		cfg.Analytics.TopMerchants = a.v.GetInt("analytics.top_merchants")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg = cfg
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	switch format {
	case "console":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return slog.New(handler), nil
}

// rulesPath resolves the configured rules file relative to the config file.
func (a *app) rulesPath() string {
	p := a.cfg.Categorize.RulesFile
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(a.configPath), p)
}

// inputs are the statement sources shared by analyze and export.
type inputs struct {
	files   []string
	dir     string
	sample  bool
	rejects string
	stdin   io.Reader
}

// stdinName is the file name "-" is loaded under; it selects the CSV parser.
const stdinName = "stdin.csv"

func addInputFlags(cmd *cobra.Command, in *inputs) {
	cmd.Flags().StringVar(&in.dir, "dir", "", "also load every .csv/.ofx/.qfx file in this directory")
	cmd.Flags().BoolVar(&in.sample, "sample", false, "include the built-in sample dataset")
	cmd.Flags().StringVar(&in.rejects, "rejects", "", "write skipped rows to this CSV file")
}

var errNoInput = errors.New("no input: pass statement files, - for stdin, --dir, or --sample")

// load runs every input through the cached pipeline and concatenates the
// results: files first, then the directory scan, then stdin, then the sample.
func (a *app) load(ctx context.Context, in inputs) (model.Table, error) {
	cat, err := categorize.Load(a.rulesPath())
	if err != nil {
		return model.Table{}, err
	}
	if custom := cat.CustomCategories(); len(custom) > 0 {
		a.logger.Info("rules define custom categories", "categories", custom)
	}
	registry := importer.DefaultRegistry(a.cfg.ImporterOptions())
	parsed := cache.New[*pipeline.Dataset](a.cfg.Cache.MaxEntries)
	loader := pipeline.NewLoader(registry, cat, parsed, a.logger)

	var paths []string
	useStdin := false
	for _, f := range in.files {
		if f == "-" {
			useStdin = true
			continue
		}
		paths = append(paths, f)
	}
	if in.dir != "" {
		found, err := registry.Scan(in.dir)
		if err != nil {
			return model.Table{}, err
		}
		if len(found) == 0 {
			a.logger.Warn("no statement files found", "dir", in.dir)
		}
		for _, f := range found {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 && !useStdin && !in.sample {
		return model.Table{}, errNoInput
	}

	table, rejected, err := loader.LoadAll(ctx, paths)
	if err != nil {
		return model.Table{}, err
	}

	var extra []*pipeline.Dataset
	if useStdin {
		ds, err := loader.LoadReader(ctx, stdinName, in.stdin)
		if err != nil {
			return model.Table{}, err
		}
		extra = append(extra, ds)
	}
	if in.sample {
		ds, err := loader.LoadBytes(ctx, sample.Name, sample.Bytes())
		if err != nil {
			return model.Table{}, err
		}
		extra = append(extra, ds)
	}
	if len(extra) > 0 {
		extraTable, extraRejected := pipeline.Merge(extra...)
		table = table.Concat(extraTable)
		rejected = append(rejected, extraRejected...)
	}

	st := parsed.Stats()
	a.logger.Debug("parse cache", "entries", st.Size, "hits", st.Hits, "misses", st.Misses)
	a.logger.Info("loaded transactions", "sources", len(paths)+len(extra), "rows", table.Len(), "skipped", len(rejected))

	if in.rejects != "" {
		entries := make([]rejects.Entry, len(rejected))
		for i, r := range rejected {
			entries[i] = rejects.FromParseError(r.Source, r.ParseError)
		}
		if err := rejects.WriteFile(in.rejects, entries); err != nil {
			return model.Table{}, err
		}
		a.logger.Info("wrote rejects", "path", in.rejects, "count", len(entries))
	}
	return table, nil
}
