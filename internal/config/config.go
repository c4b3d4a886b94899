package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/analytics"
	"github.com/spendlens/spendlens/internal/importer"
)

// FileName is the project config file looked up in the working directory.
const FileName = "spendlens.yaml"

// Config represents the top-level spendlens.yaml configuration.
type Config struct {
	Import     ImportConfig     `yaml:"import"`
	Categorize CategorizeConfig `yaml:"categorize"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Cache      CacheConfig      `yaml:"cache"`
	Display    DisplayConfig    `yaml:"display"`
}

// ImportConfig controls how statement cells are read.
type ImportConfig struct {
	DayFirst    bool     `yaml:"day_first"`
	DateFormats []string `yaml:"date_formats,omitempty"` // Go layouts, e.g. "02.01.2006"
}

// CategorizeConfig points at a user rules file. Empty uses the built-in rules.
type CategorizeConfig struct {
	RulesFile string `yaml:"rules_file,omitempty"`
}

// AnalyticsConfig tunes the report.
type AnalyticsConfig struct {
	TopMerchants int             `yaml:"top_merchants"`
	Anomaly      AnomalyConfig   `yaml:"anomaly"`
	Recurring    RecurringConfig `yaml:"recurring"`
}

// AnomalyConfig controls monthly spend anomaly detection.
type AnomalyConfig struct {
	Threshold  float64 `yaml:"threshold"`
	MinHistory int     `yaml:"min_history"`
}

// RecurringConfig controls recurring-charge detection.
type RecurringConfig struct {
	MinMonths       int     `yaml:"min_months"`
	AmountTolerance float64 `yaml:"amount_tolerance"`
}

// CacheConfig bounds the parsed-file cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// DisplayConfig controls terminal output.
type DisplayConfig struct {
	Currency     string `yaml:"currency"`
	Transactions int    `yaml:"transactions"` // recent rows shown by analyze
}

// Load reads a spendlens.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	rec := analytics.DefaultRecurringDetector()
	anom := analytics.DefaultAnomalyDetector()
	return &Config{
		Import: ImportConfig{
			DayFirst: true,
		},
		Analytics: AnalyticsConfig{
			TopMerchants: analytics.DefaultTopN,
			Anomaly: AnomalyConfig{
				Threshold:  anom.Threshold,
				MinHistory: anom.MinHistory,
			},
			Recurring: RecurringConfig{
				MinMonths:       rec.MinMonths,
				AmountTolerance: rec.Tolerance,
			},
		},
		Cache: CacheConfig{
			MaxEntries: 32,
		},
		Display: DisplayConfig{
			Currency:     "₹",
			Transactions: 10,
		},
	}
}

// Validate rejects values the analytics cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Analytics.TopMerchants < 1 {
		errs = append(errs, fmt.Errorf("analytics.top_merchants must be at least 1, got %d", c.Analytics.TopMerchants))
	}
	if c.Analytics.Anomaly.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("analytics.anomaly.threshold must be positive, got %g", c.Analytics.Anomaly.Threshold))
	}
	if c.Analytics.Anomaly.MinHistory < 1 {
		errs = append(errs, fmt.Errorf("analytics.anomaly.min_history must be at least 1, got %d", c.Analytics.Anomaly.MinHistory))
	}
	if c.Analytics.Recurring.MinMonths < 2 {
		errs = append(errs, fmt.Errorf("analytics.recurring.min_months must be at least 2, got %d", c.Analytics.Recurring.MinMonths))
	}
	if t := c.Analytics.Recurring.AmountTolerance; t < 0 || t >= 1 {
		errs = append(errs, fmt.Errorf("analytics.recurring.amount_tolerance must be in [0, 1), got %g", t))
	}
	if c.Cache.MaxEntries < 1 {
		errs = append(errs, fmt.Errorf("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries))
	}
	if c.Display.Transactions < 0 {
		errs = append(errs, fmt.Errorf("display.transactions must not be negative, got %d", c.Display.Transactions))
	}
	return errors.Join(errs...)
}

// ImporterOptions maps the import section onto normalizer options.
func (c *Config) ImporterOptions() importer.Options {
	return importer.Options{
		DayFirst:    c.Import.DayFirst,
		DateFormats: c.Import.DateFormats,
	}
}

// AnalyticsOptions maps the analytics section onto engine options.
func (c *Config) AnalyticsOptions() analytics.Options {
	return analytics.Options{
		TopN: c.Analytics.TopMerchants,
		Recurring: analytics.RecurringDetector{
			MinMonths: c.Analytics.Recurring.MinMonths,
			Tolerance: c.Analytics.Recurring.AmountTolerance,
		},
		Anomaly: analytics.AnomalyDetector{
			Threshold:  c.Analytics.Anomaly.Threshold,
			MinHistory: c.Analytics.Anomaly.MinHistory,
		},
	}
}
