// Package pipeline turns raw statement files into categorized, validated
// tables, memoizing the result by content.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/spendlens/spendlens/internal/cache"
	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/importer"
	"github.com/spendlens/spendlens/internal/model"
)

// Dataset is a categorized table and the rows dropped while building it.
// Each load returns its own copy, so a caller may modify Skipped freely.
type Dataset struct {
	Source      string
	Fingerprint string
	Table       model.Table
	Skipped     []importer.ParseError
}

// Rejected pairs a skipped row with the file it came from.
type Rejected struct {
	Source string
	importer.ParseError
}

// Loader parses, categorizes, and validates statement files.
type Loader struct {
	registry    *importer.Registry
	categorizer *categorize.Categorizer
	cache       *cache.LRU[*Dataset]
	logger      *slog.Logger
}

// NewLoader creates a Loader. A nil logger uses slog.Default().
func NewLoader(registry *importer.Registry, categorizer *categorize.Categorizer, c *cache.LRU[*Dataset], logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		registry:    registry,
		categorizer: categorizer,
		cache:       c,
		logger:      logger,
	}
}

// LoadFile reads and loads one file; the parser is chosen by extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.LoadBytes(ctx, filepath.Base(path), data)
}

// LoadReader loads a stream whose format is implied by name.
func (l *Loader) LoadReader(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return l.LoadBytes(ctx, name, data)
}

// LoadBytes loads raw file contents. Identical contents are parsed once per
// Loader cache.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser, err := l.registry.ForFile(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	fp := cache.Fingerprint(data)
	key := parser.Format() + ":" + fp
	if l.cache != nil {
		if ds, ok := l.cache.Get(key); ok {
			l.logger.Debug("cache hit", "source", name, "fingerprint", fp[:12])
			return withSource(ds, name), nil
		}
	}

	res, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	table := l.categorizer.Categorize(res.Table)
	if verrs := table.Validate(true); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, fmt.Errorf("%s: invalid table: %w", name, errors.Join(errs...))
	}

	ds := &Dataset{
		Source:      name,
		Fingerprint: fp,
		Table:       table,
		Skipped:     res.Skipped,
	}
	if l.cache != nil {
		l.cache.Set(key, ds)
	}

	if len(res.Skipped) > 0 {
		l.logger.Warn("skipped unparseable rows", "source", name, "count", len(res.Skipped))
	}
	l.logger.Debug("loaded", "source", name, "format", parser.Format(), "rows", table.Len())
	return withSource(ds, name), nil
}

// LoadAll loads files concurrently and concatenates them in argument order.
// The first failure aborts the load.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (model.Table, []Rejected, error) {
	sets := make([]*Dataset, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			ds, err := l.LoadFile(gctx, p)
			if err != nil {
				return err
			}
			sets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Table{}, nil, err
	}
	table, rejected := Merge(sets...)
	return table, rejected, nil
}

// Merge concatenates datasets and collects their rejected rows.
func Merge(sets ...*Dataset) (model.Table, []Rejected) {
	tables := make([]model.Table, 0, len(sets))
	var rejected []Rejected
	for _, ds := range sets {
		tables = append(tables, ds.Table)
		for _, pe := range ds.Skipped {
			rejected = append(rejected, Rejected{Source: ds.Source, ParseError: pe})
		}
	}
	return model.Table{}.Concat(tables...), rejected
}

func withSource(ds *Dataset, name string) *Dataset {
	cp := *ds
	cp.Source = name
	cp.Skipped = slices.Clone(ds.Skipped)
	return &cp
}
