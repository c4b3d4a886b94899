package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spendlens/spendlens/internal/model"
)

// Result is the output of a parse: the canonical (uncategorized) table and
// the rows that were skipped.
type Result struct {
	Table   model.Table
	Skipped []ParseError
}

// Parser converts a statement file into the canonical table.
type Parser interface {
	Parse(r io.Reader) (*Result, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers    map[string]Parser
	extensions map[string]string
}

// FileInfo describes a statement file found by Scan.
type FileInfo struct {
	Name   string
	Path   string
	Size   int64
	Format string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:    make(map[string]Parser),
		extensions: make(map[string]string),
	}
}

// Register adds a parser and the file extensions it handles. Panics on
// duplicate format.
func (r *Registry) Register(p Parser, extensions ...string) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	for _, ext := range extensions {
		r.extensions[strings.ToLower(ext)] = key
	}
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// FormatFor returns the format registered for a file name's extension, or "".
func (r *Registry) FormatFor(name string) string {
	return r.extensions[strings.ToLower(filepath.Ext(name))]
}

// ForFile returns the parser for a file name, or an error if its extension is
// not registered.
func (r *Registry) ForFile(name string) (Parser, error) {
	format := r.FormatFor(name)
	if format == "" {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
	return r.parsers[format], nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register(NewNormalizer(opts), ".csv", ".txt")
	r.Register(&OFXParser{}, ".ofx", ".qfx")
	return r
}

// Scan returns statement files in dir that the registry can parse, sorted by
// name. Subdirectories are not descended into. A missing dir yields no files.
func (r *Registry) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format := r.FormatFor(e.Name())
		if format == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Path:   filepath.Join(dir, e.Name()),
			Size:   info.Size(),
			Format: format,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
