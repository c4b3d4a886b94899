// Package rejects records rows that were skipped during import.
package rejects

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spendlens/spendlens/internal/importer"
)

// Entry is one skipped row.
type Entry struct {
	Source string
	Row    int
	Field  string
	Value  string
	Reason string
}

// Header is the CSV header for a rejects file.
const Header = "source,row,field,value,reason"

const (
	numFields = 5
	colSource = 0
	colRow    = 1
	colField  = 2
	colValue  = 3
	colReason = 4
)

// FromParseError builds an Entry for a row skipped in source.
func FromParseError(source string, pe importer.ParseError) Entry {
	return Entry{
		Source: source,
		Row:    pe.Row,
		Field:  pe.Field,
		Value:  pe.Value,
		Reason: pe.Reason,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colSource] = e.Source
	row[colRow] = strconv.Itoa(e.Row)
	row[colField] = e.Field
	row[colValue] = e.Value
	row[colReason] = e.Reason
	return row
}

// Write writes entries (including header) to w.
func Write(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile replaces path with the given entries, creating parent dirs.
func WriteFile(path string, entries []Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating rejects dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rejects file: %w", err)
	}
	defer f.Close()

	if err := Write(f, entries); err != nil {
		return err
	}
	return f.Close()
}
