package importer

import (
	"fmt"
	"strings"
)

// SchemaError reports that the file's header row could not be mapped to the
// canonical columns. No rows are returned alongside it.
type SchemaError struct {
	Missing []string // canonical fields that had no matching column
	Headers []string // header row as read
	Reason  string   // set when the problem is not a missing column
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: no column for %s in header [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// ParseError describes one row that was skipped during normalization.
type ParseError struct {
	Row    int    // 1-based record number, header is row 1
	Field  string // canonical field that failed
	Value  string // raw cell contents
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}
