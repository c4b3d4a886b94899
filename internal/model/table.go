package model

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Table is an immutable, ordered set of transactions. Accessors hand out
// copies so a cached Table can be shared between callers.
type Table struct {
	rows []Transaction
}

// NewTable copies rows into a new Table.
func NewTable(rows []Transaction) Table {
	if len(rows) == 0 {
		return Table{}
	}
	cp := make([]Transaction, len(rows))
	copy(cp, rows)
	return Table{rows: cp}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// At returns row i.
func (t Table) At(i int) Transaction {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t Table) Rows() []Transaction {
	if len(t.rows) == 0 {
		return nil
	}
	cp := make([]Transaction, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Map returns a new Table with fn applied to every row.
func (t Table) Map(fn func(Transaction) Transaction) Table {
	out := make([]Transaction, len(t.rows))
	for i, row := range t.rows {
		out[i] = fn(row)
	}
	return Table{rows: out}
}

// Concat returns a new Table holding t's rows followed by each other table's rows.
func (t Table) Concat(others ...Table) Table {
	n := len(t.rows)
	for _, o := range others {
		n += len(o.rows)
	}
	out := make([]Transaction, 0, n)
	out = append(out, t.rows...)
	for _, o := range others {
		out = append(out, o.rows...)
	}
	return Table{rows: out}
}

// SortedByDate returns a new Table ordered by date. The sort is stable, so rows
// on the same day keep their source order.
func (t Table) SortedByDate(descending bool) Table {
	out := t.Rows()
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return Table{rows: out}
}

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Row         int // 0-based index into the table
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Description)
}

// Validate checks the canonical-table invariants. When categorized is true it
// also requires every row to carry a category.
func (t Table) Validate(categorized bool) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)

	for i, row := range t.rows {
		if row.Date.IsZero() {
			errs = append(errs, ValidationError{Row: i, Description: "missing date"})
		}

		if row.Amount.IsZero() {
			errs = append(errs, ValidationError{Row: i, Description: "zero amount"})
		}

		if !row.Type.Valid() {
			errs = append(errs, ValidationError{Row: i, Description: fmt.Sprintf("invalid type %q", row.Type)})
		} else if row.Type != TypeForAmount(row.Amount) {
			errs = append(errs, ValidationError{
				Row:         i,
				Description: fmt.Sprintf("amount %s does not match type %s", row.Amount.StringFixed(2), row.Type),
			})
		}

		// Exact decimals: no more than 2 places.
		if !row.Amount.Mul(hundred).Equal(row.Amount.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Row:         i,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", row.Amount),
			})
		}

		if categorized && row.Category == "" {
			errs = append(errs, ValidationError{Row: i, Description: "missing category"})
		}
	}
	return errs
}
