// Package export writes the cleaned transaction CSV and analytic result
// tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spendlens/spendlens/internal/model"
)

// Header is the CSV header for the cleaned export.
const Header = "date,description,amount,type,category,merchant"

const (
	numFields  = 6
	dateFormat = "2006-01-02"
	colDate    = 0
	colDesc    = 1
	colAmount  = 2
	colType    = 3
	colCat     = 4
	colMerch   = 5
)

// Sort selects the row order of an export.
type Sort string

const (
	SortNone     Sort = "none"
	SortDateDesc Sort = "date-desc"
	SortDateAsc  Sort = "date-asc"
)

// ParseSort validates a sort flag value. Empty means SortNone.
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(s)) {
	case "", SortNone:
		return SortNone, nil
	case SortDateDesc:
		return SortDateDesc, nil
	case SortDateAsc:
		return SortDateAsc, nil
	}
	return "", fmt.Errorf("invalid sort %q (want none, date-desc, or date-asc)", s)
}

// WriteTransactions writes the table (including header) in the requested
// order. The table itself is not reordered.
func WriteTransactions(w io.Writer, t model.Table, order Sort) error {
	switch order {
	case SortDateDesc:
		t = t.SortedByDate(true)
	case SortDateAsc:
		t = t.SortedByDate(false)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range t.Rows() {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = txn.Date.Format(dateFormat)
	row[colDesc] = txn.Description
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colType] = string(txn.Type)
	row[colCat] = txn.Category
	row[colMerch] = txn.Merchant
	return row
}
