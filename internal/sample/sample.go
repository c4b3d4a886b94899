// Package sample bundles a demo statement so the tool can be tried without
// real bank data.
package sample

import (
	"bytes"
	_ "embed"
)

// Name is the file name the sample is loaded under.
const Name = "sample_transactions.csv"

//go:embed sample_transactions.csv
var transactions []byte

// Bytes returns a copy of the sample CSV.
func Bytes() []byte {
	return bytes.Clone(transactions)
}
