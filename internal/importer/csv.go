package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// Options tune how CSV cells are interpreted.
type Options struct {
	// DayFirst prefers DD/MM over MM/DD when a numeric date is ambiguous.
	DayFirst bool
	// DateFormats are Go layouts tried before the built-in list.
	DateFormats []string
}

// DefaultOptions returns the built-in normalizer settings.
func DefaultOptions() Options {
	return Options{DayFirst: true}
}

// Normalizer parses arbitrary bank/export CSVs into the canonical table.
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// fileFormat holds the conventions decided once per file.
type fileFormat struct {
	layouts      []string
	decimalComma bool
}

// Normalize parses r with DefaultOptions.
func Normalize(r io.Reader) (*Result, error) {
	return NewNormalizer(DefaultOptions()).Parse(r)
}

// Format returns the parser name.
func (n *Normalizer) Format() string { return "csv" }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a CSV with a header row. Unmappable headers fail with a
// *SchemaError; rows with a bad date or amount are skipped and reported in
// Result.Skipped.
func (n *Normalizer) Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SchemaError{Reason: "missing header row"}
	}

	delim := sniffDelimiter(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	type record struct {
		row    int
		fields []string
	}
	var records []record
	for rowNum := 2; ; rowNum++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, record{row: rowNum, fields: rec})
	}

	var dates, amounts []string
	for _, rec := range records {
		dates = append(dates, cols.get(rec.fields, fieldDate))
		for _, f := range []field{fieldAmount, fieldDebit, fieldCredit} {
			if v := cols.get(rec.fields, f); v != "" {
				amounts = append(amounts, v)
			}
		}
	}
	ff := fileFormat{
		layouts:      dateLayouts(n.opts.DateFormats, detectDayFirst(dates, n.opts.DateFormats, n.opts.DayFirst)),
		decimalComma: detectDecimalComma(amounts, delim),
	}

	var rows []model.Transaction
	var skipped []ParseError
	for _, rec := range records {
		txn, perr := ff.parseRow(cols, rec.fields)
		if perr != nil {
			perr.Row = rec.row
			skipped = append(skipped, *perr)
			continue
		}
		rows = append(rows, txn)
	}

	return &Result{Table: model.NewTable(rows), Skipped: skipped}, nil
}

func (ff fileFormat) parseRow(cols columnMap, rec []string) (model.Transaction, *ParseError) {
	rawDate := cols.get(rec, fieldDate)
	date, err := parseDate(rawDate, ff.layouts)
	if err != nil {
		return model.Transaction{}, &ParseError{Field: fieldDate.String(), Value: rawDate, Reason: err.Error()}
	}

	amount, perr := ff.rowAmount(cols, rec)
	if perr != nil {
		return model.Transaction{}, perr
	}

	typ, explicit := parseType(cols.get(rec, fieldType))
	if explicit {
		if typ == model.TypeExpense {
			amount = amount.Abs().Neg()
		} else {
			amount = amount.Abs()
		}
	} else {
		typ = model.TypeForAmount(amount)
	}

	desc := collapseSpace(cols.get(rec, fieldDescription))
	merchant := collapseSpace(cols.get(rec, fieldMerchant))
	if merchant == "" {
		merchant = NormalizeMerchant(desc)
	}

	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        typ,
		Category:    strings.ToLower(collapseSpace(cols.get(rec, fieldCategory))),
		Merchant:    merchant,
	}, nil
}

// rowAmount reads the signed amount, preferring a single amount column and
// falling back to debit/credit (credit minus debit). Amounts are rounded to
// cents; zero is rejected.
func (ff fileFormat) rowAmount(cols columnMap, rec []string) (decimal.Decimal, *ParseError) {
	if raw := cols.get(rec, fieldAmount); raw != "" || !(cols.has(fieldDebit) || cols.has(fieldCredit)) {
		amount, err := parseAmount(raw, ff.decimalComma)
		if err != nil {
			return decimal.Zero, &ParseError{Field: fieldAmount.String(), Value: raw, Reason: err.Error()}
		}
		return checkNonZero(amount.Round(2), raw)
	}

	rawDebit := cols.get(rec, fieldDebit)
	rawCredit := cols.get(rec, fieldCredit)
	if rawDebit == "" && rawCredit == "" {
		return decimal.Zero, &ParseError{Field: fieldAmount.String(), Reason: "no debit or credit value"}
	}

	amount := decimal.Zero
	if rawDebit != "" {
		debit, err := parseAmount(rawDebit, ff.decimalComma)
		if err != nil {
			return decimal.Zero, &ParseError{Field: fieldDebit.String(), Value: rawDebit, Reason: err.Error()}
		}
		amount = amount.Sub(debit.Abs())
	}
	if rawCredit != "" {
		credit, err := parseAmount(rawCredit, ff.decimalComma)
		if err != nil {
			return decimal.Zero, &ParseError{Field: fieldCredit.String(), Value: rawCredit, Reason: err.Error()}
		}
		amount = amount.Add(credit.Abs())
	}
	return checkNonZero(amount.Round(2), rawDebit+"/"+rawCredit)
}

func checkNonZero(amount decimal.Decimal, raw string) (decimal.Decimal, *ParseError) {
	if amount.IsZero() {
		return decimal.Zero, &ParseError{Field: fieldAmount.String(), Value: raw, Reason: "zero amount"}
	}
	return amount, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var delimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the candidate delimiter that occurs most often in the
// header line, ignoring quoted text. Ties go to the earlier candidate.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := make(map[rune]int, len(delimiters))
	inQuotes := false
	for _, r := range string(line) {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best := ','
	for _, d := range delimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
