package importer

import (
	"regexp"
	"strings"
	"unicode"
)

type field int

const (
	fieldDate field = iota
	fieldDescription
	fieldAmount
	fieldDebit
	fieldCredit
	fieldType
	fieldCategory
	fieldMerchant
	numFields
)

var fieldNames = [numFields]string{
	fieldDate:        "date",
	fieldDescription: "description",
	fieldAmount:      "amount",
	fieldDebit:       "debit",
	fieldCredit:      "credit",
	fieldType:        "type",
	fieldCategory:    "category",
	fieldMerchant:    "merchant",
}

func (f field) String() string { return fieldNames[f] }

type headerAlias struct {
	field   field
	pattern *regexp.Regexp
}

// headerAliases is matched against normalized header names, in order. The
// first column matching an alias claims that field; later aliases for an
// already claimed field are ignored. More specific aliases come first.
var headerAliases = []headerAlias{
	{fieldDate, regexp.MustCompile(`^date$`)},
	{fieldDate, regexp.MustCompile(`^(transaction|txn|tran|trans|posting|posted|post|booking|book) date$`)},
	{fieldDate, regexp.MustCompile(`^(value date|date posted|posted on|date of transaction)$`)},

	{fieldDescription, regexp.MustCompile(`^(description|transaction description|txn description|narration|particulars)$`)},
	{fieldDescription, regexp.MustCompile(`^(details|transaction details|memo|payee|name|remarks|reference|notes)$`)},

	{fieldAmount, regexp.MustCompile(`^(amount|amt|transaction amount|txn amount|net amount)( [a-z]{3})?$`)},

	{fieldDebit, regexp.MustCompile(`^(debit|debits|debit amount|debit amt|withdrawal|withdrawals|withdrawal amount|withdrawal amt|money out|paid out|dr|dr amount)( [a-z]{3})?$`)},
	{fieldCredit, regexp.MustCompile(`^(credit|credits|credit amount|credit amt|deposit|deposits|deposit amount|deposit amt|money in|paid in|cr|cr amount)( [a-z]{3})?$`)},

	{fieldType, regexp.MustCompile(`^(type|transaction type|txn type|dr cr|cr dr|debit credit|credit debit|direction)$`)},
	{fieldCategory, regexp.MustCompile(`^(category|categories|category name)$`)},
	{fieldMerchant, regexp.MustCompile(`^(merchant|merchant name|vendor|counterparty)$`)},
}

// columnMap holds the resolved column index for each field, -1 when absent.
type columnMap [numFields]int

// normalizeHeader lowercases a header and reduces every run of non
// alphanumeric characters to one space: "Txn_Date" -> "txn date",
// "Amount (INR)" -> "amount inr".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// resolveColumns maps a header row onto canonical fields.
func resolveColumns(header []string) (columnMap, error) {
	var cols columnMap
	for i := range cols {
		cols[i] = -1
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	claimed := make([]bool, len(header))
	for _, alias := range headerAliases {
		if cols[alias.field] >= 0 {
			continue
		}
		for i, h := range normalized {
			if claimed[i] || !alias.pattern.MatchString(h) {
				continue
			}
			cols[alias.field] = i
			claimed[i] = true
			break
		}
	}

	var missing []string
	if cols[fieldDate] < 0 {
		missing = append(missing, fieldDate.String())
	}
	if cols[fieldDescription] < 0 {
		missing = append(missing, fieldDescription.String())
	}
	if cols[fieldAmount] < 0 && cols[fieldDebit] < 0 && cols[fieldCredit] < 0 {
		missing = append(missing, fieldAmount.String())
	}
	if len(missing) > 0 {
		return cols, &SchemaError{Missing: missing, Headers: header}
	}
	return cols, nil
}

// has reports whether the field was found in the header.
func (c columnMap) has(f field) bool {
	return c[f] >= 0
}

// get returns the trimmed cell for a field, or "" when the column is absent
// or the record is short.
func (c columnMap) get(rec []string, f field) string {
	i := c[f]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
