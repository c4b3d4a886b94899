package importer

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

var (
	errEmptyValue = errors.New("empty value")
	errNoLayout   = errors.New("no known date layout matches")
	errNotNumber  = errors.New("not a number")

	errAmbiguousAmount = errors.New("ambiguous decimal or grouping separators")
)

// ISO layouts always win; they are unambiguous.
var isoDateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
}

var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
}

var textDateLayouts = []string{
	"2 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 06",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"20060102",
}

// dateLayouts builds the prioritized layout list for one file: user layouts,
// ISO, the file's numeric order, then textual months. Only one numeric order
// is included so a file never mixes DD/MM and MM/DD.
func dateLayouts(extra []string, dayFirst bool) []string {
	numeric := dayFirstLayouts
	if !dayFirst {
		numeric = monthFirstLayouts
	}

	layouts := make([]string, 0, len(extra)+len(isoDateLayouts)+len(numeric)+len(textDateLayouts))
	layouts = append(layouts, extra...)
	layouts = append(layouts, isoDateLayouts...)
	layouts = append(layouts, numeric...)
	layouts = append(layouts, textDateLayouts...)
	return layouts
}

// detectDayFirst decides the numeric date order of a file. Cells that parse
// in only one order are evidence; one-sided evidence wins. With no evidence,
// or evidence both ways, the preference stands.
func detectDayFirst(cells, extra []string, prefer bool) bool {
	fixed := append(append([]string(nil), extra...), isoDateLayouts...)
	var dayOnly, monthOnly int
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, err := parseDate(c, fixed); err == nil {
			continue
		}
		_, dErr := parseDate(c, dayFirstLayouts)
		_, mErr := parseDate(c, monthFirstLayouts)
		switch {
		case dErr == nil && mErr != nil:
			dayOnly++
		case mErr == nil && dErr != nil:
			monthOnly++
		}
	}
	switch {
	case dayOnly > 0 && monthOnly == 0:
		return true
	case monthOnly > 0 && dayOnly == 0:
		return false
	}
	return prefer
}

// parseDate tries each layout in order; the first that parses wins.
func parseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyValue
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), nil
		}
	}
	return time.Time{}, errNoLayout
}

// currencyTokens are stripped from amount cells. Longer tokens first so "RS."
// is removed before "RS".
var currencyTokens = []string{"INR", "USD", "EUR", "GBP", "RS.", "RS", "₹", "$", "€", "£", "¥"}

// parseAmount converts a money cell to a decimal. It accepts grouping
// separators, currency symbols, "(12.50)" and "12.50-" negatives, and
// trailing DR/CR markers. decimalComma swaps the roles of "," and ".".
func parseAmount(raw string, decimalComma bool) (decimal.Decimal, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, errEmptyValue
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(s)

	neg := false
	switch {
	case strings.HasSuffix(s, "DR"):
		neg = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "DR"))
	case strings.HasSuffix(s, "CR"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "CR"))
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, errEmptyValue
	}

	s, err := plainNumber(s, decimalComma)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotNumber
	}
	if neg {
		d = d.Abs().Neg()
	}
	return d, nil
}

// plainNumber strips grouping marks and normalizes the decimal mark to ".".
// Groups after the first must be two or three digits and the last exactly
// three, which admits lakh grouping ("1,00,000") but rejects "12,50" when
// the comma is a grouping mark.
func plainNumber(s string, decimalComma bool) (string, error) {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	group, point := ",", "."
	if decimalComma {
		group, point = ".", ","
	}

	intPart, frac, hasPoint := strings.Cut(s, point)
	if hasPoint && strings.ContainsAny(frac, ".,") {
		return "", errAmbiguousAmount
	}

	if strings.Contains(intPart, group) {
		groups := strings.Split(intPart, group)
		for i, g := range groups {
			var ok bool
			switch {
			case i == 0:
				ok = len(g) >= 1 && len(g) <= 3
			case i == len(groups)-1:
				ok = len(g) == 3
			default:
				ok = len(g) == 2 || len(g) == 3
			}
			if !ok {
				return "", errAmbiguousAmount
			}
		}
		intPart = strings.Join(groups, "")
	}

	if !hasPoint {
		return sign + intPart, nil
	}
	return sign + intPart + "." + frac, nil
}

// detectDecimalComma decides whether a file writes amounts with a decimal
// comma. A cell whose last mark is followed by one or two digits, or is
// preceded by the other mark, votes for that mark. Semicolon files with no
// votes are taken as decimal-comma.
func detectDecimalComma(cells []string, delim rune) bool {
	var comma, dot int
	for _, c := range cells {
		i := strings.LastIndexAny(c, ".,")
		if i < 0 {
			continue
		}
		digits := 0
		for _, r := range c[i+1:] {
			if !unicode.IsDigit(r) {
				break
			}
			digits++
		}
		mark, other := c[i], ","
		if mark == ',' {
			other = "."
		}
		if !strings.Contains(c[:i], other) && (digits < 1 || digits > 2) {
			continue
		}
		if mark == ',' {
			comma++
		} else {
			dot++
		}
	}
	switch {
	case dot > 0:
		return false
	case comma > 0:
		return true
	}
	return delim == ';'
}

// parseType maps the many spellings banks use for direction onto a Type.
// Unknown values (e.g. "ACH_DEBIT", "SALE") report false so the caller can
// fall back to the amount sign.
func parseType(raw string) (model.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "income", "credit", "cr", "c", "deposit", "in", "inflow", "+":
		return model.TypeIncome, true
	case "expense", "debit", "dr", "d", "withdrawal", "payment", "purchase", "out", "outflow", "-":
		return model.TypeExpense, true
	}
	return "", false
}

// collapseSpace trims and reduces internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
