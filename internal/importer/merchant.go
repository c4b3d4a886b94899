package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownMerchant is used when nothing usable remains of a description.
const UnknownMerchant = "Unknown"

const maxMerchantWords = 3

// merchantPrefixes are payment-rail noise that banks prepend to the payee.
var merchantPrefixes = []string{
	"DEBIT CARD PURCHASE ",
	"CARD PURCHASE ",
	"POS PURCHASE ",
	"POS ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"ACH ",
	"PAYPAL *",
	"SQ *",
	"TST* ",
	"UPI/",
	"UPI-",
	"UPI ",
	"NEFT/",
	"NEFT-",
	"NEFT ",
	"IMPS/",
	"IMPS-",
	"IMPS ",
}

// NormalizeMerchant derives a grouping key from a free-text description:
// rail prefixes are dropped, the text is cut at the first reference
// separator, reference-number tokens are removed, and at most three words are
// kept in title case. "NETFLIX.COM*1234 CA" becomes "Netflix.com".
func NormalizeMerchant(description string) string {
	s := strings.TrimSpace(description)
	upper := strings.ToUpper(s)
	for _, p := range merchantPrefixes {
		if strings.HasPrefix(upper, p) && len(s) >= len(p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	if i := strings.IndexAny(s, "*#/@|"); i >= 0 {
		s = s[:i]
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '\'' || r == '.')
	})

	var words []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".'")
		if tok == "" || strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
			continue
		}
		words = append(words, tok)
		if len(words) == maxMerchantWords {
			break
		}
	}

	if len(words) == 0 {
		// Only reference numbers left: keep the first one rather than lose
		// the row's identity entirely.
		for _, tok := range tokens {
			if tok = strings.Trim(tok, ".'"); tok != "" {
				return tok
			}
		}
		return UnknownMerchant
	}

	return cases.Title(language.Und).String(strings.Join(words, " "))
}
