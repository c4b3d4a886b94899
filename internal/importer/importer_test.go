package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/spendlens/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseString(t *testing.T, opts Options, data string) *Result {
	t.Helper()
	res, err := NewNormalizer(opts).Parse(strings.NewReader(data))
	require.NoError(t, err)
	return res
}

func TestNormalizer_Chase(t *testing.T) {
	f, err := os.Open("../../testdata/chase_checking.csv")
	require.NoError(t, err)
	defer f.Close()

	// Default options prefer day-first; 01/22/2025 settles the file as
	// month-first.
	res, err := Normalize(f)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	rows := res.Table.Rows()
	require.Len(t, rows, 6)

	// First: GITHUB subscription
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", rows[0].Description)
	assert.Equal(t, "-4.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.TypeExpense, rows[0].Type)
	assert.True(t, date(2025, time.January, 3).Equal(rows[0].Date))
	assert.Equal(t, "Github", rows[0].Merchant)
	assert.Empty(t, rows[0].Category)

	// Fourth: ACME income (positive)
	assert.Equal(t, "ACME CONSULTING INVOICE 1042", rows[3].Description)
	assert.Equal(t, "3500.00", rows[3].Amount.StringFixed(2))
	assert.Equal(t, model.TypeIncome, rows[3].Type)

	assert.True(t, date(2025, time.January, 22).Equal(rows[5].Date))
	assert.Equal(t, "Uber", rows[5].Merchant)

	for _, row := range rows {
		assert.Equal(t, time.January, row.Date.Month(), row.Description)
	}
}

func TestNormalizer_DebitCreditColumns(t *testing.T) {
	f, err := os.Open("../../testdata/hdfc_savings.csv")
	require.NoError(t, err)
	defer f.Close()

	res, err := Normalize(f)
	require.NoError(t, err)

	rows := res.Table.Rows()
	require.Len(t, rows, 4)

	assert.True(t, date(2025, time.January, 5).Equal(rows[0].Date))
	assert.Equal(t, "-499.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "Netflix", rows[0].Merchant)

	assert.Equal(t, "-1250.50", rows[1].Amount.StringFixed(2))

	assert.Equal(t, "85000.00", rows[2].Amount.StringFixed(2))
	assert.Equal(t, model.TypeIncome, rows[2].Type)

	assert.Equal(t, "-2340.00", rows[3].Amount.StringFixed(2))
	assert.Equal(t, "Big Bazaar", rows[3].Merchant)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 5, res.Skipped[0].Row)
	assert.Equal(t, "date", res.Skipped[0].Field)
	assert.Equal(t, "not a date", res.Skipped[0].Value)
	assert.Equal(t, 6, res.Skipped[1].Row)
	assert.Equal(t, "amount", res.Skipped[1].Field)
}

func TestNormalizer_HeaderAliases(t *testing.T) {
	tests := []struct {
		name   string
		header string
		row    string
	}{
		{"canonical", "date,description,amount", "2025-01-05,Coffee,-3.50"},
		{"mixed case", "Date,Description,Amount", "2025-01-05,Coffee,-3.50"},
		{"transaction prefix", "Transaction Date,Transaction Description,Transaction Amount", "2025-01-05,Coffee,-3.50"},
		{"underscores", "txn_date,narration,amt", "2025-01-05,Coffee,-3.50"},
		{"currency suffix", "Value Date,Particulars,Amount (INR)", "2025-01-05,Coffee,-3.50"},
		{"memo and bom", "\ufeffPosted Date,Memo,Amount", "2025-01-05,Coffee,-3.50"},
		{"extra columns", "Ref,Date,Payee,Amount,Balance", "X1,2025-01-05,Coffee,-3.50,100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseString(t, DefaultOptions(), tt.header+"\n"+tt.row+"\n")
			rows := res.Table.Rows()
			require.Len(t, rows, 1)
			assert.True(t, date(2025, time.January, 5).Equal(rows[0].Date))
			assert.Equal(t, "Coffee", rows[0].Description)
			assert.Equal(t, "-3.50", rows[0].Amount.StringFixed(2))
			assert.Equal(t, model.TypeExpense, rows[0].Type)
		})
	}
}

func TestNormalizer_SchemaError(t *testing.T) {
	_, err := Normalize(strings.NewReader("when,what,how much\n2025-01-05,Coffee,3.50\n"))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"date", "description", "amount"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "no column for date")

	_, err = Normalize(strings.NewReader("Date,Description\n2025-01-05,Coffee\n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"amount"}, schemaErr.Missing)

	_, err = Normalize(strings.NewReader("  \n"))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "schema: missing header row", err.Error())
}

func TestNormalizer_TypeColumn(t *testing.T) {
	data := `Date,Description,Amount,Dr/Cr
2025-02-01,Rent,15000,DR
2025-02-02,Refund,-200,CR
2025-02-03,Card,-42.10,SALE
`
	rows := parseString(t, DefaultOptions(), data).Table.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, "-15000.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.TypeExpense, rows[0].Type)

	assert.Equal(t, "200.00", rows[1].Amount.StringFixed(2))
	assert.Equal(t, model.TypeIncome, rows[1].Type)

	// Unrecognized type values fall back to the sign.
	assert.Equal(t, model.TypeExpense, rows[2].Type)
}

func TestNormalizer_DateOrderPerFile(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		data     string
		want     []time.Time
		skipRows []int
	}{
		{
			name: "month-only date settles month first",
			opts: Options{DayFirst: true},
			data: "Date,Description,Amount\n03/04/2025,A,-1\n04/13/2025,B,-1\n",
			want: []time.Time{date(2025, time.March, 4), date(2025, time.April, 13)},
		},
		{
			name: "day-only date settles day first",
			opts: Options{DayFirst: false},
			data: "Date,Description,Amount\n03/04/2025,A,-1\n13/04/2025,B,-1\n",
			want: []time.Time{date(2025, time.April, 3), date(2025, time.April, 13)},
		},
		{
			name: "no evidence keeps preference",
			opts: Options{DayFirst: true},
			data: "Date,Description,Amount\n03/04/2025,A,-1\n05/06/2025,B,-1\n",
			want: []time.Time{date(2025, time.April, 3), date(2025, time.June, 5)},
		},
		{
			name:     "conflicting evidence keeps preference and skips the rest",
			opts:     Options{DayFirst: true},
			data:     "Date,Description,Amount\n13/04/2025,A,-1\n04/13/2025,B,-1\n",
			want:     []time.Time{date(2025, time.April, 13)},
			skipRows: []int{3},
		},
		{
			name: "ISO and textual dates ignore order",
			opts: Options{DayFirst: false},
			data: "Date,Description,Amount\n2025-04-03,A,-1\n3 Apr 2025,B,-1\n13/04/2025,C,-1\n",
			want: []time.Time{date(2025, time.April, 3), date(2025, time.April, 3), date(2025, time.April, 13)},
		},
		{
			name: "custom layout first",
			opts: Options{DayFirst: true, DateFormats: []string{"01/02/2006"}},
			data: "Date,Description,Amount\n03/04/2025,A,-1\n",
			want: []time.Time{date(2025, time.March, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseString(t, tt.opts, tt.data)
			rows := res.Table.Rows()
			require.Len(t, rows, len(tt.want))
			for i, want := range tt.want {
				assert.True(t, want.Equal(rows[i].Date), "row %d: %s", i, rows[i].Date)
			}

			var skipped []int
			for _, s := range res.Skipped {
				skipped = append(skipped, s.Row)
			}
			assert.Equal(t, tt.skipRows, skipped)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw          string
		decimalComma bool
		want         string
	}{
		{"12.50", false, "12.5"},
		{"-12.50", false, "-12.5"},
		{"+12.50", false, "12.5"},
		{"1,234.56", false, "1234.56"},
		{"$1,234.56", false, "1234.56"},
		{"-$4.00", false, "-4"},
		{"(45.00)", false, "-45"},
		{"45.00-", false, "-45"},
		{"₹ 2,340.00", false, "2340"},
		{"Rs. 500", false, "500"},
		{"INR 1,00,000", false, "100000"},
		{"250.00 Dr", false, "-250"},
		{"250.00 CR", false, "250"},
		{"-12,50", true, "-12.5"},
		{"1.234,56", true, "1234.56"},
		{"-1.234,56", true, "-1234.56"},
		{"€ 12,5", true, "12.5"},
		{"1 234,56", true, "1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseAmount(tt.raw, tt.decimalComma)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	for _, raw := range []string{"", "  ", "abc", "$", "12..5", "-12,50", "-1.234,56", "1,2345"} {
		_, err := parseAmount(raw, false)
		assert.Error(t, err, raw)
	}
	for _, raw := range []string{"1,234.56", "12,5,0"} {
		_, err := parseAmount(raw, true)
		assert.Error(t, err, raw)
	}
}

func TestDetectDecimalComma(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		delim rune
		want  bool
	}{
		{"decimal comma", []string{"-12,50", "1.234,56"}, ',', true},
		{"decimal dot", []string{"-12.50", "1,234.56"}, ';', false},
		{"lakh grouping", []string{"1,250.50", "85,000"}, ';', false},
		{"mixed votes fall back to dot", []string{"-12,50", "3.50"}, ',', false},
		{"no votes in semicolon file", []string{"1,234", "500"}, ';', true},
		{"no votes in comma file", []string{"1,234", "500"}, ',', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDecimalComma(tt.cells, tt.delim))
		})
	}
}

func TestNormalizer_DecimalCommaFile(t *testing.T) {
	data := "Date;Description;Amount\n2025-01-05;REWE MARKT;-12,50\n2025-01-06;MIETE;-1.234,56\n2025-01-31;GEHALT;3.200,00\n"
	res := parseString(t, DefaultOptions(), data)
	require.Empty(t, res.Skipped)

	rows := res.Table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "-12.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "-1234.56", rows[1].Amount.StringFixed(2))
	assert.Equal(t, "3200.00", rows[2].Amount.StringFixed(2))
}

func TestNormalizer_DecimalCommaInDotFileIsSkipped(t *testing.T) {
	data := "Date;Description;Amount\n2025-01-05;Coffee;-3.50\n2025-01-06;Odd;-12,50\n"
	res := parseString(t, DefaultOptions(), data)

	require.Equal(t, 1, res.Table.Len())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Row)
	assert.Equal(t, "amount", res.Skipped[0].Field)
}

func TestNormalizer_SkipsBadRows(t *testing.T) {
	data := `Date,Description,Amount
2025-01-05,Coffee,-3.50
,Missing date,-1.00
2025-01-06,Bad amount,abc
2025-01-07,Zero,0.00
,,
Total,,1234.00
2025-01-08,Lunch,-12.00
`
	res := parseString(t, DefaultOptions(), data)
	assert.Equal(t, 2, res.Table.Len())

	var rowsSkipped []int
	for _, s := range res.Skipped {
		rowsSkipped = append(rowsSkipped, s.Row)
	}
	assert.Equal(t, []int{3, 4, 5, 7}, rowsSkipped)
	assert.Equal(t, `row 4: amount "abc": not a number`, res.Skipped[1].Error())
	assert.Equal(t, "zero amount", res.Skipped[2].Reason)
}

func TestNormalizer_Delimiters(t *testing.T) {
	tests := map[string]string{
		"semicolon": "Date;Description;Amount\n2025-01-05;Coffee, large;-3.50\n",
		"tab":       "Date\tDescription\tAmount\n2025-01-05\tCoffee, large\t-3.50\n",
		"pipe":      "Date|Description|Amount\n2025-01-05|Coffee, large|-3.50\n",
		"quoted":    "\"Date\",\"Description\",\"Amount\"\n2025-01-05,\"Coffee, large\",-3.50\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			rows := parseString(t, DefaultOptions(), data).Table.Rows()
			require.Len(t, rows, 1)
			assert.Equal(t, "Coffee, large", rows[0].Description)
			assert.Equal(t, "-3.50", rows[0].Amount.StringFixed(2))
		})
	}
}

func TestNormalizer_ExplicitColumnsPassThrough(t *testing.T) {
	data := "date,description,amount,type,category,merchant\n2025-01-05,NFLX DIGITAL,-499.00,expense,Subscription,Netflix\n"
	rows := parseString(t, DefaultOptions(), data).Table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "subscription", rows[0].Category)
	assert.Equal(t, "Netflix", rows[0].Merchant)
}

func TestNormalizer_RoundsToCents(t *testing.T) {
	rows := parseString(t, DefaultOptions(), "date,description,amount\n2025-01-05,Fuel,-10.005\n").Table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "-10.01", rows[0].Amount.String())
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Netflix", "Netflix"},
		{"NETFLIX.COM*1234 CA", "Netflix.com"},
		{"GITHUB *PRO SUBSCRIPTION", "Github"},
		{"TRADER JOES #552 SAN FRANCISCO CA", "Trader Joes"},
		{"POS 4421 STARBUCKS STORE", "Starbucks Store"},
		{"UPI/SWIGGY/4455667788/payment", "Swiggy"},
		{"SQ *BLUE BOTTLE COFFEE", "Blue Bottle Coffee"},
		{"AMAZON MKTPLACE PMTS 2024 WA", "Amazon Mktplace Pmts"},
		{"1234567", "1234567"},
		{"", UnknownMerchant},
		{"***", UnknownMerchant},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMerchant(tt.desc))
		})
	}
}

const bankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024012001
<NAME>ACME PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestOFXParser_Parse(t *testing.T) {
	// Leading blank lines are common in bank exports.
	data := "\n\n" + bankOFX

	res, err := (&OFXParser{}).Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	rows := res.Table.Rows()
	require.Len(t, rows, 2)

	assert.True(t, date(2024, time.January, 15).Equal(rows[0].Date))
	assert.Equal(t, "STARBUCKS STORE #1234", rows[0].Description)
	assert.Equal(t, "-25.50", rows[0].Amount.StringFixed(2))
	assert.Equal(t, model.TypeExpense, rows[0].Type)
	assert.Equal(t, "Starbucks Store", rows[0].Merchant)

	assert.Equal(t, model.TypeIncome, rows[1].Type)
	assert.Equal(t, "2500.00", rows[1].Amount.StringFixed(2))
}

func TestOFXParser_Invalid(t *testing.T) {
	_, err := (&OFXParser{}).Parse(strings.NewReader("not valid OFX"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(DefaultOptions())

	p, err := r.ForFile("statement.CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", p.Format())

	p, err = r.ForFile("export.qfx")
	require.NoError(t, err)
	assert.Equal(t, "ofx", p.Format())

	_, err = r.ForFile("notes.pdf")
	assert.Error(t, err)

	assert.NotNil(t, r.Get("OFX"))
	assert.Nil(t, r.Get("xlsx"))

	assert.Panics(t, func() { r.Register(&OFXParser{}) })
}

func TestRegistry_Scan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.ofx", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	files, err := DefaultRegistry(DefaultOptions()).Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.ofx", files[0].Name)
	assert.Equal(t, "ofx", files[0].Format)
	assert.Equal(t, "b.csv", files[1].Name)
	assert.Equal(t, int64(1), files[1].Size)

	files, err = DefaultRegistry(DefaultOptions()).Scan(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
