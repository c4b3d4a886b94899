package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/spendlens/spendlens/internal/model"
)

// OFXParser parses OFX/QFX bank and credit card statements.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting issues common in bank-exported OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// Parse reads an OFX response and returns every statement transaction. Row
// numbers in ParseErrors are 1-based transaction positions across statements.
func (p *OFXParser) Parse(r io.Reader) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parsing OFX: %w", err)
	}

	var lists []*ofxgo.TransactionList
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
		}
	}

	var rows []model.Transaction
	var skipped []ParseError
	n := 0
	for _, list := range lists {
		for _, ofxTx := range list.Transactions {
			n++
			txn, perr := convertOFX(ofxTx)
			if perr != nil {
				perr.Row = n
				skipped = append(skipped, *perr)
				continue
			}
			rows = append(rows, txn)
		}
	}

	return &Result{Table: model.NewTable(rows), Skipped: skipped}, nil
}

func convertOFX(tx ofxgo.Transaction) (model.Transaction, *ParseError) {
	if tx.DtPosted.IsZero() {
		return model.Transaction{}, &ParseError{Field: fieldDate.String(), Reason: "missing DTPOSTED"}
	}

	raw := tx.TrnAmt.FloatString(2)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, &ParseError{Field: fieldAmount.String(), Value: raw, Reason: err.Error()}
	}
	if amount.IsZero() {
		return model.Transaction{}, &ParseError{Field: fieldAmount.String(), Value: raw, Reason: "zero amount"}
	}

	desc := collapseSpace(string(tx.Name))
	if desc == "" {
		desc = collapseSpace(string(tx.Memo))
	}

	merchant := ""
	if tx.Payee != nil {
		merchant = collapseSpace(string(tx.Payee.Name))
		if desc == "" {
			desc = merchant
		}
	}
	if merchant == "" {
		merchant = NormalizeMerchant(desc)
	}

	return model.Transaction{
		Date:        model.DateOnly(tx.DtPosted.Time),
		Description: desc,
		Amount:      amount,
		Type:        model.TypeForAmount(amount),
		Merchant:    merchant,
	}, nil
}
