package importer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// ofxTransaction is a bank statement line reduced to what an expense needs.
type ofxTransaction struct {
	Posted      time.Time
	Name        string
	Amount      decimal.Decimal
	PaymentMode model.PaymentMode
}

var (
	severityRegExp = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegExp  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in files banks produce:
// leading whitespace, mixed-case SEVERITY values, and SGML-style tags
// missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegExp.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRegExp.ReplaceAllString(content, "$1>")
	return content
}

// parseOFXTransactions reads an OFX/QFX statement and returns its debit
// transactions. Credits (deposits, refunds) are not expenses and are
// skipped.
func parseOFXTransactions(r io.Reader) ([]ofxTransaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse OFX file: %v", common.ErrValidation, err)
	}

	var transactions []ofxTransaction
	credits := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			converted, isDebit := convertOFXTransaction(tx, model.PaymentModeOther)
			if !isDebit {
				credits++
				continue
			}
			transactions = append(transactions, converted)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			converted, isDebit := convertOFXTransaction(tx, model.PaymentModeCard)
			if !isDebit {
				credits++
				continue
			}
			transactions = append(transactions, converted)
		}
	}

	slog.Info("parsed OFX statement", "debits", len(transactions), "credits_skipped", credits)
	return transactions, nil
}

// convertOFXTransaction maps one OFX transaction. OFX amounts are negative
// for debits; the returned amount is the positive expense value.
func convertOFXTransaction(tx ofxgo.Transaction, mode model.PaymentMode) (ofxTransaction, bool) {
	amount, _ := tx.TrnAmt.Float64()
	if amount >= 0 {
		return ofxTransaction{}, false
	}

	name := string(tx.Name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		name = string(tx.Payee.Name)
	}
	if name == "" && tx.Memo != "" {
		name = string(tx.Memo)
	}

	return ofxTransaction{
		Posted:      tx.DtPosted.Time,
		Name:        strings.TrimSpace(name),
		Amount:      decimal.NewFromFloat(-amount),
		PaymentMode: mode,
	}, true
}
