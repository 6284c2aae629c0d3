package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// ofxProductCodes maps OFX transaction types onto ledger product codes.
// Types not listed are left untagged and fall through to the keyword rules.
var ofxProductCodes = map[string]string{
	"INT":    "INT_CR",
	"DIV":    "INT_CR",
	"SRVCHG": "CHG_SMS",
	"FEE":    "CHG_SMS",
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes formatting issues that ofxgo rejects.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ReadOFX parses an OFX/QFX statement download into transaction records.
// Debits and credits both become non-negative amounts.
func ReadOFX(r io.Reader, logger *slog.Logger) ([]model.TransactionRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var records []model.TransactionRecord

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		txns, err := convertTransactions(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String())
		if err != nil {
			return nil, err
		}
		records = append(records, txns...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		txns, err := convertTransactions(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String())
		if err != nil {
			return nil, err
		}
		records = append(records, txns...)
	}

	logger.Info("Parsed OFX file", "transactions", len(records))
	return records, nil
}

func convertTransactions(txns []ofxgo.Transaction, accountID, currency string) ([]model.TransactionRecord, error) {
	if currency == "" || currency == "XXX" {
		currency = DefaultCurrency
	}

	records := make([]model.TransactionRecord, 0, len(txns))
	for _, ofxTx := range txns {
		amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid amount: %w", ofxTx.FiTID, err)
		}

		records = append(records, model.TransactionRecord{
			ID:          string(ofxTx.FiTID),
			AccountID:   accountID,
			Date:        ofxTx.DtPosted.Time,
			ProductCode: ofxProductCodes[ofxTx.TrnType.String()],
			Description: ofxDescription(ofxTx),
			Amount:      amount.Abs(),
			Currency:    currency,
		})
	}
	return records, nil
}

// ofxDescription prefers NAME, then PAYEE, then MEMO.
func ofxDescription(tx ofxgo.Transaction) string {
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	return strings.TrimSpace(string(tx.Memo))
}
