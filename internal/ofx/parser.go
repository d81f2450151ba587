// Package ofx reads OFX and QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Reader reads a statement from a local path or gs:// URI.
type Reader struct {
	logger   *slog.Logger
	location string
}

// NewReader creates a statement reader for location.
func NewReader(location string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{location: location, logger: logger}
}

// ReadTransactions parses every bank and credit card transaction in the
// statement, in file order.
func (r *Reader) ReadTransactions(ctx context.Context) ([]model.Transaction, error) {
	f, err := ledger.Open(ctx, r.location)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Parse(ctx, f)
}

// preprocess fixes common formatting issues in bank-exported OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of bare opening tags.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse reads a statement from in.
func (r *Reader) Parse(_ context.Context, in io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			transactions = append(transactions, r.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), len(transactions))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			transactions = append(transactions, r.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), len(transactions))...)
		}
	}

	r.logger.Info("Parsed OFX file",
		"source", r.location,
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (r *Reader) convertAll(ofxTxns []ofxgo.Transaction, accountID string, offset int) []model.Transaction {
	transactions := make([]model.Transaction, 0, len(ofxTxns))

	for i, ofxTx := range ofxTxns {
		txn, err := r.convert(ofxTx, offset+i)
		if err != nil {
			r.logger.Warn("Skipping malformed transaction",
				"account", accountID,
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	return transactions
}

// convert maps one OFX transaction. OFX amounts are already signed from
// the account holder's view: negative is money out.
func (r *Reader) convert(ofxTx ofxgo.Transaction, index int) (model.Transaction, error) {
	description, err := model.NewDescription(describe(ofxTx))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", ledger.ErrMalformedRow, err)
	}

	value, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: invalid amount: %w", ledger.ErrMalformedRow, err)
	}

	amount := model.Credit(value)
	if value.IsNegative() {
		amount = model.Debit(value)
	}

	id := string(ofxTx.FiTID)
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", r.location, index)).String()
	}

	return model.NewTransaction(id, ofxTx.DtPosted.Time, description, amount), nil
}

// describe picks NAME, then PAYEE name, then MEMO.
func describe(tx ofxgo.Transaction) string {
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	if tx.Payee != nil {
		if name := strings.TrimSpace(string(tx.Payee.Name)); name != "" {
			return name
		}
	}
	return strings.TrimSpace(string(tx.Memo))
}
