// Package ofx parses OFX/QFX bank exports into account statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files.
	// Pattern: <TAGNAME at end of line (no > and no content after tag)
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns one statement per
// account found in it. Each statement carries the account's ledger
// balance anchor (balance and as-of date) plus its transactions.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]*model.AccountStatement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []*model.AccountStatement

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			acctStmt, err := p.convertStatement(
				string(stmt.BankAcctFrom.AcctID),
				&stmt.BalAmt.Rat, stmt.DtAsOf.Time,
				stmt.BankTranList)
			if err != nil {
				slog.Warn("Failed to process bank statement",
					"account", stmt.BankAcctFrom.AcctID,
					"error", err)
				continue
			}
			statements = append(statements, acctStmt)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			acctStmt, err := p.convertStatement(
				string(stmt.CCAcctFrom.AcctID),
				&stmt.BalAmt.Rat, stmt.DtAsOf.Time,
				stmt.BankTranList)
			if err != nil {
				slog.Warn("Failed to process credit card statement",
					"account", stmt.CCAcctFrom.AcctID,
					"error", err)
				continue
			}
			statements = append(statements, acctStmt)
		}
	}

	slog.Info("Parsed OFX file", "accounts", len(statements))

	return statements, nil
}

// convertStatement builds an AccountStatement from one OFX statement.
func (p *Parser) convertStatement(accountID string, balance *big.Rat, asOf time.Time, list *ofxgo.TransactionList) (*model.AccountStatement, error) {
	anchorBalance, err := ratToDecimal(balance)
	if err != nil {
		return nil, fmt.Errorf("ledger balance: %w", err)
	}

	stmt := model.NewAccountStatement(accountID)
	stmt.AnchorDate = model.Day(asOf)
	stmt.AnchorBalance = anchorBalance

	if list == nil || len(list.Transactions) == 0 {
		slog.Warn("No transactions in statement", "account", accountID)
		return stmt, nil
	}

	for _, ofxTx := range list.Transactions {
		amount, err := ratToDecimal(&ofxTx.TrnAmt.Rat)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount: %w", ofxTx.FiTID, err)
		}
		stmt.Add(model.Transaction{
			ID:        string(ofxTx.FiTID),
			AccountID: accountID,
			Date:      ofxTx.DtPosted.Time,
			Label:     transactionLabel(ofxTx),
			Amount:    amount,
		})
	}

	return stmt, nil
}

// transactionLabel prefers the memo, which French bank exports use for
// the operation wording, over the name field.
func transactionLabel(tx ofxgo.Transaction) string {
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" {
		return memo
	}
	return strings.TrimSpace(string(tx.Name))
}

func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	// FloatString rounds past any realistic currency precision; parsing
	// it back keeps amounts exact for ledger arithmetic.
	return decimal.NewFromString(trimTrailingZeros(r.FloatString(5)))
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
