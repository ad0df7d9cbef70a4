// Package export parses CSV bank exports into account statements.
//
// The supported format is the bank's account-history download: a
// Windows-1252 encoded, semicolon-separated file holding one balance
// line ("Solde au DD/MM/YYYY <amount> €") and one row per operation with
// separate debit and credit columns in French number format.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/model"
)

const csvDateFormat = "02/01/2006"

var (
	balancePattern   = regexp.MustCompile(`^Solde au ([0-3]\d/[0-1]\d/[12]\d{3}) ([\d\x{00a0} ]*\d+,\d{2}) €`)
	operationPattern = regexp.MustCompile(`^[0-3]\d/[0-1]\d/[12]\d{3}$`)
)

// Parser implements CSV bank-export parsing.
type Parser struct{}

// NewParser creates a new CSV parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses a CSV export and returns the single statement it
// holds. CSV exports never carry an account identifier, so the caller
// supplies it; they carry no transaction ids either, so each row gets a
// content-derived identity (see Transaction.ContentID).
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, accountID string) (*model.AccountStatement, error) {
	stmt := model.NewAccountStatement(accountID)

	r := csv.NewReader(charmap.Windows1252.NewDecoder().Reader(reader))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	sameDayOrdinals := make(map[time.Time]int)

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
		}

		switch {
		case len(row) == 1:
			if m := balancePattern.FindStringSubmatch(row[0]); m != nil {
				anchorDate, err := time.Parse(csvDateFormat, m[1])
				if err != nil {
					return nil, fmt.Errorf("%w: balance date %q: %v", common.ErrMalformedInput, m[1], err)
				}
				anchorBalance, err := parseFrenchAmount(m[2])
				if err != nil {
					return nil, fmt.Errorf("%w: balance amount %q: %v", common.ErrMalformedInput, m[2], err)
				}
				stmt.AnchorDate = model.Day(anchorDate)
				stmt.AnchorBalance = anchorBalance
			}
		case len(row) >= 4:
			if !operationPattern.MatchString(row[0]) {
				continue
			}
			txn, err := p.parseOperation(accountID, row, sameDayOrdinals)
			if err != nil {
				return nil, err
			}
			stmt.Add(txn)
		}
	}

	if stmt.AnchorDate.IsZero() {
		return nil, fmt.Errorf("%w: no balance line found", common.ErrMalformedInput)
	}

	slog.Info("Parsed CSV export",
		"account", accountID,
		"transactions", len(stmt.All()),
		"anchor_date", stmt.AnchorDate.Format(model.DateFormat))

	return stmt, nil
}

// parseOperation converts one DD/MM/YYYY;label;debit;credit row.
func (p *Parser) parseOperation(accountID string, row []string, ordinals map[time.Time]int) (model.Transaction, error) {
	date, err := time.Parse(csvDateFormat, row[0])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: operation date %q: %v", common.ErrMalformedInput, row[0], err)
	}

	debit, err := parseOptionalFrenchAmount(row[2])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: debit %q: %v", common.ErrMalformedInput, row[2], err)
	}
	credit, err := parseOptionalFrenchAmount(row[3])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: credit %q: %v", common.ErrMalformedInput, row[3], err)
	}

	amount := credit
	if debit.IsPositive() {
		amount = debit.Neg()
	}

	day := model.Day(date)
	txn := model.Transaction{
		AccountID: accountID,
		Date:      day,
		Label:     strings.TrimSpace(row[1]),
		Amount:    amount,
	}
	txn.ID = txn.ContentID(ordinals[day])
	ordinals[day]++

	return txn, nil
}

// parseFrenchAmount parses "1 234,56" (NBSP or space thousands
// separator, comma decimal separator).
func parseFrenchAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "", ",", ".").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(cleaned)
}

// parseOptionalFrenchAmount treats an empty column as zero.
func parseOptionalFrenchAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseFrenchAmount(s)
}
