// Package ledger implements balance reconstruction and checkpoint
// reconciliation for a single account's transaction history.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// ErrNoOperations is returned when reconstruction is asked to replay a
// statement with no recorded operations.
var ErrNoOperations = errors.New("statement has no operations")

// Reconstruct replays the statement's operations backward from the
// anchor to derive the full daily balance series.
//
// The walk starts at the anchor date holding the anchor balance (the
// balance after that date's operations). At each day it subtracts the
// day's summed amounts and records the result under that day's key, then
// steps back one calendar day, down to and including the earliest day
// with any operation. Every calendar day in between gets an entry, with
// or without operations. Running min/max keep the first-occurring date.
func Reconstruct(stmt *model.AccountStatement) (*model.BalanceHistory, error) {
	minDate, _, ok := stmt.DateBounds()
	if !ok {
		return nil, ErrNoOperations
	}

	hist := &model.BalanceHistory{
		Series:  make(map[time.Time]decimal.Decimal),
		Start:   minDate,
		End:     model.Day(stmt.AnchorDate),
		Min:     stmt.AnchorBalance,
		MinDate: model.Day(stmt.AnchorDate),
		Max:     stmt.AnchorBalance,
		MaxDate: model.Day(stmt.AnchorDate),
	}

	balance := stmt.AnchorBalance
	for day := hist.End; !day.Before(minDate); day = day.AddDate(0, 0, -1) {
		balance = balance.Sub(stmt.SumOn(day))
		hist.Series[day] = balance

		if balance.LessThan(hist.Min) {
			hist.Min = balance
			hist.MinDate = day
		}
		if balance.GreaterThan(hist.Max) {
			hist.Max = balance
			hist.MaxDate = day
		}
	}

	return hist, nil
}
