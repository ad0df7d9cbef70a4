package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatement is the in-memory working set for one account: every
// known operation grouped by calendar day, plus the anchor balance known
// to be correct strictly after all of the anchor date's operations.
type AccountStatement struct {
	AnchorDate    time.Time
	Operations    map[time.Time][]Transaction
	AccountID     string
	AnchorBalance decimal.Decimal
}

// NewAccountStatement creates an empty statement for an account.
func NewAccountStatement(accountID string) *AccountStatement {
	return &AccountStatement{
		AccountID:  accountID,
		Operations: make(map[time.Time][]Transaction),
	}
}

// Add appends a transaction to its day's operation list. Append order is
// discovery order.
func (s *AccountStatement) Add(txn Transaction) {
	day := Day(txn.Date)
	txn.Date = day
	s.Operations[day] = append(s.Operations[day], txn)
}

// DateBounds returns the earliest and latest days with recorded
// operations. ok is false when the statement is empty.
func (s *AccountStatement) DateBounds() (minDate, maxDate time.Time, ok bool) {
	for day := range s.Operations {
		if !ok {
			minDate, maxDate = day, day
			ok = true
			continue
		}
		if day.Before(minDate) {
			minDate = day
		}
		if day.After(maxDate) {
			maxDate = day
		}
	}
	return minDate, maxDate, ok
}

// CountOn returns the number of operations recorded on a day.
func (s *AccountStatement) CountOn(day time.Time) int {
	return len(s.Operations[Day(day)])
}

// SumOn returns the summed amount of all operations on a day.
func (s *AccountStatement) SumOn(day time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range s.Operations[Day(day)] {
		sum = sum.Add(txn.Amount)
	}
	return sum
}

// All returns every transaction in the statement, days in no particular
// order, same-day transactions in append order.
func (s *AccountStatement) All() []Transaction {
	var txns []Transaction
	for _, ops := range s.Operations {
		txns = append(txns, ops...)
	}
	return txns
}
