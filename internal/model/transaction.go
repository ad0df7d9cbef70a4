// Package model defines the core domain types shared across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical textual representation of a calendar day.
const DateFormat = "2006-01-02"

// Day truncates a timestamp to its calendar day at midnight UTC. All
// same-day transactions group under the same key.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Transaction represents a single bank operation. Immutable once created.
type Transaction struct {
	Date      time.Time
	ID        string
	AccountID string
	Label     string
	Tag       string
	Amount    decimal.Decimal
}

// ContentID derives a stable identity for transactions whose source
// provides none (CSV exports). The ordinal is the transaction's position
// among same-day rows in file order, so two identical rows on the same
// day keep distinct identities. A bank amending the label of a row
// changes its identity; such a row re-imports as new.
func (t *Transaction) ContentID(ordinal int) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%d",
		t.AccountID,
		t.Date.Format(DateFormat),
		t.Label,
		t.Amount.String(),
		ordinal)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
