package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Checkpoint is a certified fact persisted once per date: the
// reconstructed balance for the account on that date, and the number of
// transactions it was computed from. Checkpoints are append-only and
// never updated.
type Checkpoint struct {
	Date             time.Time
	Balance          decimal.Decimal
	TransactionCount int
}

// BalanceHistory is the output of balance reconstruction: one balance
// per calendar day from Start to End inclusive, plus the running extrema
// with their first-occurring dates.
type BalanceHistory struct {
	Series  map[time.Time]decimal.Decimal
	Start   time.Time
	End     time.Time
	MinDate time.Time
	MaxDate time.Time
	Min     decimal.Decimal
	Max     decimal.Decimal
}

// At returns the balance recorded for a day.
func (h *BalanceHistory) At(day time.Time) (decimal.Decimal, bool) {
	b, ok := h.Series[Day(day)]
	return b, ok
}

// Days returns every day in the series from End down to Start, matching
// the order the reconstruction walk produced them in.
func (h *BalanceHistory) Days() []time.Time {
	days := make([]time.Time, 0, len(h.Series))
	for day := h.End; !day.Before(h.Start); day = day.AddDate(0, 0, -1) {
		days = append(days, day)
	}
	return days
}
