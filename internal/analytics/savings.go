package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// MonthlySavings is one month's net balance change, labeled at the
// midpoint day of the month it covers.
type MonthlySavings struct {
	Label time.Time
	Delta decimal.Decimal
}

// SavingsDerivative partitions the balance history into calendar months
// anchored at the pay day and returns the balance delta between each
// consecutive pair of anchor points. The result is independent of the
// day-of-month on which the statement was pulled: partial first and last
// periods are included when the history covers them. When the final
// sample falls after the pay day its label shifts into the following
// month.
func SavingsDerivative(hist *model.BalanceHistory, payDay int) []MonthlySavings {
	first := hist.Start
	last := hist.End

	firstAnchor := time.Date(first.Year(), first.Month(), payDay, 0, 0, 0, 0, time.UTC)
	span := monthsBetween(last, firstAnchor)

	anchors := make([]time.Time, 0, span+3)
	for x := 0; x <= span; x++ {
		anchors = append(anchors, firstAnchor.AddDate(0, x, 0))
	}
	if first.Before(anchors[0]) {
		anchors = append([]time.Time{first}, anchors...)
	}
	if last.After(anchors[len(anchors)-1]) {
		anchors = append(anchors, last)
	}

	var out []MonthlySavings
	var previous *time.Time
	for i := range anchors {
		anchor := anchors[i]
		if previous != nil {
			now, okNow := hist.At(anchor)
			before, okBefore := hist.At(*previous)
			if okNow && okBefore {
				addDays := 0
				if anchor.Equal(last) && anchor.Day() > payDay {
					addDays = 15
				}
				shifted := anchor.AddDate(0, 0, addDays)
				displayMonth := time.Date(shifted.Year(), shifted.Month(), 1, 0, 0, 0, 0, time.UTC)
				size := daysInMonth(anchor.Year(), displayMonth.Month())
				out = append(out, MonthlySavings{
					Label: time.Date(displayMonth.Year(), displayMonth.Month(), size/2+1, 0, 0, 0, 0, time.UTC),
					Delta: now.Sub(before),
				})
			}
		}
		previous = &anchors[i]
	}

	return out
}

// monthsBetween counts complete calendar months from b up to a.
func monthsBetween(a, b time.Time) int {
	months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
	if a.Day() < b.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
