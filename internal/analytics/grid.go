// Package analytics derives presentation-ready figures from a
// reconstructed balance history: the month-over-month comparison grid
// and the monthly savings derivative.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// DaysInMonth is the width of a comparison row: day-of-month columns
// 1..31, plus an unused slot 0 so columns align with calendar days.
const DaysInMonth = 31

// Grid overlays balance trajectories of consecutive months on a common
// day-of-month axis. Row 0 is the anchor's month, higher rows are
// progressively older months. Absent days stay nil.
type Grid struct {
	Rows [][]*decimal.Decimal
}

// CompareMonths buckets each day's balance into its (months-before-
// anchor, day-of-month) cell.
func CompareMonths(hist *model.BalanceHistory, anchorDate time.Time) *Grid {
	anchor := model.Day(anchorDate)
	grid := &Grid{}

	for day, balance := range hist.Series {
		monthAge := monthsBeforeAnchor(anchor, day)
		for len(grid.Rows) <= monthAge {
			grid.Rows = append(grid.Rows, make([]*decimal.Decimal, DaysInMonth+1))
		}
		b := balance
		grid.Rows[monthAge][day.Day()] = &b
	}

	return grid
}

// monthsBeforeAnchor counts whole calendar months between a day's month
// and the anchor's month. Days within the anchor's month count as 0.
func monthsBeforeAnchor(anchor, day time.Time) int {
	return (anchor.Year()-day.Year())*12 + int(anchor.Month()) - int(day.Month())
}

// LastKnown returns the most recent day that has data: the last
// populated column of the current month's row, falling back to the
// previous month when the current month is still empty.
func (g *Grid) LastKnown() (monthAge, day int, balance decimal.Decimal, ok bool) {
	for monthAge = 0; monthAge < len(g.Rows) && monthAge <= 1; monthAge++ {
		row := g.Rows[monthAge]
		for day = len(row) - 1; day >= 1; day-- {
			if row[day] != nil {
				return monthAge, day, *row[day], true
			}
		}
	}
	return 0, 0, decimal.Zero, false
}

// SameDayStats computes min, max and mean balance for one day-of-month
// column across every month that has data for it.
func (g *Grid) SameDayStats(day int) (minBalance, maxBalance, mean decimal.Decimal, ok bool) {
	if day < 1 || day > DaysInMonth {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}

	sum := decimal.Zero
	count := 0
	for _, row := range g.Rows {
		cell := row[day]
		if cell == nil {
			continue
		}
		if count == 0 {
			minBalance, maxBalance = *cell, *cell
		} else {
			if cell.LessThan(minBalance) {
				minBalance = *cell
			}
			if cell.GreaterThan(maxBalance) {
				maxBalance = *cell
			}
		}
		sum = sum.Add(*cell)
		count++
	}

	if count == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}
	return minBalance, maxBalance, sum.Div(decimal.NewFromInt(int64(count))), true
}
