package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconstruct_EmptyStatement(t *testing.T) {
	stmt := model.NewAccountStatement("1")
	stmt.AnchorDate = day(2024, 3, 31)
	stmt.AnchorBalance = dec("1000")

	if _, err := Reconstruct(stmt); err != ErrNoOperations {
		t.Errorf("err = %v, want ErrNoOperations", err)
	}
}

func TestReconstruct_SingleTransactionOnAnchorDay(t *testing.T) {
	// Anchor balance B on date D with one transaction of amount A on D:
	// the balance entering D (recorded under D's key) is B - A.
	stmt := model.NewAccountStatement("1")
	stmt.AnchorDate = day(2024, 3, 31)
	stmt.AnchorBalance = dec("1000")
	stmt.Add(model.Transaction{ID: "a", Date: day(2024, 3, 31), Amount: dec("40")})

	hist, err := Reconstruct(stmt)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if len(hist.Series) != 1 {
		t.Fatalf("series has %d entries, want 1", len(hist.Series))
	}
	if got := hist.Series[day(2024, 3, 31)]; !got.Equal(dec("960")) {
		t.Errorf("balance = %s, want 960", got)
	}
}

func TestReconstruct_EndToEndScenario(t *testing.T) {
	// Anchor 1000 on 2024-03-31, -50 on 03-30, +20 on 03-15.
	stmt := model.NewAccountStatement("1")
	stmt.AnchorDate = day(2024, 3, 31)
	stmt.AnchorBalance = dec("1000")
	stmt.Add(model.Transaction{ID: "a", Date: day(2024, 3, 30), Amount: dec("-50")})
	stmt.Add(model.Transaction{ID: "b", Date: day(2024, 3, 15), Amount: dec("20")})

	hist, err := Reconstruct(stmt)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	tests := []struct {
		date time.Time
		want string
	}{
		{day(2024, 3, 31), "1000"}, // nothing posted on the 31st
		{day(2024, 3, 30), "1050"}, // the -50 reversed
		{day(2024, 3, 29), "1050"},
		{day(2024, 3, 16), "1050"},
		{day(2024, 3, 15), "1030"}, // the +20 reversed
	}
	for _, tt := range tests {
		got, ok := hist.At(tt.date)
		if !ok {
			t.Errorf("no entry for %s", tt.date.Format(model.DateFormat))
			continue
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("balance[%s] = %s, want %s", tt.date.Format(model.DateFormat), got, tt.want)
		}
	}
}

func TestReconstruct_DenseSeries(t *testing.T) {
	stmt := model.NewAccountStatement("1")
	stmt.AnchorDate = day(2024, 3, 31)
	stmt.AnchorBalance = dec("1000")
	stmt.Add(model.Transaction{ID: "a", Date: day(2024, 2, 10), Amount: dec("-5")})

	hist, err := Reconstruct(stmt)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	// One entry per calendar day from 2024-02-10 to 2024-03-31 inclusive,
	// zero-transaction days included (2024 is a leap year: 20 + 31 days).
	if len(hist.Series) != 51 {
		t.Errorf("series has %d entries, want 51", len(hist.Series))
	}
	for d := day(2024, 2, 10); !d.After(day(2024, 3, 31)); d = d.AddDate(0, 0, 1) {
		if _, ok := hist.Series[d]; !ok {
			t.Errorf("gap at %s", d.Format(model.DateFormat))
		}
	}
}

func TestReconstruct_Extrema(t *testing.T) {
	stmt := model.NewAccountStatement("1")
	stmt.AnchorDate = day(2024, 3, 31)
	stmt.AnchorBalance = dec("100")
	stmt.Add(model.Transaction{ID: "a", Date: day(2024, 3, 20), Amount: dec("-200")}) // entering the 20th: 300
	stmt.Add(model.Transaction{ID: "b", Date: day(2024, 3, 10), Amount: dec("350")})  // entering the 10th: -50

	hist, err := Reconstruct(stmt)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if !hist.Min.Equal(dec("-50")) || !hist.MinDate.Equal(day(2024, 3, 10)) {
		t.Errorf("min = %s on %s, want -50 on 2024-03-10", hist.Min, hist.MinDate.Format(model.DateFormat))
	}
	if !hist.Max.Equal(dec("300")) || !hist.MaxDate.Equal(day(2024, 3, 20)) {
		t.Errorf("max = %s on %s, want 300 on 2024-03-20", hist.Max, hist.MaxDate.Format(model.DateFormat))
	}
}
