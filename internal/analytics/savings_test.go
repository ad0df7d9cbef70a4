package analytics

import (
	"testing"
	"time"
)

func TestSavingsDerivative_MonthlyDeltas(t *testing.T) {
	// Balance rises by 1 per day, so each delta equals the number of
	// days in its period.
	hist := rampHistory(day(2024, 1, 10), day(2024, 3, 31))

	out := SavingsDerivative(hist, 28)
	if len(out) != 4 {
		t.Fatalf("got %d periods, want 4", len(out))
	}

	tests := []struct {
		label time.Time
		delta string
	}{
		{day(2024, 1, 16), "18"}, // partial first period, 01-10 to 01-28
		{day(2024, 2, 15), "31"}, // 01-28 to 02-28
		{day(2024, 3, 16), "29"}, // 02-28 to 03-28, leap February
		{day(2024, 4, 16), "3"},  // trailing 03-28 to 03-31, label pushed forward
	}
	for i, tt := range tests {
		if !out[i].Label.Equal(tt.label) {
			t.Errorf("period %d label = %s, want %s", i, out[i].Label.Format("2006-01-02"), tt.label.Format("2006-01-02"))
		}
		if !out[i].Delta.Equal(dec(tt.delta)) {
			t.Errorf("period %d delta = %s, want %s", i, out[i].Delta, tt.delta)
		}
	}
}

func TestSavingsDerivative_AnchorIndependence(t *testing.T) {
	// Pulling the statement on the 5th or the 20th must not change the
	// complete pay-day periods in the middle.
	a := SavingsDerivative(rampHistory(day(2024, 1, 10), day(2024, 4, 5)), 28)
	b := SavingsDerivative(rampHistory(day(2024, 1, 10), day(2024, 4, 20)), 28)

	// 01-28 to 02-28 and 02-28 to 03-28 are complete in both histories.
	for _, periods := range [][]MonthlySavings{a, b} {
		found := false
		for _, p := range periods {
			if p.Label.Equal(day(2024, 2, 15)) && p.Delta.Equal(dec("31")) {
				found = true
			}
		}
		if !found {
			t.Error("complete February period missing or changed")
		}
	}
}

func TestSavingsDerivative_HistoryShortOfPayDay(t *testing.T) {
	// A history that never reaches a pay-day anchor has no measurable
	// period.
	hist := rampHistory(day(2024, 3, 1), day(2024, 3, 20))

	if out := SavingsDerivative(hist, 28); len(out) != 0 {
		t.Fatalf("got %d periods, want 0", len(out))
	}
}
