package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/analytics"
	"github.com/yfirmy/accounting-graph/internal/ledger"
	"github.com/yfirmy/accounting-graph/internal/model"
)

// Currency is the symbol appended to every formatted amount.
const Currency = "€"

// Renderer writes styled report sections to a writer.
type Renderer struct {
	out       io.Writer
	csvOutput bool
}

// NewRenderer creates a renderer writing to out. With csvOutput set,
// transaction dumps use semicolon separators for spreadsheet pasting.
func NewRenderer(out io.Writer, csvOutput bool) *Renderer {
	return &Renderer{out: out, csvOutput: csvOutput}
}

// FormatAmount renders an amount in French convention: space-grouped
// thousands, comma decimals, trailing currency symbol.
func FormatAmount(v decimal.Decimal) string {
	s := v.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := strings.Join(grouped, " ") + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out + " " + Currency
}

// AccountHeader prints the per-account section title.
func (r *Renderer) AccountHeader(accountID, name string) {
	fmt.Fprintf(r.out, "\n%s\n", TitleStyle.Render(fmt.Sprintf("Account %s %q:", accountID, name)))
}

// AnchorBalance prints the statement's known-correct balance line.
func (r *Renderer) AnchorBalance(stmt *model.AccountStatement) {
	fmt.Fprintf(r.out, "%s\n", InfoStyle.Render(fmt.Sprintf("Balance on %s: %s",
		stmt.AnchorDate.Format(model.DateFormat),
		FormatAmount(stmt.AnchorBalance))))
}

// Transactions dumps transactions one per line, oldest last within a
// day group, matching the statement's discovery order.
func (r *Renderer) Transactions(txns []model.Transaction) {
	sep := " "
	if r.csvOutput {
		sep = ";"
	}
	for _, txn := range txns {
		fmt.Fprintf(r.out, "%s%s%s%s%8s%s%q\n",
			txn.ID, sep,
			txn.Date.Format(model.DateFormat), sep,
			txn.Amount.StringFixed(2), sep,
			txn.Label)
	}
}

// DryRunNew lists the transactions an import would add.
func (r *Renderer) DryRunNew(accountID string, txns []model.Transaction) {
	fmt.Fprintf(r.out, "%s\n", SubtleStyle.Render(fmt.Sprintf("Searching operations in database for account %s", accountID)))
	if len(txns) == 0 {
		fmt.Fprintf(r.out, "%s\n", SubtleStyle.Render("No new operation"))
		return
	}
	for _, txn := range txns {
		fmt.Fprintf(r.out, "Operation %s is new: %s %8s %q\n",
			txn.ID, txn.Date.Format(model.DateFormat), txn.Amount.StringFixed(2), txn.Label)
	}
}

// HealthcheckStart announces the reconciliation pass.
func (r *Renderer) HealthcheckStart(accountID, name string) {
	fmt.Fprintf(r.out, "Healthcheck for balance evolution of account %s - %s\n", accountID, name)
}

// BackfillNotes prints the accepted-drift diagnostics.
func (r *Renderer) BackfillNotes(notes []ledger.BackfillNote) {
	for _, note := range notes {
		fmt.Fprintf(r.out, "%s\n", InfoStyle.Render(fmt.Sprintf(
			"balance mismatch on %s due to newly added transactions (%d certified, %d known)",
			note.Date.Format(model.DateFormat), note.CheckpointCount, note.Count)))
	}
}

// HealthcheckOK prints the healthy verdict.
func (r *Renderer) HealthcheckOK() {
	fmt.Fprintf(r.out, "%s\n", SuccessStyle.Render("OK"))
}

// ReconciliationFailure prints the irreconcilable verdict.
func (r *Renderer) ReconciliationFailure(err *ledger.ReconciliationError) {
	fmt.Fprintf(r.out, "%s\n", ErrorStyle.Render(fmt.Sprintf(
		"%s: %s: balance does not match previous checkpoint %s",
		err.Date.Format(model.DateFormat),
		FormatAmount(err.Reconstructed),
		FormatAmount(err.CheckpointBalance))))
}

// BalanceSummary prints the reconstructed series extrema.
func (r *Renderer) BalanceSummary(hist *model.BalanceHistory) {
	last := hist.Series[hist.End]
	fmt.Fprintf(r.out, "Balance evolution from %s to %s\n",
		hist.Start.Format(model.DateFormat), hist.End.Format(model.DateFormat))
	fmt.Fprintf(r.out, "  last: %s on %s\n", FormatAmount(last), hist.End.Format(model.DateFormat))
	fmt.Fprintf(r.out, "  min:  %s on %s\n", FormatAmount(hist.Min), hist.MinDate.Format(model.DateFormat))
	fmt.Fprintf(r.out, "  max:  %s on %s\n", FormatAmount(hist.Max), hist.MaxDate.Format(model.DateFormat))
}

// ComparisonSummary prints the same-day statistics for the most recent
// day that has data across the month-comparison grid.
func (r *Renderer) ComparisonSummary(grid *analytics.Grid) {
	monthAge, day, balance, ok := grid.LastKnown()
	if !ok {
		return
	}
	minB, maxB, mean, ok := grid.SameDayStats(day)
	if !ok {
		return
	}
	which := "current month"
	if monthAge == 1 {
		which = "previous month"
	}
	fmt.Fprintf(r.out, "Comparison on day %d (%s): %s\n", day, which, FormatAmount(balance))
	fmt.Fprintf(r.out, "%s\n", SubtleStyle.Render(fmt.Sprintf(
		"  same day across months - min: %s  max: %s  mean: %s",
		FormatAmount(minB), FormatAmount(maxB), FormatAmount(mean))))
}

// SavingsDerivative prints the monthly net-savings series.
func (r *Renderer) SavingsDerivative(rows []analytics.MonthlySavings) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(r.out, "Monthly savings:\n")
	for _, row := range rows {
		style := ErrorStyle
		sign := ""
		if row.Delta.Sign() >= 0 {
			style = SuccessStyle
			sign = "+"
		}
		fmt.Fprintf(r.out, "  %s  %s\n",
			row.Label.Format("2006-01"),
			style.Render(sign+FormatAmount(row.Delta)))
	}
}

// SavingsSummary prints the aggregate available savings across savings
// accounts, in the order processed.
func (r *Renderer) SavingsSummary(accountIDs []string, savings map[string]decimal.Decimal) {
	if len(accountIDs) == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", WarningStyle.Render("Savings summary:"))
	total := decimal.Zero
	for _, id := range accountIDs {
		amount := savings[id]
		total = total.Add(amount)
		fmt.Fprintf(r.out, "  Savings for account %s: %s\n", id, FormatAmount(amount))
	}
	fmt.Fprintf(r.out, "\n%s\n", WarningStyle.Render("Total savings: "+FormatAmount(total)))
}
