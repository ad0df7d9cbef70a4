package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/model"
)

// Epsilon is the tolerance when comparing a reconstructed balance to a
// checkpoint persisted by earlier float-based versions of the tool.
// Freshly written checkpoints round-trip exactly through decimal
// strings, but old databases are still honored.
var Epsilon = decimal.RequireFromString("0.00001")

// CheckpointSource reads previously certified checkpoints.
type CheckpointSource interface {
	ReadCheckpoint(ctx context.Context, day time.Time) (*model.Checkpoint, error)
}

// CheckpointSink persists newly certified checkpoints.
type CheckpointSink interface {
	WriteCheckpointIfAbsent(ctx context.Context, cp *model.Checkpoint) error
}

// ReconciliationError reports a reconstructed balance that disagrees
// with a fact certified from no-less information. It aborts the whole
// reconciliation pass for the account: the replay of the ledger no
// longer produces the history that was previously certified.
type ReconciliationError struct {
	Date              time.Time
	Reconstructed     decimal.Decimal
	CheckpointBalance decimal.Decimal
	Count             int
	CheckpointCount   int
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("balance on %s does not match previous checkpoint: reconstructed %s (%d transactions), certified %s (%d transactions)",
		e.Date.Format(model.DateFormat),
		e.Reconstructed.String(), e.Count,
		e.CheckpointBalance.String(), e.CheckpointCount)
}

// BackfillNote records an accepted mismatch: the checkpoint was
// certified from strictly fewer transactions than are known now, so the
// drift is attributed to later-arriving transactions.
type BackfillNote struct {
	Date            time.Time
	Reconstructed   decimal.Decimal
	Count           int
	CheckpointCount int
}

// Reconcile compares every reconstructed daily balance against the
// stored checkpoint for that date, walking from the anchor backward.
//
// Each date is paired with the transaction count of the day immediately
// preceding it: the recorded balance for a date is the balance entering
// that day, so the previous day's transactions are the inputs that
// justify it. A date without a checkpoint is unconstrained. A checkpoint
// certified from strictly fewer transactions than are now known may
// disagree; that is expected backfill drift and yields a note. Any other
// disagreement returns a ReconciliationError and stops the pass.
func Reconcile(ctx context.Context, src CheckpointSource, stmt *model.AccountStatement, hist *model.BalanceHistory) ([]BackfillNote, error) {
	var notes []BackfillNote

	for _, day := range hist.Days() {
		balance := hist.Series[day]
		count := stmt.CountOn(day.AddDate(0, 0, -1))

		cp, err := src.ReadCheckpoint(ctx, day)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return notes, fmt.Errorf("failed to read checkpoint for %s: %w", day.Format(model.DateFormat), err)
		}

		eqBalance := cp.Balance.Sub(balance).Abs().LessThanOrEqual(Epsilon)
		// A checkpoint with an unknown count (-1) constrains the balance only.
		eqCount := cp.TransactionCount < 0 || cp.TransactionCount == count
		countGrew := cp.TransactionCount >= 0 && cp.TransactionCount < count

		if eqBalance && eqCount {
			continue
		}
		if countGrew {
			notes = append(notes, BackfillNote{
				Date:            day,
				Reconstructed:   balance,
				Count:           count,
				CheckpointCount: cp.TransactionCount,
			})
			continue
		}

		return notes, &ReconciliationError{
			Date:              day,
			Reconstructed:     balance,
			CheckpointBalance: cp.Balance,
			Count:             count,
			CheckpointCount:   cp.TransactionCount,
		}
	}

	return notes, nil
}

// Certify persists the checkpoint for the statement's anchor date: the
// anchor balance together with the anchor date's transaction count. The
// write is a no-op if that date was already certified.
func Certify(ctx context.Context, sink CheckpointSink, stmt *model.AccountStatement) error {
	cp := &model.Checkpoint{
		Date:             model.Day(stmt.AnchorDate),
		Balance:          stmt.AnchorBalance,
		TransactionCount: stmt.CountOn(stmt.AnchorDate),
	}
	if err := sink.WriteCheckpointIfAbsent(ctx, cp); err != nil {
		return fmt.Errorf("failed to certify anchor checkpoint: %w", err)
	}
	return nil
}
