package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/model"
)

// ReadCheckpoint returns the checkpoint certified for a day, or
// common.ErrNotFound when the day is unconstrained.
func (s *AccountStore) ReadCheckpoint(ctx context.Context, day time.Time) (*model.Checkpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var epoch int64
	var rawBalance string
	var count sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT date_epoch, balance, transaction_count
		FROM checkpoints
		WHERE date_epoch = ?
	`, model.Day(day).Unix()).Scan(&epoch, &rawBalance, &count)

	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return nil, fmt.Errorf("stored balance %q: %w", rawBalance, err)
	}

	cp := &model.Checkpoint{
		Date:    model.Day(timeFromEpoch(epoch)),
		Balance: balance,
	}
	// Databases written by earlier versions may hold NULL counts; a NULL
	// count constrains nothing, so it reads as -1 and reconciliation
	// treats it as matching any count.
	cp.TransactionCount = -1
	if count.Valid {
		cp.TransactionCount = int(count.Int64)
	}

	return cp, nil
}

// WriteCheckpointIfAbsent persists a checkpoint unless one already
// exists for that date. Checkpoints are append-only facts: an existing
// row is never updated, the write is a silent no-op.
func (s *AccountStore) WriteCheckpointIfAbsent(ctx context.Context, cp *model.Checkpoint) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCheckpoint(cp); err != nil {
		return err
	}

	day := model.Day(cp.Date)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (date_epoch, date, balance, transaction_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date_epoch) DO NOTHING
	`, day.Unix(), day.Format(model.DateFormat), cp.Balance.String(), cp.TransactionCount)
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	return nil
}

// LatestCheckpoint returns the most recent checkpoint, or
// common.ErrNotFound when none has been certified yet.
func (s *AccountStore) LatestCheckpoint(ctx context.Context) (*model.Checkpoint, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var epoch int64
	err := s.db.QueryRowContext(ctx, `
		SELECT date_epoch FROM checkpoints ORDER BY date_epoch DESC LIMIT 1
	`).Scan(&epoch)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest checkpoint: %w", err)
	}

	return s.ReadCheckpoint(ctx, timeFromEpoch(epoch))
}

// AvailableSavings returns the latest certified balance minus the summed
// amount of transactions carrying the exclusion tag. Used for savings
// accounts whose earmarked deposits should not count as available.
func (s *AccountStore) AvailableSavings(ctx context.Context, excludeTag string) (decimal.Decimal, error) {
	cp, err := s.LatestCheckpoint(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	excluded := decimal.Zero
	if excludeTag != "" {
		excluded, err = s.SumTaggedAmounts(ctx, excludeTag)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return cp.Balance.Sub(excluded), nil
}

func timeFromEpoch(epoch int64) time.Time {
	return time.Unix(epoch, 0).UTC()
}
