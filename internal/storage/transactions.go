package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// MergeTransactions inserts the given transactions into the ledger.
// Inserting an already-present id is a silent no-op: once a transaction
// id is stored, its recorded amount is immutable and re-imports never
// touch it. The whole batch commits in a single database transaction.
func (s *AccountStore) MergeTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, date, date_epoch, label, amount, tag)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		day := model.Day(txn.Date)
		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			day.Format(model.DateFormat),
			day.Unix(),
			txn.Label,
			txn.Amount.String(),
			txn.Tag,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// AllTransactions returns every transaction in the ledger, ordered by
// date descending, same-day rows in insertion order.
func (s *AccountStore) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date_epoch, label, amount, tag
		FROM transactions
		ORDER BY date_epoch DESC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanTransactions(rows)
}

// NewTransactions returns the subset of candidates whose ids are not yet
// stored. Used by dry-run mode to preview an import without writing.
func (s *AccountStore) NewTransactions(ctx context.Context, candidates []model.Transaction) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactions(candidates); err != nil {
		return nil, err
	}

	stmt, err := s.db.PrepareContext(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var fresh []model.Transaction
	for _, txn := range candidates {
		var exists bool
		if err := stmt.QueryRowContext(ctx, txn.ID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check transaction %s: %w", txn.ID, err)
		}
		if !exists {
			fresh = append(fresh, txn)
		}
	}

	return fresh, nil
}

// CountTransactionsOn returns the number of transactions stored for a day.
func (s *AccountStore) CountTransactionsOn(ctx context.Context, day int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(id) FROM transactions WHERE date_epoch = ?
	`, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// SumTaggedAmounts returns the summed amount of every transaction
// carrying the given tag.
func (s *AccountStore) SumTaggedAmounts(ctx context.Context, tag string) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT amount FROM transactions WHERE tag = ?
	`, tag)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query tagged transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sum := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("stored amount %q: %w", raw, err)
		}
		sum = sum.Add(amount)
	}

	return sum, rows.Err()
}

func (s *AccountStore) scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var epoch int64
		var label sql.NullString
		var rawAmount string
		var tag sql.NullString

		if err := rows.Scan(&txn.ID, &epoch, &label, &rawAmount, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		amount, err := decimal.NewFromString(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", rawAmount, err)
		}

		txn.AccountID = s.accountID
		txn.Date = model.Day(timeFromEpoch(epoch))
		txn.Label = label.String
		txn.Amount = amount
		txn.Tag = tag.String

		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
