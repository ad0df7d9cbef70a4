package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yfirmy/accounting-graph/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCheckpoint  = errors.New("invalid checkpoint")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions. Writes are
// all-or-nothing, so one malformed record rejects the whole batch before
// any row is touched.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}

// validateCheckpoint validates a checkpoint.
func validateCheckpoint(cp *model.Checkpoint) error {
	if cp == nil {
		return fmt.Errorf("%w: checkpoint", ErrNilParameter)
	}
	if cp.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidCheckpoint)
	}
	if cp.TransactionCount < 0 {
		return fmt.Errorf("%w: negative transaction count", ErrInvalidCheckpoint)
	}
	return nil
}
