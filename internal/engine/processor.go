// Package engine drives the per-account import pipeline: idempotent
// merge, full ledger re-read, balance reconstruction, checkpoint
// reconciliation, certification, and derived analytics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/analytics"
	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/config"
	"github.com/yfirmy/accounting-graph/internal/ledger"
	"github.com/yfirmy/accounting-graph/internal/model"
	"github.com/yfirmy/accounting-graph/internal/report"
	"github.com/yfirmy/accounting-graph/internal/storage"
)

// Options control how an import run behaves.
type Options struct {
	// DryRun lists new transactions without writing or reconciling.
	DryRun bool
	// Debug dumps every known transaction while processing.
	Debug bool
}

// Processor runs the import pipeline for a batch of statements,
// sequentially, one account at a time.
type Processor struct {
	accounts *config.Accounts
	renderer *report.Renderer
	// openStore is swappable in tests.
	openStore func(dir, accountID string) (*storage.AccountStore, error)
	storeDir  string
	opts      Options
}

// NewProcessor creates a processor persisting under storeDir.
func NewProcessor(storeDir string, accounts *config.Accounts, renderer *report.Renderer, opts Options) *Processor {
	return &Processor{
		accounts:  accounts,
		renderer:  renderer,
		openStore: storage.Open,
		storeDir:  storeDir,
		opts:      opts,
	}
}

// Run processes every statement. A reconciliation failure in one
// account is reported and skips that account's analytics; the run
// continues with the remaining accounts and returns an aggregate error
// naming the failed ones.
func (p *Processor) Run(ctx context.Context, statements []*model.AccountStatement) error {
	var failed []string
	var savingsIDs []string
	savings := make(map[string]decimal.Decimal)

	for _, stmt := range statements {
		if err := p.processAccount(ctx, stmt, savings, &savingsIDs); err != nil {
			common.LogError(err, "Failed to process account", common.Fields{
				"account": stmt.AccountID,
				"name":    p.accounts.Name(stmt.AccountID),
			})
			failed = append(failed, stmt.AccountID)
		}
	}

	if !p.opts.DryRun {
		p.renderer.SavingsSummary(savingsIDs, savings)
	}

	if len(failed) > 0 {
		return fmt.Errorf("reconciliation failed for account(s) %s", strings.Join(failed, ", "))
	}
	return nil
}

// processAccount scopes one account's store to one statement's
// processing. The store is released on every exit path.
func (p *Processor) processAccount(ctx context.Context, stmt *model.AccountStatement, savings map[string]decimal.Decimal, savingsIDs *[]string) (err error) {
	p.renderer.AccountHeader(stmt.AccountID, p.accounts.Name(stmt.AccountID))
	p.renderer.AnchorBalance(stmt)

	store, err := p.openStore(p.storeDir, stmt.AccountID)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close account store: %w", closeErr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	if p.opts.DryRun {
		return p.dryRun(ctx, store, stmt)
	}

	if err := p.importAndAnalyse(ctx, store, stmt); err != nil {
		return err
	}

	if p.accounts.IsSavings(stmt.AccountID) {
		available, err := store.AvailableSavings(ctx, p.accounts.SavingsExclusionTag())
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to compute available savings: %w", err)
		}
		savings[stmt.AccountID] = available
		*savingsIDs = append(*savingsIDs, stmt.AccountID)
	}

	return nil
}

func (p *Processor) dryRun(ctx context.Context, store *storage.AccountStore, stmt *model.AccountStatement) error {
	candidates := stmt.All()
	if len(candidates) == 0 {
		p.renderer.DryRunNew(stmt.AccountID, nil)
		return nil
	}
	fresh, err := store.NewTransactions(ctx, candidates)
	if err != nil {
		return fmt.Errorf("failed to diff transactions: %w", err)
	}
	p.renderer.DryRunNew(stmt.AccountID, fresh)
	return nil
}

func (p *Processor) importAndAnalyse(ctx context.Context, store *storage.AccountStore, stmt *model.AccountStatement) error {
	if txns := stmt.All(); len(txns) > 0 {
		if err := store.MergeTransactions(ctx, txns); err != nil {
			return fmt.Errorf("failed to merge transactions: %w", err)
		}
	} else {
		slog.Warn("No transaction in this statement", "account", stmt.AccountID)
	}

	// Replay runs over the complete known ledger, not just this import.
	whole, err := p.readWholeLedger(ctx, store, stmt)
	if err != nil {
		return err
	}

	if len(whole.Operations) == 0 {
		slog.Info("No history to reconstruct", "account", stmt.AccountID)
		return nil
	}

	if p.opts.Debug {
		p.renderer.Transactions(whole.All())
	}

	hist, err := ledger.Reconstruct(whole)
	if err != nil {
		return fmt.Errorf("failed to reconstruct balance history: %w", err)
	}

	p.renderer.HealthcheckStart(stmt.AccountID, p.accounts.Name(stmt.AccountID))
	notes, err := ledger.Reconcile(ctx, store, whole, hist)
	p.renderer.BackfillNotes(notes)
	if err != nil {
		var recErr *ledger.ReconciliationError
		if errors.As(err, &recErr) {
			p.renderer.ReconciliationFailure(recErr)
		}
		return err
	}
	p.renderer.HealthcheckOK()

	if err := ledger.Certify(ctx, store, whole); err != nil {
		return err
	}

	p.renderer.BalanceSummary(hist)

	grid := analytics.CompareMonths(hist, whole.AnchorDate)
	p.renderer.ComparisonSummary(grid)

	if p.accounts.IsSavings(stmt.AccountID) {
		p.renderer.SavingsDerivative(analytics.SavingsDerivative(hist, p.accounts.PayDay()))
	}

	return nil
}

// readWholeLedger rebuilds the working statement from everything the
// store knows, carrying over the fresh import's anchor.
func (p *Processor) readWholeLedger(ctx context.Context, store *storage.AccountStore, stmt *model.AccountStatement) (*model.AccountStatement, error) {
	all, err := store.AllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	whole := model.NewAccountStatement(stmt.AccountID)
	whole.AnchorDate = model.Day(stmt.AnchorDate)
	whole.AnchorBalance = stmt.AnchorBalance
	for _, txn := range all {
		whole.Add(txn)
	}
	return whole, nil
}
