package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yfirmy/accounting-graph/internal/common"
	"github.com/yfirmy/accounting-graph/internal/model"
)

// Helper function to create a migrated test store.
func createTestStore(t *testing.T) *AccountStore {
	t.Helper()

	store, err := Open(t.TempDir(), "1")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: "t1", Date: day(2024, 3, 30), Label: "PRLV EDF", Amount: decimal.RequireFromString("-50.00")},
		{ID: "t2", Date: day(2024, 3, 15), Label: "VIR SALAIRE", Amount: decimal.RequireFromString("20.00")},
		{ID: "t3", Date: day(2024, 3, 15), Label: "CARTE BOULANGERIE", Amount: decimal.RequireFromString("-4.50")},
	}
}

func TestAccountStore_MergeTransactionsIsIdempotent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.MergeTransactions(ctx, testTransactions()); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	first, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}

	// Re-importing the same statement is a no-op per transaction id.
	if err := store.MergeTransactions(ctx, testTransactions()); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	second, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("failed to re-read ledger: %v", err)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("ledger sizes = %d, %d, want 3, 3", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].Amount.Equal(second[i].Amount) {
			t.Errorf("row %d changed across re-import: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAccountStore_FirstWriteWins(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	original := []model.Transaction{{ID: "t1", Date: day(2024, 3, 30), Amount: decimal.RequireFromString("-50.00")}}
	amended := []model.Transaction{{ID: "t1", Date: day(2024, 3, 30), Amount: decimal.RequireFromString("-99.00")}}

	if err := store.MergeTransactions(ctx, original); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := store.MergeTransactions(ctx, amended); err != nil {
		t.Fatalf("amended merge failed: %v", err)
	}

	all, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	if len(all) != 1 || !all[0].Amount.Equal(decimal.RequireFromString("-50.00")) {
		t.Errorf("stored amount = %s, want the first write to win", all[0].Amount)
	}
}

func TestAccountStore_MergeRejectsMalformedBatch(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	batch := []model.Transaction{
		{ID: "ok", Date: day(2024, 3, 1), Amount: decimal.NewFromInt(1)},
		{ID: "", Date: day(2024, 3, 2), Amount: decimal.NewFromInt(2)},
	}
	if err := store.MergeTransactions(ctx, batch); err == nil {
		t.Fatal("expected validation error for missing id")
	}

	// All-or-nothing: the valid row must not have been committed.
	all, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("ledger has %d rows after rejected batch, want 0", len(all))
	}
}

func TestAccountStore_AllTransactionsOrderedByDateDescending(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.MergeTransactions(ctx, testTransactions()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	all, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}

	wantIDs := []string{"t1", "t2", "t3"}
	for i, want := range wantIDs {
		if all[i].ID != want {
			t.Errorf("row %d = %s, want %s", i, all[i].ID, want)
		}
	}
}

func TestAccountStore_NewTransactionsDiff(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	txns := testTransactions()
	if err := store.MergeTransactions(ctx, txns[:2]); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	fresh, err := store.NewTransactions(ctx, txns)
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != "t3" {
		t.Errorf("fresh = %+v, want only t3", fresh)
	}
}

func TestAccountStore_CheckpointsAreAppendOnly(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	d := day(2024, 3, 31)
	first := &model.Checkpoint{Date: d, Balance: decimal.NewFromInt(1000), TransactionCount: 2}
	if err := store.WriteCheckpointIfAbsent(ctx, first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	// A second write for the same date must not overwrite the fact.
	second := &model.Checkpoint{Date: d, Balance: decimal.NewFromInt(900), TransactionCount: 5}
	if err := store.WriteCheckpointIfAbsent(ctx, second); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := store.ReadCheckpoint(ctx, d)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(1000)) || got.TransactionCount != 2 {
		t.Errorf("checkpoint = %+v, want the first certified fact", got)
	}
}

func TestAccountStore_ReadCheckpointNotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.ReadCheckpoint(context.Background(), day(2024, 1, 1))
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want common.ErrNotFound", err)
	}
}

func TestAccountStore_CountTransactionsOn(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.MergeTransactions(ctx, testTransactions()); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	count, err := store.CountTransactionsOn(ctx, day(2024, 3, 15).Unix())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestAccountStore_AvailableSavings(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "t1", Date: day(2024, 3, 10), Amount: decimal.NewFromInt(500), Tag: "exclude"},
		{ID: "t2", Date: day(2024, 3, 20), Amount: decimal.NewFromInt(100)},
	}
	if err := store.MergeTransactions(ctx, txns); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	cp := &model.Checkpoint{Date: day(2024, 3, 31), Balance: decimal.NewFromInt(2000), TransactionCount: 0}
	if err := store.WriteCheckpointIfAbsent(ctx, cp); err != nil {
		t.Fatalf("checkpoint write failed: %v", err)
	}

	available, err := store.AvailableSavings(ctx, "exclude")
	if err != nil {
		t.Fatalf("AvailableSavings failed: %v", err)
	}
	if !available.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("available = %s, want 1500", available)
	}
}
