package worker

import (
	"context"
	"errors"
	"testing"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/storage"
)

type fakeStore struct {
	txs     []core.Transaction
	listErr error
	saved   [][]storage.MonthlyRollup
	saveErr error
}

func (s *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.txs, s.listErr
}

func (s *fakeStore) ReplaceRollups(ctx context.Context, rollups []storage.MonthlyRollup) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, rollups)
	return nil
}

func TestRollupWorker_Refresh(t *testing.T) {
	store := &fakeStore{txs: []core.Transaction{
		{
			ID: "1", Description: "Salary", Category: "Income",
			Date: core.NewDate(2025, 1, 10), Amount: core.Money{Cents: 100000}, Type: core.Income,
		},
		{
			ID: "2", Description: "Rent", Category: "Housing",
			Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 60000}, Type: core.Expense,
		},
	}}
	w := NewRollupWorker(store)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 rollup write, got %d", len(store.saved))
	}
	rollups := store.saved[0]
	if len(rollups) != 12 {
		t.Fatalf("expected 12 month slots, got %d", len(rollups))
	}
	if rollups[0].Month != 1 || rollups[0].IncomeCents != 100000 {
		t.Errorf("January rollup mismatch: %+v", rollups[0])
	}
	if rollups[2].Month != 3 || rollups[2].ExpenseCents != 60000 || rollups[2].BalanceCents != -60000 {
		t.Errorf("March rollup mismatch: %+v", rollups[2])
	}
	if rollups[5].TransactionCount != 0 {
		t.Errorf("empty month should stay zero: %+v", rollups[5])
	}
}

func TestRollupWorker_HandleTransactionEvent(t *testing.T) {
	store := &fakeStore{}
	w := NewRollupWorker(store)

	msg := amqp.NewTransactionEventMessage("tx-1", amqp.ActionCreated)
	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleTransactionEvent() error = %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatal("event should trigger a rollup refresh")
	}
}

func TestRollupWorker_RefreshErrors(t *testing.T) {
	listErr := errors.New("db gone")
	w := NewRollupWorker(&fakeStore{listErr: listErr})
	if err := w.Refresh(context.Background()); !errors.Is(err, listErr) {
		t.Fatalf("Refresh() error = %v, want wrapped %v", err, listErr)
	}

	saveErr := errors.New("disk full")
	w = NewRollupWorker(&fakeStore{saveErr: saveErr})
	if err := w.Refresh(context.Background()); !errors.Is(err, saveErr) {
		t.Fatalf("Refresh() error = %v, want wrapped %v", err, saveErr)
	}
}
