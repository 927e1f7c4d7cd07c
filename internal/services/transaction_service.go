// Package services orchestrates domain operations across storage, the
// aggregation engine and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/storage"
)

// EventPublisher publishes transaction-changed events. Nil publishers are
// allowed; events are then skipped.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id string, action amqp.Action) error
}

// TransactionService owns the write path for transactions: validate, assign
// an ID, persist, then notify the rollup worker.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

// Create validates and stores a transaction. A missing ID gets a fresh UUID.
// The changed event is published best-effort; a dead broker never fails the
// request since the transaction is already durable locally.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishEvent(ctx, t.ID, amqp.ActionCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", t.ID, "error", err)
	}

	return t, nil
}

// Delete removes a transaction and notifies the worker.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if err := s.publishEvent(ctx, id, amqp.ActionDeleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "error", err)
	}

	return nil
}

// List returns the full transaction snapshot.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx)
}

func (s *TransactionService) publishEvent(ctx context.Context, id string, action amqp.Action) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping transaction event")
		return nil
	}
	return s.publisher.PublishTransactionEvent(ctx, id, action)
}

// Close closes the underlying storage.
func (s *TransactionService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close transaction service storage: %w", err)
		}
	}
	return nil
}
