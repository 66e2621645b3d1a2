package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"catatan/internal/amqp"
	"catatan/internal/core"
	"catatan/internal/storage"
)

// ExpenseService orchestrates local-first writes: SQLite first, then an async
// sync message so the worker mirrors the row to the sheet.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense saves an expense locally and publishes a sync message.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	id, err := s.storage.Insert(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	// Version 1 for a new expense. A publish failure never fails the write;
	// the worker's periodic pending scan picks the row up later.
	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return strconv.FormatInt(id, 10), nil
}

func (s *ExpenseService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishExpenseSync(ctx, id, version)
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
