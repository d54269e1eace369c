package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"talaan/internal/amqp"
	"talaan/internal/core"
	"talaan/internal/storage"
)

// LedgerService orchestrates treasurer ledger operations across SQLite and
// AMQP. Mutations commit locally first; the mirror event is best effort and
// the sweep in the worker picks up anything that fails to publish.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}

	saved, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("create expense: %w", err)
	}

	s.publishEvent(ctx, saved.ID, amqp.OpCreate, saved.Version)
	return saved, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, id int64, description string, proposed, actual core.Money) (core.ExpenseEntry, error) {
	// Line item and year come from the stored row; validate only the fields
	// the caller controls.
	if len(strings.TrimSpace(description)) == 0 {
		return core.ExpenseEntry{}, core.ErrEmptyDescription
	}
	if err := proposed.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	if actual.Cents < 0 {
		return core.ExpenseEntry{}, core.ErrInvalidAmount
	}

	saved, err := s.storage.UpdateExpense(ctx, id, description, proposed, actual)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("update expense: %w", err)
	}

	s.publishEvent(ctx, saved.ID, amqp.OpUpdate, saved.Version)
	return saved, nil
}

func (s *LedgerService) ArchiveExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	saved, err := s.storage.ArchiveExpense(ctx, id)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("archive expense: %w", err)
	}
	s.publishEvent(ctx, saved.ID, amqp.OpArchive, saved.Version)
	return saved, nil
}

func (s *LedgerService) RestoreExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	saved, err := s.storage.RestoreExpense(ctx, id)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("restore expense: %w", err)
	}
	s.publishEvent(ctx, saved.ID, amqp.OpRestore, saved.Version)
	return saved, nil
}

// DeleteExpense permanently removes an archived entry. No mirror event: the
// ledger keeps the archive trail instead.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *LedgerService) GetExpense(ctx context.Context, id int64) (core.ExpenseEntry, error) {
	return s.storage.GetExpense(ctx, id)
}

func (s *LedgerService) ListExpenses(ctx context.Context, year int, includeArchived bool) ([]core.ExpenseEntry, error) {
	return s.storage.ListExpenses(ctx, year, includeArchived)
}

func (s *LedgerService) CreateLineItem(ctx context.Context, item core.BudgetLineItem) (core.BudgetLineItem, error) {
	if err := item.Validate(); err != nil {
		return core.BudgetLineItem{}, err
	}
	saved, err := s.storage.CreateLineItem(ctx, item)
	if err != nil {
		return core.BudgetLineItem{}, fmt.Errorf("create line item: %w", err)
	}
	return saved, nil
}

func (s *LedgerService) ListLineItems(ctx context.Context, year int) ([]core.BudgetLineItem, error) {
	return s.storage.ListLineItems(ctx, year)
}

func (s *LedgerService) GetYearlyBudget(ctx context.Context, year int) (core.YearlyBudget, error) {
	return s.storage.GetYearlyBudget(ctx, year)
}

func (s *LedgerService) SetTotalBudget(ctx context.Context, year int, total core.Money) (core.YearlyBudget, error) {
	if total.Cents < 0 {
		return core.YearlyBudget{}, core.ErrInvalidAmount
	}
	return s.storage.SetTotalBudget(ctx, year, total)
}

func (s *LedgerService) AddIncome(ctx context.Context, inc core.IncomeEntry) (core.IncomeEntry, error) {
	if err := inc.Validate(); err != nil {
		return core.IncomeEntry{}, err
	}
	saved, err := s.storage.AddIncome(ctx, inc)
	if err != nil {
		return core.IncomeEntry{}, fmt.Errorf("add income: %w", err)
	}
	return saved, nil
}

func (s *LedgerService) ListIncomes(ctx context.Context, year int) ([]core.IncomeEntry, error) {
	return s.storage.ListIncomes(ctx, year)
}

func (s *LedgerService) publishEvent(ctx context.Context, id int64, op string, version int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping ledger event")
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, id, op, version); err != nil {
		// Local commit already happened; the worker's sweep catches up.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"id", id, "op", op, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
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
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
