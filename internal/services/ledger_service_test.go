package services

import (
	"context"
	"errors"
	"testing"

	"talaan/internal/core"
)

func newTestLedgerService(t *testing.T) *LedgerService {
	t.Helper()
	// nil AMQP client: events are skipped, mutations still commit locally.
	svc := NewLedgerService(newTestStorage(t), nil)
	return svc
}

func seedLedger(t *testing.T, svc *LedgerService) core.BudgetLineItem {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.SetTotalBudget(ctx, 2024, core.Money{Cents: 1_000_000}); err != nil {
		t.Fatalf("SetTotalBudget() error = %v", err)
	}
	item, err := svc.CreateLineItem(ctx, core.BudgetLineItem{
		Name: "Health Services", Year: 2024, ProposedBudget: core.Money{Cents: 200_000},
	})
	if err != nil {
		t.Fatalf("CreateLineItem() error = %v", err)
	}
	return item
}

func TestLedgerServiceExpenseLifecycle(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()
	item := seedLedger(t, svc)

	e, err := svc.CreateExpense(ctx, core.ExpenseEntry{
		Description: "Vitamins for feeding program",
		Proposed:    core.Money{Cents: 30_000},
		LineItemID:  item.ID, Year: 2024,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if e.Version != 1 {
		t.Errorf("Version = %d, want 1", e.Version)
	}

	updated, err := svc.UpdateExpense(ctx, e.ID, e.Description,
		core.Money{Cents: 30_000}, core.Money{Cents: 28_000})
	if err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Version = %d, want 2", updated.Version)
	}
	if updated.Returned.Cents != 2_000 {
		t.Errorf("Returned = %d, want 2000", updated.Returned.Cents)
	}

	archived, err := svc.ArchiveExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("ArchiveExpense() error = %v", err)
	}
	if !archived.Archived {
		t.Error("expected archived entry")
	}

	restored, err := svc.RestoreExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("RestoreExpense() error = %v", err)
	}
	if restored.Archived {
		t.Error("expected active entry")
	}

	if _, err := svc.ArchiveExpense(ctx, e.ID); err != nil {
		t.Fatalf("ArchiveExpense() error = %v", err)
	}
	if err := svc.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	budget, err := svc.GetYearlyBudget(ctx, 2024)
	if err != nil {
		t.Fatalf("GetYearlyBudget() error = %v", err)
	}
	if budget.RemainingBalance.Cents != 1_000_000 || budget.TotalExpense.Cents != 0 {
		t.Errorf("pools not settled after lifecycle: %+v", budget)
	}
}

func TestLedgerServiceValidation(t *testing.T) {
	svc := newTestLedgerService(t)
	ctx := context.Background()
	item := seedLedger(t, svc)

	tests := []struct {
		name    string
		entry   core.ExpenseEntry
		wantErr error
	}{
		{
			name:    "empty description",
			entry:   core.ExpenseEntry{Proposed: core.Money{Cents: 100}, LineItemID: item.ID, Year: 2024},
			wantErr: core.ErrEmptyDescription,
		},
		{
			name:    "zero proposed",
			entry:   core.ExpenseEntry{Description: "x", LineItemID: item.ID, Year: 2024},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "negative actual",
			entry:   core.ExpenseEntry{Description: "x", Proposed: core.Money{Cents: 100}, Actual: core.Money{Cents: -1}, LineItemID: item.ID, Year: 2024},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "missing line item",
			entry:   core.ExpenseEntry{Description: "x", Proposed: core.Money{Cents: 100}, Year: 2024},
			wantErr: core.ErrMissingLineItem,
		},
		{
			name:    "bad year",
			entry:   core.ExpenseEntry{Description: "x", Proposed: core.Money{Cents: 100}, LineItemID: item.ID, Year: 1990},
			wantErr: core.ErrInvalidYear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, tt.entry)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.SetTotalBudget(ctx, 2024, core.Money{Cents: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("SetTotalBudget(negative) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.AddIncome(ctx, core.IncomeEntry{Description: "fees", Year: 2024}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("AddIncome(zero) error = %v, want ErrInvalidAmount", err)
	}
}
