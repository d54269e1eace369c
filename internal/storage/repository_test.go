package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"talaan/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedBudget(t *testing.T, repo *SQLiteRepository, year int, total, itemPool int64) core.BudgetLineItem {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.SetTotalBudget(ctx, year, core.Money{Cents: total}); err != nil {
		t.Fatalf("SetTotalBudget() error = %v", err)
	}
	item, err := repo.CreateLineItem(ctx, core.BudgetLineItem{
		Name: "Peace and Order", Year: year, ProposedBudget: core.Money{Cents: itemPool},
	})
	if err != nil {
		t.Fatalf("CreateLineItem() error = %v", err)
	}
	return item
}

func TestWeeklyReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := core.ReportRecord{CreatedFor: core.NewDate(2024, 1, 10), CompositionCount: 4, HasSignedFile: true}
	saved, err := repo.CreateWeeklyReport(ctx, rec, 2)
	if err != nil {
		t.Fatalf("CreateWeeklyReport() error = %v", err)
	}
	if saved.ID == 0 {
		t.Error("expected non-zero id")
	}

	exists, err := repo.WeekReportExists(ctx, 2024, 2)
	if err != nil {
		t.Fatalf("WeekReportExists() error = %v", err)
	}
	if !exists {
		t.Error("expected week 2 report to exist")
	}
	exists, err = repo.WeekReportExists(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("WeekReportExists() error = %v", err)
	}
	if exists {
		t.Error("did not expect week 3 report")
	}

	rows, err := repo.ListWeeklyReports(ctx, 2024)
	if err != nil {
		t.Fatalf("ListWeeklyReports() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].CreatedFor != "2024-01-10" || rows[0].WeekNumber != 2 || !rows[0].HasSignedFile {
		t.Errorf("unexpected row: %+v", rows[0])
	}

	// Duplicate week for the same year must be rejected by the schema.
	if _, err := repo.CreateWeeklyReport(ctx, rec, 2); err == nil {
		t.Error("expected unique constraint error for duplicate week")
	}
}

func TestIncidentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inc, err := repo.CreateIncident(ctx, core.IncidentReport{
		Title: "Flooding on Mabini St", Details: "knee-deep",
		ReportedOn: core.NewDate(2024, 7, 3), Status: core.IncidentOpen,
	})
	if err != nil {
		t.Fatalf("CreateIncident() error = %v", err)
	}

	if err := repo.UpdateIncidentStatus(ctx, inc.ID, core.IncidentResolved); err != nil {
		t.Fatalf("UpdateIncidentStatus() error = %v", err)
	}
	if err := repo.UpdateIncidentStatus(ctx, 9999, core.IncidentResolved); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateIncidentStatus(missing) error = %v, want ErrNotFound", err)
	}

	list, err := repo.ListIncidents(ctx, 2024)
	if err != nil {
		t.Fatalf("ListIncidents() error = %v", err)
	}
	if len(list) != 1 || list[0].Status != core.IncidentResolved {
		t.Errorf("unexpected incidents: %+v", list)
	}

	other, err := repo.ListIncidents(ctx, 2023)
	if err != nil {
		t.Fatalf("ListIncidents(2023) error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no 2023 incidents, got %d", len(other))
	}
}

func TestStaffCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.CreateStaff(ctx, core.Staff{Name: "Maria Santos", Position: "Secretary", Team: "Admin"})
	if err != nil {
		t.Fatalf("CreateStaff() error = %v", err)
	}

	s.Position = "Treasurer"
	if err := repo.UpdateStaff(ctx, s); err != nil {
		t.Fatalf("UpdateStaff() error = %v", err)
	}

	list, err := repo.ListStaff(ctx)
	if err != nil {
		t.Fatalf("ListStaff() error = %v", err)
	}
	if len(list) != 1 || list[0].Position != "Treasurer" {
		t.Errorf("unexpected staff: %+v", list)
	}

	if err := repo.DeleteStaff(ctx, s.ID); err != nil {
		t.Fatalf("DeleteStaff() error = %v", err)
	}
	if err := repo.DeleteStaff(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteStaff(missing) error = %v, want ErrNotFound", err)
	}
}

func TestYearlyBudgetLazyInit(t *testing.T) {
	repo := newTestRepo(t)

	b, err := repo.GetYearlyBudget(context.Background(), 2024)
	if err != nil {
		t.Fatalf("GetYearlyBudget() error = %v", err)
	}
	if b.Year != 2024 || b.TotalBudget.Cents != 0 || b.RemainingBalance.Cents != 0 {
		t.Errorf("unexpected fresh budget: %+v", b)
	}
}

func TestSetTotalBudgetRebasesRemaining(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	item := seedBudget(t, repo, 2024, 1_000_000, 200_000)

	if _, err := repo.CreateExpense(ctx, core.ExpenseEntry{
		Description: "Streetlight repair", Proposed: core.Money{Cents: 30_000},
		LineItemID: item.ID, Year: 2024,
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	b, err := repo.SetTotalBudget(ctx, 2024, core.Money{Cents: 1_200_000})
	if err != nil {
		t.Fatalf("SetTotalBudget() error = %v", err)
	}
	if b.TotalBudget.Cents != 1_200_000 {
		t.Errorf("TotalBudget = %d, want 1200000", b.TotalBudget.Cents)
	}
	if b.RemainingBalance.Cents != 1_170_000 {
		t.Errorf("RemainingBalance = %d, want 1170000", b.RemainingBalance.Cents)
	}
	if b.TotalExpense.Cents != 30_000 {
		t.Errorf("TotalExpense = %d, want 30000", b.TotalExpense.Cents)
	}
}

func TestAddIncomeBumpsTotal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inc, err := repo.AddIncome(ctx, core.IncomeEntry{
		Description: "Barangay clearance fees", Source: "clearances",
		Amount: core.Money{Cents: 15_000}, Year: 2024,
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	if inc.ID == 0 {
		t.Error("expected non-zero income id")
	}

	b, err := repo.GetYearlyBudget(ctx, 2024)
	if err != nil {
		t.Fatalf("GetYearlyBudget() error = %v", err)
	}
	if b.TotalIncome.Cents != 15_000 {
		t.Errorf("TotalIncome = %d, want 15000", b.TotalIncome.Cents)
	}

	list, err := repo.ListIncomes(ctx, 2024)
	if err != nil {
		t.Fatalf("ListIncomes() error = %v", err)
	}
	if len(list) != 1 || list[0].Source != "clearances" {
		t.Errorf("unexpected incomes: %+v", list)
	}
}
