package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 1 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("29/01/2024"); err == nil {
		t.Fatalf("expected error for wrong format")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty string")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{
		Description: "office supplies",
		Proposed:    Money{Cents: 30000},
		LineItemID:  1,
		Year:        2024,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseEntry{
		{Description: "", Proposed: Money{Cents: 1}, LineItemID: 1, Year: 2024},
		{Description: "a", Proposed: Money{Cents: 0}, LineItemID: 1, Year: 2024},
		{Description: "a", Proposed: Money{Cents: 1}, Actual: Money{Cents: -1}, LineItemID: 1, Year: 2024},
		{Description: "a", Proposed: Money{Cents: 1}, LineItemID: 0, Year: 2024},
		{Description: "a", Proposed: Money{Cents: 1}, LineItemID: 1, Year: 24},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIncomeEntryValidate(t *testing.T) {
	good := IncomeEntry{Description: "community tax share", Amount: Money{Cents: 500000}, Year: 2024}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []IncomeEntry{
		{Description: "", Amount: Money{Cents: 1}, Year: 2024},
		{Description: "a", Amount: Money{Cents: 0}, Year: 2024},
		{Description: "a", Amount: Money{Cents: 1}, Year: 1990},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetLineItemValidate(t *testing.T) {
	good := BudgetLineItem{Name: "Infrastructure", Year: 2024, ProposedBudget: Money{Cents: 1000000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (BudgetLineItem{Name: " ", Year: 2024}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := (BudgetLineItem{Name: "x", Year: 2024, ProposedBudget: Money{Cents: -1}}).Validate(); err == nil {
		t.Fatalf("expected error for negative pool")
	}
}

func TestIncidentReportValidate(t *testing.T) {
	good := IncidentReport{Title: "flooding at purok 3", ReportedOn: NewDate(2024, 7, 1), Status: IncidentOpen}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []IncidentReport{
		{Title: "", ReportedOn: NewDate(2024, 7, 1), Status: IncidentOpen},
		{Title: "a", Status: IncidentOpen}, // zero date
		{Title: "a", ReportedOn: NewDate(2024, 7, 1), Status: "closed"},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestStaffValidate(t *testing.T) {
	if err := (Staff{Name: "Juan", Position: "Kagawad"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Staff{Name: "", Position: "Kagawad"}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Staff{Name: "Juan", Position: ""}).Validate(); err == nil {
		t.Fatalf("expected error for empty position")
	}
}
