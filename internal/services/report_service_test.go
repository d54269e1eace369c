package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"talaan/internal/core"
	"talaan/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestReportService(t *testing.T, now time.Time) *ReportService {
	t.Helper()
	svc := NewReportService(newTestStorage(t))
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateReport(t *testing.T) {
	now := time.Date(2024, 1, 29, 12, 0, 0, 0, time.UTC)
	svc := newTestReportService(t, now)
	ctx := context.Background()

	rec, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor:       core.NewDate(2024, 1, 10),
		CompositionCount: 3,
	})
	if err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected non-zero id")
	}

	// Same week again is rejected.
	if _, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor: core.NewDate(2024, 1, 12),
	}); err == nil {
		t.Error("expected duplicate week error")
	}

	// A week that has not started yet is rejected.
	if _, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor: core.NewDate(2024, 3, 15),
	}); err == nil {
		t.Error("expected future week error")
	}

	// The current, unfinished week is still actionable.
	if _, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor: core.NewDate(2024, 1, 30),
	}); err != nil {
		t.Errorf("CreateReport(current week) error = %v", err)
	}

	if _, err := svc.CreateReport(ctx, core.ReportRecord{}); err == nil {
		t.Error("expected zero date error")
	}
	if _, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor: core.NewDate(2024, 1, 3), CompositionCount: -1,
	}); err == nil {
		t.Error("expected negative composition count error")
	}
}

func TestBucketReports(t *testing.T) {
	now := time.Date(2024, 1, 29, 12, 0, 0, 0, time.UTC)
	svc := newTestReportService(t, now)
	ctx := context.Background()

	if _, err := svc.CreateReport(ctx, core.ReportRecord{
		CreatedFor: core.NewDate(2024, 1, 10), CompositionCount: 2,
	}); err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	buckets, err := svc.BucketReports(ctx, 2024)
	if err != nil {
		t.Fatalf("BucketReports() error = %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}

	jan := buckets[0]
	if jan.Month != time.January {
		t.Errorf("Month = %v, want January", jan.Month)
	}
	if len(jan.Weeks) != 1 || jan.Weeks[0].WeekNumber != 2 {
		t.Errorf("unexpected weeks: %+v", jan.Weeks)
	}
	wantMissing := []int{1, 3, 4, 5}
	if len(jan.MissingWeeks) != len(wantMissing) {
		t.Fatalf("MissingWeeks = %v, want %v", jan.MissingWeeks, wantMissing)
	}
	for i, w := range wantMissing {
		if jan.MissingWeeks[i] != w {
			t.Errorf("MissingWeeks[%d] = %d, want %d", i, jan.MissingWeeks[i], w)
		}
	}
	if jan.MissedWeeksPassed != 3 {
		t.Errorf("MissedWeeksPassed = %d, want 3", jan.MissedWeeksPassed)
	}
}

func TestListReportsEmptyYear(t *testing.T) {
	svc := newTestReportService(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	records, err := svc.ListReports(context.Background(), 2023)
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestIncidentDefaultsAndStatusGuard(t *testing.T) {
	svc := newTestReportService(t, time.Now())
	ctx := context.Background()

	inc, err := svc.CreateIncident(ctx, core.IncidentReport{
		Title:      "Stray dog complaints",
		ReportedOn: core.NewDate(2024, 5, 2),
	})
	if err != nil {
		t.Fatalf("CreateIncident() error = %v", err)
	}
	if inc.Status != core.IncidentOpen {
		t.Errorf("Status = %q, want open", inc.Status)
	}

	if err := svc.UpdateIncidentStatus(ctx, inc.ID, "bogus"); err == nil {
		t.Error("expected invalid status error")
	}
	if err := svc.UpdateIncidentStatus(ctx, inc.ID, core.IncidentEndorsed); err != nil {
		t.Errorf("UpdateIncidentStatus() error = %v", err)
	}
}

func TestStaffValidationThroughService(t *testing.T) {
	svc := newTestReportService(t, time.Now())
	ctx := context.Background()

	if _, err := svc.CreateStaff(ctx, core.Staff{Name: "  ", Position: "Clerk"}); err == nil {
		t.Error("expected empty name error")
	}

	st, err := svc.CreateStaff(ctx, core.Staff{Name: "Jose Ramos", Position: "Kagawad"})
	if err != nil {
		t.Fatalf("CreateStaff() error = %v", err)
	}

	list, err := svc.ListStaff(ctx)
	if err != nil {
		t.Fatalf("ListStaff() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != st.ID {
		t.Errorf("unexpected staff list: %+v", list)
	}
}
