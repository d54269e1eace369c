package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"talaan/internal/core"
	"talaan/internal/storage"
)

var (
	// ErrWeekNotStarted rejects reports filed for weeks that have not begun.
	ErrWeekNotStarted = errors.New("week has not started yet")
	// ErrDuplicateWeek rejects a second report for the same week.
	ErrDuplicateWeek = errors.New("week already has a report")
)

// ReportService handles weekly accomplishment reports, their month/week
// grouping, and incident reports.
type ReportService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewReportService(storage *storage.SQLiteRepository) *ReportService {
	return &ReportService{
		storage: storage,
		now:     time.Now,
	}
}

// CreateReport files an accomplishment report for the week containing the
// record's date. Only one report per week, and only for weeks that have
// started.
func (s *ReportService) CreateReport(ctx context.Context, rec core.ReportRecord) (core.ReportRecord, error) {
	if err := rec.CreatedFor.Validate(); err != nil {
		return core.ReportRecord{}, err
	}
	year := rec.CreatedFor.Year()
	if year < 2000 || year > 2200 {
		return core.ReportRecord{}, core.ErrInvalidYear
	}
	if rec.CompositionCount < 0 {
		return core.ReportRecord{}, fmt.Errorf("negative composition count")
	}

	week := core.WeekNumber(rec.CreatedFor.Time)
	if !core.WeekActionable(year, week, s.now()) {
		return core.ReportRecord{}, fmt.Errorf("week %d of %d: %w", week, year, ErrWeekNotStarted)
	}

	exists, err := s.storage.WeekReportExists(ctx, year, week)
	if err != nil {
		return core.ReportRecord{}, fmt.Errorf("check existing report: %w", err)
	}
	if exists {
		return core.ReportRecord{}, fmt.Errorf("week %d of %d: %w", week, year, ErrDuplicateWeek)
	}

	saved, err := s.storage.CreateWeeklyReport(ctx, rec, week)
	if err != nil {
		return core.ReportRecord{}, fmt.Errorf("create report: %w", err)
	}
	return saved, nil
}

// ListReports returns the year's reports in week order. Rows whose stored
// date no longer parses are skipped with a warning rather than failing the
// whole listing.
func (s *ReportService) ListReports(ctx context.Context, year int) ([]core.ReportRecord, error) {
	rows, err := s.storage.ListWeeklyReports(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return s.parseRows(ctx, rows), nil
}

// BucketReports groups the year's reports into month buckets with missing
// week detection.
func (s *ReportService) BucketReports(ctx context.Context, year int) ([]core.MonthBucket, error) {
	records, err := s.ListReports(ctx, year)
	if err != nil {
		return nil, err
	}
	return core.BucketByMonth(records, year, s.now()), nil
}

func (s *ReportService) parseRows(ctx context.Context, rows []storage.ReportRow) []core.ReportRecord {
	out := make([]core.ReportRecord, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.CreatedFor)
		if err != nil {
			slog.WarnContext(ctx, "Skipping report with unparseable date",
				"id", row.ID, "created_for", row.CreatedFor, "error", err)
			continue
		}
		out = append(out, core.ReportRecord{
			ID:               row.ID,
			CreatedFor:       d,
			CompositionCount: row.CompositionCount,
			HasSignedFile:    row.HasSignedFile,
		})
	}
	return out
}

// --- incident reports ---

func (s *ReportService) CreateIncident(ctx context.Context, inc core.IncidentReport) (core.IncidentReport, error) {
	if inc.Status == "" {
		inc.Status = core.IncidentOpen
	}
	if err := inc.Validate(); err != nil {
		return core.IncidentReport{}, err
	}
	saved, err := s.storage.CreateIncident(ctx, inc)
	if err != nil {
		return core.IncidentReport{}, fmt.Errorf("create incident: %w", err)
	}
	return saved, nil
}

func (s *ReportService) UpdateIncidentStatus(ctx context.Context, id int64, status core.IncidentStatus) error {
	switch status {
	case core.IncidentOpen, core.IncidentOngoing, core.IncidentResolved, core.IncidentEndorsed:
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
	}
	return s.storage.UpdateIncidentStatus(ctx, id, status)
}

func (s *ReportService) ListIncidents(ctx context.Context, year int) ([]core.IncidentReport, error) {
	return s.storage.ListIncidents(ctx, year)
}

// --- staff ---

func (s *ReportService) CreateStaff(ctx context.Context, st core.Staff) (core.Staff, error) {
	if err := st.Validate(); err != nil {
		return core.Staff{}, err
	}
	saved, err := s.storage.CreateStaff(ctx, st)
	if err != nil {
		return core.Staff{}, fmt.Errorf("create staff: %w", err)
	}
	return saved, nil
}

func (s *ReportService) UpdateStaff(ctx context.Context, st core.Staff) error {
	if err := st.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateStaff(ctx, st)
}

func (s *ReportService) DeleteStaff(ctx context.Context, id int64) error {
	return s.storage.DeleteStaff(ctx, id)
}

func (s *ReportService) ListStaff(ctx context.Context) ([]core.Staff, error) {
	return s.storage.ListStaff(ctx)
}
