package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"talaan/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- weekly reports ---

func (r *SQLiteRepository) CreateWeeklyReport(ctx context.Context, rec core.ReportRecord, week int) (core.ReportRecord, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO weekly_reports (created_for, year, week_number, composition_count, has_signed_file)
		VALUES (?, ?, ?, ?, ?)`,
		rec.CreatedFor.Format("2006-01-02"), rec.CreatedFor.Year(), week,
		rec.CompositionCount, boolToInt(rec.HasSignedFile))
	if err != nil {
		return core.ReportRecord{}, fmt.Errorf("insert weekly report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ReportRecord{}, fmt.Errorf("weekly report id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// ReportRow is a weekly report as stored, with the date still in its raw
// string form. Callers parse the date and decide what to do with rows that
// fail to parse.
type ReportRow struct {
	ID               int64
	CreatedFor       string
	Year             int
	WeekNumber       int
	CompositionCount int
	HasSignedFile    bool
}

func (r *SQLiteRepository) ListWeeklyReports(ctx context.Context, year int) ([]ReportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_for, year, week_number, composition_count, has_signed_file
		FROM weekly_reports WHERE year = ? ORDER BY week_number, created_for`, year)
	if err != nil {
		return nil, fmt.Errorf("list weekly reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		var signed int
		if err := rows.Scan(&row.ID, &row.CreatedFor, &row.Year, &row.WeekNumber, &row.CompositionCount, &signed); err != nil {
			return nil, fmt.Errorf("scan weekly report: %w", err)
		}
		row.HasSignedFile = signed != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) WeekReportExists(ctx context.Context, year, week int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM weekly_reports WHERE year = ? AND week_number = ?`, year, week).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check weekly report: %w", err)
	}
	return n > 0, nil
}

// --- incident reports ---

func (r *SQLiteRepository) CreateIncident(ctx context.Context, inc core.IncidentReport) (core.IncidentReport, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO incident_reports (title, details, reported_on, status)
		VALUES (?, ?, ?, ?)`,
		inc.Title, inc.Details, inc.ReportedOn.Format("2006-01-02"), string(inc.Status))
	if err != nil {
		return core.IncidentReport{}, fmt.Errorf("insert incident: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.IncidentReport{}, fmt.Errorf("incident id: %w", err)
	}
	inc.ID = id
	return inc, nil
}

func (r *SQLiteRepository) UpdateIncidentStatus(ctx context.Context, id int64, status core.IncidentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE incident_reports SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update incident status: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListIncidents(ctx context.Context, year int) ([]core.IncidentReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, details, reported_on, status
		FROM incident_reports
		WHERE reported_on >= ? AND reported_on < ?
		ORDER BY reported_on DESC, id DESC`,
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []core.IncidentReport
	for rows.Next() {
		var inc core.IncidentReport
		var reported, status string
		if err := rows.Scan(&inc.ID, &inc.Title, &inc.Details, &reported, &status); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		d, err := core.ParseDate(reported)
		if err != nil {
			return nil, fmt.Errorf("incident %d has bad date %q: %w", inc.ID, reported, err)
		}
		inc.ReportedOn = d
		inc.Status = core.IncidentStatus(status)
		out = append(out, inc)
	}
	return out, rows.Err()
}

// --- staff ---

func (r *SQLiteRepository) CreateStaff(ctx context.Context, s core.Staff) (core.Staff, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (name, position, team) VALUES (?, ?, ?)`,
		s.Name, s.Position, s.Team)
	if err != nil {
		return core.Staff{}, fmt.Errorf("insert staff: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Staff{}, fmt.Errorf("staff id: %w", err)
	}
	s.ID = id
	return s, nil
}

func (r *SQLiteRepository) UpdateStaff(ctx context.Context, s core.Staff) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE staff SET name = ?, position = ?, team = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, s.Name, s.Position, s.Team, s.ID)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteStaff(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListStaff(ctx context.Context) ([]core.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, position, team FROM staff ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var out []core.Staff
	for rows.Next() {
		var s core.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Position, &s.Team); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
