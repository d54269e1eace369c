package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	IncidentOpen     IncidentStatus = "open"
	IncidentOngoing  IncidentStatus = "ongoing"
	IncidentResolved IncidentStatus = "resolved"
	IncidentEndorsed IncidentStatus = "endorsed"
)

type (
	IncidentStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ReportRecord is one submitted weekly accomplishment report. Records are
	// owned by storage and read-only once fetched; the bucketer never mutates
	// them.
	ReportRecord struct {
		ID               int64
		CreatedFor       Date
		CompositionCount int
		HasSignedFile    bool
	}

	// ExpenseEntry is a ledger entry drawn against a budget line item.
	// Proposed is the estimated cost at submission; Actual stays zero until
	// the real cost is confirmed, after which it is authoritative for the
	// drawn amount. Returned records |Proposed - Actual| for audit only.
	ExpenseEntry struct {
		ID          int64
		Description string
		Proposed    Money
		Actual      Money
		Returned    Money
		LineItemID  int64
		Year        int
		Archived    bool
		Version     int64
	}

	IncomeEntry struct {
		ID          int64
		Description string
		Source      string
		Amount      Money
		Year        int
	}

	// BudgetLineItem is a named budget category ("particular") with its own
	// accumulating pool. Expenses draw the pool down; archiving an expense
	// returns the drawn amount.
	BudgetLineItem struct {
		ID             int64
		Name           string
		Year           int
		ProposedBudget Money
	}

	// YearlyBudget is the per-fiscal-year aggregate. RemainingBalance and
	// TotalExpense always satisfy RemainingBalance + TotalExpense == TotalBudget.
	YearlyBudget struct {
		Year             int
		TotalBudget      Money
		RemainingBalance Money
		TotalExpense     Money
		TotalIncome      Money
	}

	Staff struct {
		ID       int64
		Name     string
		Position string
		Team     string
	}

	IncidentReport struct {
		ID         int64
		Title      string
		Details    string
		ReportedOn Date
		Status     IncidentStatus
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyName           = errors.New("empty name")
	ErrMissingLineItem     = errors.New("missing budget line item")
	ErrInsufficientBalance = errors.New("insufficient line item balance")
	ErrEntryArchived       = errors.New("entry is archived")
	ErrEntryNotArchived    = errors.New("entry is not archived")
	ErrInvalidStatus       = errors.New("invalid incident status")
	ErrZeroDate            = errors.New("date cannot be zero")
	ErrEmptyTitle          = errors.New("empty title")
	ErrEmptyPosition       = errors.New("empty position")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validYear(year int) bool {
	return year >= 2000 && year <= 2200
}

func (e ExpenseEntry) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := e.Proposed.Validate(); err != nil {
		return err
	}
	if e.Actual.Cents < 0 {
		return ErrInvalidAmount
	}
	if e.LineItemID <= 0 {
		return ErrMissingLineItem
	}
	if !validYear(e.Year) {
		return ErrInvalidYear
	}
	return nil
}

func (i IncomeEntry) Validate() error {
	if len(strings.TrimSpace(i.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(i.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if !validYear(i.Year) {
		return ErrInvalidYear
	}
	return nil
}

func (b BudgetLineItem) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if b.ProposedBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	if !validYear(b.Year) {
		return ErrInvalidYear
	}
	return nil
}

func (s Staff) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(strings.TrimSpace(s.Position)) == 0 {
		return ErrEmptyPosition
	}
	return nil
}

func (r IncidentReport) Validate() error {
	if len(strings.TrimSpace(r.Title)) == 0 {
		return ErrEmptyTitle
	}
	if err := r.ReportedOn.Validate(); err != nil {
		return fmt.Errorf("invalid report date: %w", err)
	}
	switch r.Status {
	case IncidentOpen, IncidentOngoing, IncidentResolved, IncidentEndorsed:
	default:
		return ErrInvalidStatus
	}
	return nil
}
