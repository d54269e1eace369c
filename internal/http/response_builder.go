package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"talaan/internal/core"
	"talaan/internal/services"
	"talaan/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: validation problems are
// 422, balance and archive-state conflicts 409, missing rows 404, and
// anything unrecognized 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrEntryArchived),
		errors.Is(err, core.ErrEntryNotArchived),
		errors.Is(err, services.ErrDuplicateWeek):
		status = http.StatusConflict
	case errors.Is(err, services.ErrWeekNotStarted):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingLineItem),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrZeroDate),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyPosition),
		errors.Is(err, core.ErrDescriptionTooLong):
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// --- response shapes ---

type moneyJSON struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Amount: core.FormatCents(m.Cents)}
}

type expenseJSON struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Proposed    moneyJSON `json:"proposed"`
	Actual      moneyJSON `json:"actual"`
	Returned    moneyJSON `json:"returned"`
	LineItemID  int64     `json:"line_item_id"`
	Year        int       `json:"year"`
	Archived    bool      `json:"archived"`
}

func toExpenseJSON(e core.ExpenseEntry) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Proposed:    toMoneyJSON(e.Proposed),
		Actual:      toMoneyJSON(e.Actual),
		Returned:    toMoneyJSON(e.Returned),
		LineItemID:  e.LineItemID,
		Year:        e.Year,
		Archived:    e.Archived,
	}
}

func toExpenseListJSON(entries []core.ExpenseEntry) []expenseJSON {
	out := make([]expenseJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

type lineItemJSON struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Year           int       `json:"year"`
	ProposedBudget moneyJSON `json:"proposed_budget"`
}

func toLineItemJSON(item core.BudgetLineItem) lineItemJSON {
	return lineItemJSON{
		ID:             item.ID,
		Name:           item.Name,
		Year:           item.Year,
		ProposedBudget: toMoneyJSON(item.ProposedBudget),
	}
}

type yearlyBudgetJSON struct {
	Year             int       `json:"year"`
	TotalBudget      moneyJSON `json:"total_budget"`
	RemainingBalance moneyJSON `json:"remaining_balance"`
	TotalExpense     moneyJSON `json:"total_expense"`
	TotalIncome      moneyJSON `json:"total_income"`
}

func toYearlyBudgetJSON(b core.YearlyBudget) yearlyBudgetJSON {
	return yearlyBudgetJSON{
		Year:             b.Year,
		TotalBudget:      toMoneyJSON(b.TotalBudget),
		RemainingBalance: toMoneyJSON(b.RemainingBalance),
		TotalExpense:     toMoneyJSON(b.TotalExpense),
		TotalIncome:      toMoneyJSON(b.TotalIncome),
	}
}

type incomeJSON struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Amount      moneyJSON `json:"amount"`
	Year        int       `json:"year"`
}

func toIncomeJSON(inc core.IncomeEntry) incomeJSON {
	return incomeJSON{
		ID:          inc.ID,
		Description: inc.Description,
		Source:      inc.Source,
		Amount:      toMoneyJSON(inc.Amount),
		Year:        inc.Year,
	}
}

type reportJSON struct {
	ID               int64  `json:"id"`
	CreatedFor       string `json:"created_for"`
	Week             int    `json:"week"`
	CompositionCount int    `json:"composition_count"`
	HasSignedFile    bool   `json:"has_signed_file"`
}

func toReportJSON(r core.ReportRecord) reportJSON {
	return reportJSON{
		ID:               r.ID,
		CreatedFor:       r.CreatedFor.Format("2006-01-02"),
		Week:             core.WeekNumber(r.CreatedFor.Time),
		CompositionCount: r.CompositionCount,
		HasSignedFile:    r.HasSignedFile,
	}
}

type weekBucketJSON struct {
	Week    int          `json:"week"`
	Reports []reportJSON `json:"reports"`
}

type monthBucketJSON struct {
	Month             int              `json:"month"`
	MonthName         string           `json:"month_name"`
	Weeks             []weekBucketJSON `json:"weeks"`
	AllWeeks          []int            `json:"all_weeks"`
	MissingWeeks      []int            `json:"missing_weeks"`
	MissedWeeksPassed int              `json:"missed_weeks_passed"`
	HasData           bool             `json:"has_data"`
}

func toBucketsJSON(buckets []core.MonthBucket) []monthBucketJSON {
	out := make([]monthBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		weeks := make([]weekBucketJSON, 0, len(b.Weeks))
		for _, wb := range b.Weeks {
			reports := make([]reportJSON, 0, len(wb.Reports))
			for _, r := range wb.Reports {
				reports = append(reports, toReportJSON(r))
			}
			weeks = append(weeks, weekBucketJSON{Week: wb.WeekNumber, Reports: reports})
		}
		out = append(out, monthBucketJSON{
			Month:             int(b.Month),
			MonthName:         b.MonthName,
			Weeks:             weeks,
			AllWeeks:          b.AllWeeks,
			MissingWeeks:      b.MissingWeeks,
			MissedWeeksPassed: b.MissedWeeksPassed,
			HasData:           b.HasData,
		})
	}
	return out
}

type incidentJSON struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Details    string `json:"details"`
	ReportedOn string `json:"reported_on"`
	Status     string `json:"status"`
}

func toIncidentJSON(inc core.IncidentReport) incidentJSON {
	return incidentJSON{
		ID:         inc.ID,
		Title:      inc.Title,
		Details:    inc.Details,
		ReportedOn: inc.ReportedOn.Format("2006-01-02"),
		Status:     string(inc.Status),
	}
}

type staffJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

func toStaffJSON(s core.Staff) staffJSON {
	return staffJSON{ID: s.ID, Name: s.Name, Position: s.Position, Team: s.Team}
}
