package http

import (
	"net/http"
	"time"

	"talaan/internal/core"
)

type expenseRequest struct {
	Description string `json:"description"`
	Proposed    string `json:"proposed"`
	Actual      string `json:"actual"`
	LineItemID  int64  `json:"line_item_id"`
	Year        int    `json:"year"`
}

// parseAmounts converts the request's decimal strings to cents. Actual is
// optional; empty means not yet confirmed.
func (req expenseRequest) parseAmounts() (proposed, actual core.Money, err error) {
	cents, err := core.ParseDecimalToCents(req.Proposed)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	proposed = core.Money{Cents: cents}

	if req.Actual != "" {
		cents, err := core.ParseDecimalToCents(req.Actual)
		if err != nil {
			return core.Money{}, core.Money{}, err
		}
		actual = core.Money{Cents: cents}
	}
	return proposed, actual, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	proposed, actual, err := req.parseAmounts()
	if err != nil {
		writeError(w, err)
		return
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	entry, err := s.ledger.CreateExpense(r.Context(), core.ExpenseEntry{
		Description: req.Description,
		Proposed:    proposed,
		Actual:      actual,
		LineItemID:  req.LineItemID,
		Year:        year,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(entry))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	includeArchived := parseBoolParam(r.URL.Query(), "include_archived")

	entries, err := s.ledger.ListExpenses(r.Context(), year, includeArchived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseListJSON(entries))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	entry, err := s.ledger.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(entry))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	proposed, actual, err := req.parseAmounts()
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.ledger.UpdateExpense(r.Context(), id, req.Description, proposed, actual)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(entry))
}

func (s *Server) handleArchiveExpense(w http.ResponseWriter, r *http.Request) {
	s.handleArchiveToggle(w, r, true)
}

func (s *Server) handleRestoreExpense(w http.ResponseWriter, r *http.Request) {
	s.handleArchiveToggle(w, r, false)
}

func (s *Server) handleArchiveToggle(w http.ResponseWriter, r *http.Request, archive bool) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var entry core.ExpenseEntry
	if archive {
		entry, err = s.ledger.ArchiveExpense(r.Context(), id)
	} else {
		entry, err = s.ledger.RestoreExpense(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(entry))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incomeRequest struct {
	Description string `json:"description"`
	Source      string `json:"source"`
	Amount      string `json:"amount"`
	Year        int    `json:"year"`
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	inc, err := s.ledger.AddIncome(r.Context(), core.IncomeEntry{
		Description: req.Description,
		Source:      req.Source,
		Amount:      core.Money{Cents: cents},
		Year:        year,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeJSON(inc))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	incomes, err := s.ledger.ListIncomes(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]incomeJSON, 0, len(incomes))
	for _, inc := range incomes {
		out = append(out, toIncomeJSON(inc))
	}
	writeJSON(w, http.StatusOK, out)
}
