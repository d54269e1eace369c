package http

import (
	"net/http"
	"time"

	"talaan/internal/core"
)

type lineItemRequest struct {
	Name           string `json:"name"`
	Year           int    `json:"year"`
	ProposedBudget string `json:"proposed_budget"`
}

func (s *Server) handleCreateLineItem(w http.ResponseWriter, r *http.Request) {
	var req lineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.ProposedBudget)
	if err != nil {
		writeError(w, err)
		return
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	item, err := s.ledger.CreateLineItem(r.Context(), core.BudgetLineItem{
		Name:           req.Name,
		Year:           year,
		ProposedBudget: core.Money{Cents: cents},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineItemJSON(item))
}

func (s *Server) handleListLineItems(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	items, err := s.ledger.ListLineItems(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]lineItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toLineItemJSON(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetYearlyBudget(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	budget, err := s.ledger.GetYearlyBudget(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toYearlyBudgetJSON(budget))
}

type totalBudgetRequest struct {
	TotalBudget string `json:"total_budget"`
}

func (s *Server) handleSetTotalBudget(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req totalBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.TotalBudget)
	if err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.ledger.SetTotalBudget(r.Context(), year, core.Money{Cents: cents})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toYearlyBudgetJSON(budget))
}
