package http

import (
	"net/http"

	"talaan/internal/core"
)

type staffRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st, err := s.reports.CreateStaff(r.Context(), core.Staff{
		Name:     req.Name,
		Position: req.Position,
		Team:     req.Team,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStaffJSON(st))
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	list, err := s.reports.ListStaff(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]staffJSON, 0, len(list))
	for _, st := range list {
		out = append(out, toStaffJSON(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req staffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st := core.Staff{ID: id, Name: req.Name, Position: req.Position, Team: req.Team}
	if err := s.reports.UpdateStaff(r.Context(), st); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffJSON(st))
}

func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.reports.DeleteStaff(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
