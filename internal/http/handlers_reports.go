package http

import (
	"net/http"
	"strconv"

	"talaan/internal/core"
)

type createReportRequest struct {
	CreatedFor       string `json:"created_for"`
	CompositionCount int    `json:"composition_count"`
	HasSignedFile    bool   `json:"has_signed_file"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	date, err := core.ParseDate(req.CreatedFor)
	if err != nil {
		writeBadRequest(w, "created_for must be a YYYY-MM-DD date")
		return
	}
	if req.CompositionCount < 0 {
		writeBadRequest(w, "composition_count cannot be negative")
		return
	}

	rec, err := s.reports.CreateReport(r.Context(), core.ReportRecord{
		CreatedFor:       date,
		CompositionCount: req.CompositionCount,
		HasSignedFile:    req.HasSignedFile,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// The week grouping for this year changed.
	s.bucketCache.Delete(strconv.Itoa(date.Year()))

	writeJSON(w, http.StatusCreated, toReportJSON(rec))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	records, err := s.reports.ListReports(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]reportJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, toReportJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBucketReports(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := strconv.Itoa(year)
	if buckets, ok := s.bucketCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toBucketsJSON(buckets))
		return
	}

	buckets, err := s.reports.BucketReports(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}
	s.bucketCache.Set(key, buckets)

	writeJSON(w, http.StatusOK, toBucketsJSON(buckets))
}

type createIncidentRequest struct {
	Title      string `json:"title"`
	Details    string `json:"details"`
	ReportedOn string `json:"reported_on"`
	Status     string `json:"status"`
}

func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var req createIncidentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	date, err := core.ParseDate(req.ReportedOn)
	if err != nil {
		writeBadRequest(w, "reported_on must be a YYYY-MM-DD date")
		return
	}

	inc, err := s.reports.CreateIncident(r.Context(), core.IncidentReport{
		Title:      req.Title,
		Details:    req.Details,
		ReportedOn: date,
		Status:     core.IncidentStatus(req.Status),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncidentJSON(inc))
}

func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	incidents, err := s.reports.ListIncidents(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]incidentJSON, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, toIncidentJSON(inc))
	}
	writeJSON(w, http.StatusOK, out)
}

type incidentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleIncidentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req incidentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.reports.UpdateIncidentStatus(r.Context(), id, core.IncidentStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
