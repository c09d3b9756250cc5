package server

import (
	"net/http"

	"github.com/bobmcallan/fvs/internal/interfaces"
)

// handleBriefGenerate handles POST /api/brief/generate with body
// {date?, force?}. Returns the cached brief for the date unless force.
func (s *Server) handleBriefGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.BriefService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Brief service not configured")
		return
	}

	var req struct {
		Date  string `json:"date"`
		Force bool   `json:"force"`
	}
	if r.ContentLength > 0 {
		if !DecodeJSON(w, r, &req) {
			return
		}
	}

	brief, err := s.app.BriefService.Generate(r.Context(), interfaces.BriefOptions{
		Date:  req.Date,
		Force: req.Force,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, brief)
}

// handleBriefGet handles GET /api/brief?date=YYYY-MM-DD.
func (s *Server) handleBriefGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.BriefService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Brief service not configured")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'date' is required")
		return
	}

	brief, err := s.app.BriefService.GetBrief(r.Context(), date)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, brief)
}

// handleBriefList handles GET /api/brief/list.
func (s *Server) handleBriefList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.BriefService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Brief service not configured")
		return
	}

	dates, err := s.app.BriefService.ListDates(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// handleBriefLatest handles GET /api/brief/latest.
func (s *Server) handleBriefLatest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.BriefService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Brief service not configured")
		return
	}

	brief, err := s.app.BriefService.LatestBrief(r.Context())
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, brief)
}
