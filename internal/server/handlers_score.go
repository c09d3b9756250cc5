package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/fvs/internal/interfaces"
)

// handleScoreSymbol handles GET /api/score/{symbol}.
// Query param refresh=true bypasses the cached result.
func (s *Server) handleScoreSymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ScoringService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Scoring service not configured")
		return
	}

	opts := interfaces.ScoreOptions{
		Refresh: r.URL.Query().Get("refresh") == "true",
	}

	result, err := s.app.ScoringService.ScoreSymbol(r.Context(), symbol, opts)
	if err != nil {
		if strings.Contains(err.Error(), "no financial data") {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleScoreCustom handles GET /api/score/{symbol}/custom?formula=...
func (s *Server) handleScoreCustom(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ScoringService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Scoring service not configured")
		return
	}

	expression := r.URL.Query().Get("formula")
	if expression == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'formula' is required")
		return
	}

	value, metrics, err := s.app.ScoringService.CustomScore(r.Context(), symbol, expression)
	if err != nil {
		if strings.Contains(err.Error(), "invalid formula") || strings.Contains(err.Error(), "evaluation failed") {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  strings.ToUpper(strings.TrimSpace(symbol)),
		"formula": expression,
		"value":   value,
		"metrics": metrics,
	})
}

// handleScoreBatch handles GET /api/score/batch?symbols=A,B,C.
func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ScoringService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Scoring service not configured")
		return
	}

	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'symbols' is required")
		return
	}

	var symbols []string
	for _, sym := range strings.Split(raw, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}

	result, err := s.app.ScoringService.ScoreBatch(r.Context(), symbols)
	if err != nil {
		// Request-shape failures are the caller's fault; anything else is ours
		if strings.Contains(err.Error(), "too many symbols") || strings.Contains(err.Error(), "no symbols") {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleScoreLatest handles GET /api/score/latest/{symbol}.
// Returns the most recent persisted score without recomputation.
func (s *Server) handleScoreLatest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.ScoringService == nil {
		WriteError(w, http.StatusServiceUnavailable, "Scoring service not configured")
		return
	}

	symbol := PathParam(r, "/api/score/latest/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol required")
		return
	}

	result, err := s.app.ScoringService.LatestScore(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
