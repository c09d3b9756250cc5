package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/fvs/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Scoring
	mux.HandleFunc("/api/score/batch", s.handleScoreBatch)
	mux.HandleFunc("/api/score/latest/", s.handleScoreLatest)
	mux.HandleFunc("/api/score/", s.routeScore)

	// Daily brief
	mux.HandleFunc("/api/brief/generate", s.handleBriefGenerate)
	mux.HandleFunc("/api/brief/list", s.handleBriefList)
	mux.HandleFunc("/api/brief/latest", s.handleBriefLatest)
	mux.HandleFunc("/api/brief", s.handleBriefGet)

	// Signals and portfolio context
	mux.HandleFunc("/api/signals", s.handleSignals)
	mux.HandleFunc("/api/regime", s.handleRegime)
	mux.HandleFunc("/api/positions", s.handlePositions)
}

// routeScore dispatches /api/score/{symbol} and /api/score/{symbol}/custom.
func (s *Server) routeScore(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/score/")
	if rest == "" {
		WriteError(w, http.StatusNotFound, "Symbol required")
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	symbol := parts[0]

	if len(parts) == 2 {
		if parts[1] == "custom" {
			s.handleScoreCustom(w, r, symbol)
			return
		}
		WriteError(w, http.StatusNotFound, "Unknown score endpoint")
		return
	}

	s.handleScoreSymbol(w, r, symbol)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	model := ""
	if s.app.GeminiClient != nil {
		model = s.app.GeminiClient.Model()
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": common.ServiceName,
		"version": common.GetVersion(),
		"model":   model,
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, common.VersionInfo())
}
