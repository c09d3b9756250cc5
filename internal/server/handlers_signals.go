package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/fvs/internal/brief"
	"github.com/bobmcallan/fvs/internal/models"
)

// handleSignals handles POST /api/signals: ingest trading-setup signals
// consumed by the daily-brief candidate generator.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Signals []models.SetupSignal `json:"signals"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Signals) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one signal is required")
		return
	}

	for i := range req.Signals {
		sig := &req.Signals[i]
		sig.Symbol = strings.ToUpper(strings.TrimSpace(sig.Symbol))
		if sig.Symbol == "" {
			WriteError(w, http.StatusBadRequest, "Signal symbol is required")
			return
		}
		if _, ok := brief.CategoryForSetup(sig.SetupType); !ok {
			WriteError(w, http.StatusBadRequest, "Unknown setup type: "+sig.SetupType)
			return
		}
	}

	if err := s.app.Storage.SignalStorage().SaveSignals(r.Context(), req.Signals); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"saved": len(req.Signals)})
}

// handleRegime handles GET and PUT /api/regime: the macro regime label
// that drives category suppression in the daily brief.
func (s *Server) handleRegime(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		regime, err := s.app.Storage.KeyValueStorage().Get(r.Context(), brief.RegimeKey)
		if err != nil {
			regime = ""
		}
		WriteJSON(w, http.StatusOK, map[string]string{"regime": regime})

	case http.MethodPut:
		var req struct {
			Regime string `json:"regime"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.Regime == "" {
			WriteError(w, http.StatusBadRequest, "Field 'regime' is required")
			return
		}
		if err := s.app.Storage.KeyValueStorage().Set(r.Context(), brief.RegimeKey, req.Regime); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"regime": req.Regime})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handlePositions handles GET and POST /api/positions: the held positions
// used for portfolio alert generation.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		positions, err := s.app.Storage.PositionStorage().ListPositions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})

	case http.MethodPost:
		var req struct {
			Positions []models.Position `json:"positions"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		for i := range req.Positions {
			req.Positions[i].Symbol = strings.ToUpper(strings.TrimSpace(req.Positions[i].Symbol))
		}
		if err := s.app.Storage.PositionStorage().SavePositions(r.Context(), req.Positions); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"saved": len(req.Positions)})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}
