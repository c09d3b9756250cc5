package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fvs/internal/app"
	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/models"
	"github.com/bobmcallan/fvs/internal/storage"
)

// stubScoring is a canned ScoringService for handler tests.
type stubScoring struct {
	result   *models.ScoringResult
	err      error
	batchErr error
}

func (s *stubScoring) ScoreSymbol(ctx context.Context, symbol string, opts interfaces.ScoreOptions) (*models.ScoringResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubScoring) ScoreBatch(ctx context.Context, symbols []string) (*interfaces.BatchResult, error) {
	if len(symbols) > 10 {
		return nil, fmt.Errorf("too many symbols: %d exceeds limit of 10", len(symbols))
	}
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := &interfaces.BatchResult{}
	for _, sym := range symbols {
		if sym == "BAD" {
			out.Errors = append(out.Errors, models.SymbolError{Symbol: sym, Error: "no data"})
			continue
		}
		out.Results = append(out.Results, &models.ScoringResult{Symbol: sym})
	}
	return out, nil
}

func (s *stubScoring) LatestScore(ctx context.Context, symbol string) (*models.ScoringResult, error) {
	if s.result != nil && s.result.Symbol == strings.ToUpper(symbol) {
		return s.result, nil
	}
	return nil, errors.New("no scores")
}

func (s *stubScoring) CustomScore(ctx context.Context, symbol, formula string) (float64, *models.QuantitativeMetrics, error) {
	if strings.Contains(formula, "bogus") {
		return 0, nil, fmt.Errorf("invalid formula: unknown name bogus")
	}
	return 42.0, &models.QuantitativeMetrics{Symbol: strings.ToUpper(symbol)}, nil
}

// stubBrief is a canned BriefService for handler tests.
type stubBrief struct {
	brief *models.DailyBrief
	err   error
}

func (s *stubBrief) Generate(ctx context.Context, opts interfaces.BriefOptions) (*models.DailyBrief, error) {
	if s.err != nil {
		return nil, s.err
	}
	b := *s.brief
	if opts.Date != "" {
		b.Date = opts.Date
	}
	return &b, nil
}

func (s *stubBrief) GetBrief(ctx context.Context, date string) (*models.DailyBrief, error) {
	if s.brief != nil && s.brief.Date == date {
		return s.brief, nil
	}
	return nil, errors.New("no brief")
}

func (s *stubBrief) LatestBrief(ctx context.Context) (*models.DailyBrief, error) {
	if s.brief == nil {
		return nil, errors.New("no briefs")
	}
	return s.brief, nil
}

func (s *stubBrief) ListDates(ctx context.Context) ([]string, error) {
	if s.brief == nil {
		return nil, nil
	}
	return []string{s.brief.Date}, nil
}

func newTestServer(t *testing.T, scoring interfaces.ScoringService, brief interfaces.BriefService) *Server {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()

	logger := common.NewSilentLogger()
	store, err := storage.NewManager(logger, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	a := &app.App{
		Config:         cfg,
		Logger:         logger,
		Storage:        store,
		ScoringService: scoring,
		BriefService:   brief,
		StartupTime:    time.Now(),
	}
	return NewServer(a)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "fvs-server", resp["service"])
}

func TestHandleScoreSymbol(t *testing.T) {
	s := newTestServer(t, &stubScoring{result: &models.ScoringResult{Symbol: "AAPL", FinalScore: 72}}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/score/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ScoringResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "AAPL", result.Symbol)
	assert.Equal(t, 72.0, result.FinalScore)
}

func TestHandleScoreSymbol_NotFound(t *testing.T) {
	s := newTestServer(t, &stubScoring{err: errors.New("no financial data available for ZZZZ")}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/score/ZZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestHandleScoreSymbol_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodPost, "/api/score/AAPL", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleScoreCustom(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/score/AAPL/custom?formula=gross_margin*100", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42.0, resp["value"])

	rec = doRequest(s, http.MethodGet, "/api/score/AAPL/custom", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/score/AAPL/custom?formula=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScoreBatch(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/score/batch?symbols=AAPL,BAD", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result interfaces.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Results, 1)
	assert.Len(t, result.Errors, 1)

	rec = doRequest(s, http.MethodGet, "/api/score/batch", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScoreBatch_ErrorStatus(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	oversized := strings.Repeat("A,", 11) + "B"
	rec := doRequest(s, http.MethodGet, "/api/score/batch?symbols="+oversized, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "limit violations are the caller's fault")

	s = newTestServer(t, &stubScoring{batchErr: errors.New("score store unavailable")}, &stubBrief{})
	rec = doRequest(s, http.MethodGet, "/api/score/batch?symbols=AAPL", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "infrastructure failures are not client errors")
}

func TestHandleScoreLatest(t *testing.T) {
	s := newTestServer(t, &stubScoring{result: &models.ScoringResult{Symbol: "AAPL"}}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/score/latest/AAPL", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/score/latest/NVDA", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBriefEndpoints(t *testing.T) {
	brief := &models.DailyBrief{Date: "2026-08-28", MacroRegime: "neutral"}
	s := newTestServer(t, &stubScoring{}, &stubBrief{brief: brief})

	rec := doRequest(s, http.MethodPost, "/api/brief/generate", `{"date": "2026-08-28", "force": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/brief?date=2026-08-28", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/brief?date=2020-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/brief", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "date parameter required")

	rec = doRequest(s, http.MethodGet, "/api/brief/list", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026-08-28")

	rec = doRequest(s, http.MethodGet, "/api/brief/latest", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRegime(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/regime", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"regime":""`)

	rec = doRequest(s, http.MethodPut, "/api/regime", `{"regime": "bear market"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/regime", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bear market")

	rec = doRequest(s, http.MethodPut, "/api/regime", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSignals(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	body := `{"signals": [{"symbol": "aapl", "setup_type": "breakout", "entry": 200, "stop": 190, "target": 230, "risk_reward": 3, "signal_date": "2026-08-28T00:00:00Z"}]}`
	rec := doRequest(s, http.MethodPost, "/api/signals", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saved":1`)

	rec = doRequest(s, http.MethodPost, "/api/signals", `{"signals": [{"symbol": "AAPL", "setup_type": "not_real"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/signals", `{"signals": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePositions(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodPost, "/api/positions", `{"positions": [{"symbol": "aapl", "sector": "Technology", "quantity": 10}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL", "symbols normalized to uppercase")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodOptions, "/api/score/AAPL", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDHeader(t *testing.T) {
	s := newTestServer(t, &stubScoring{}, &stubBrief{})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestServiceUnavailableWithoutClients(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/score/AAPL", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/brief/latest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
