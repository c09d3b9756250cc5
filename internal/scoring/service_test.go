package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/models"
)

// mockFMP counts calls and serves canned financials per symbol.
type mockFMP struct {
	calls    int
	profiles map[string]*models.CompanyProfile
}

func (m *mockFMP) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	m.calls++
	if p, ok := m.profiles[symbol]; ok {
		return p, nil
	}
	return nil, errors.New("symbol not found")
}

func (m *mockFMP) GetIncomeStatements(ctx context.Context, symbol string, quarterly bool, limit int) ([]models.IncomeStatement, error) {
	m.calls++
	if _, ok := m.profiles[symbol]; !ok {
		return nil, errors.New("symbol not found")
	}
	if quarterly {
		return nil, errors.New("no quarterly data")
	}
	return []models.IncomeStatement{
		{Date: "2025-12-31", Revenue: 1200, GrossProfit: 600, OperatingIncome: 240, NetIncome: 180, SharesOut: 100},
		{Date: "2024-12-31", Revenue: 1000, GrossProfit: 500, OperatingIncome: 200, NetIncome: 150, SharesOut: 100},
	}, nil
}

func (m *mockFMP) GetBalanceSheets(ctx context.Context, symbol string, limit int) ([]models.BalanceSheet, error) {
	m.calls++
	if _, ok := m.profiles[symbol]; !ok {
		return nil, errors.New("symbol not found")
	}
	return []models.BalanceSheet{
		{Date: "2025-12-31", TotalAssets: 2000, CurrentAssets: 800, CurrentLiabilities: 400, TotalLiabilities: 900, TotalDebt: 500, RetainedEarnings: 600, ShareholderEquity: 1100},
		{Date: "2024-12-31", TotalAssets: 1900, CurrentAssets: 750, CurrentLiabilities: 390, TotalLiabilities: 880, TotalDebt: 520, RetainedEarnings: 500, ShareholderEquity: 1020},
	}, nil
}

func (m *mockFMP) GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowStatement, error) {
	m.calls++
	if _, ok := m.profiles[symbol]; !ok {
		return nil, errors.New("symbol not found")
	}
	return []models.CashFlowStatement{
		{Date: "2025-12-31", OperatingCashFlow: 220, FreeCashFlow: 170},
		{Date: "2024-12-31", OperatingCashFlow: 200, FreeCashFlow: 150},
	}, nil
}

func (m *mockFMP) GetRatiosTTM(ctx context.Context, symbol string) (*models.RatiosTTM, error) {
	m.calls++
	return nil, errors.New("no ratio data")
}

// mockGemini returns a fixed well-formed verdict.
type mockGemini struct {
	calls int
	fail  bool
}

func (m *mockGemini) GenerateJSON(ctx context.Context, prompt string) (*interfaces.LLMResult, error) {
	m.calls++
	if m.fail {
		return nil, errors.New("llm unavailable")
	}
	return &interfaces.LLMResult{
		Text:             `{"profitability": 70, "solvency": 65, "growth": 60, "quality": 72, "confidence_level": "medium", "data_quality_score": 80, "reasoning": "steady performer", "strengths": ["margins"], "risks": ["competition"]}`,
		PromptTokens:     500,
		CompletionTokens: 120,
	}, nil
}

func (m *mockGemini) Model() string { return "test-model" }

// memoryScores is an in-memory ScoreStorage.
type memoryScores struct {
	scores map[string]*models.ScoringResult
}

func newMemoryScores() *memoryScores {
	return &memoryScores{scores: make(map[string]*models.ScoringResult)}
}

func (m *memoryScores) GetScore(ctx context.Context, symbol, date string) (*models.ScoringResult, error) {
	if r, ok := m.scores[symbol+":"+date]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func (m *memoryScores) GetLatestScore(ctx context.Context, symbol string) (*models.ScoringResult, error) {
	var latest *models.ScoringResult
	for _, r := range m.scores {
		if r.Symbol != symbol {
			continue
		}
		if latest == nil || r.AsOfDate > latest.AsOfDate {
			latest = r
		}
	}
	if latest == nil {
		return nil, errors.New("not found")
	}
	return latest, nil
}

func (m *memoryScores) SaveScore(ctx context.Context, result *models.ScoringResult) error {
	m.scores[result.Key()] = result
	return nil
}

// mockStorage implements the storage facade over the in-memory score store.
type mockStorage struct {
	scores *memoryScores
}

func (m *mockStorage) ScoreStorage() interfaces.ScoreStorage       { return m.scores }
func (m *mockStorage) BriefStorage() interfaces.BriefStorage       { return nil }
func (m *mockStorage) SignalStorage() interfaces.SignalStorage     { return nil }
func (m *mockStorage) PositionStorage() interfaces.PositionStorage { return nil }
func (m *mockStorage) KeyValueStorage() interfaces.KeyValueStorage { return nil }
func (m *mockStorage) Close() error                                { return nil }

func newTestService(fmp *mockFMP, gemini *mockGemini) (*Service, *mockStorage) {
	storage := &mockStorage{scores: newMemoryScores()}
	cfg := &common.ScoringConfig{CacheTTL: "24h", BatchLimit: 10, IngestDelayMS: 0}
	svc := NewService(storage, fmp, gemini, cfg, common.NewSilentLogger())
	return svc, storage
}

func TestScoreSymbol_FullPipeline(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", Sector: "Technology", MarketCap: 3e12},
	}}
	gemini := &mockGemini{}
	svc, storage := newTestService(fmp, gemini)

	result, err := svc.ScoreSymbol(context.Background(), "aapl", interfaces.ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", result.Symbol)
	assert.Equal(t, "Technology", result.Sector)
	assert.NotEmpty(t, result.ClassificationReason)
	assert.NotEmpty(t, result.Breakdown)

	expected := 70*0.35 + 65*0.25 + 60*0.20 + 72*0.20
	assert.InDelta(t, expected, result.FinalScore, 1e-9)
	assert.Equal(t, 620, result.TokenUsage.TotalTokens)

	// persisted under (symbol, date)
	stored, err := storage.scores.GetScore(context.Background(), "AAPL", result.AsOfDate)
	require.NoError(t, err)
	assert.Equal(t, result.FinalScore, stored.FinalScore)
}

func TestScoreSymbol_CacheHitIssuesNoCalls(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", Sector: "Technology", MarketCap: 3e12},
	}}
	gemini := &mockGemini{}
	svc, _ := newTestService(fmp, gemini)

	first, err := svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{})
	require.NoError(t, err)

	fmpCalls, llmCalls := fmp.calls, gemini.calls

	second, err := svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, fmpCalls, fmp.calls, "cache hit must issue zero vendor calls")
	assert.Equal(t, llmCalls, gemini.calls, "cache hit must issue zero LLM calls")
	assert.Equal(t, first, second)
}

func TestScoreSymbol_RefreshBypassesCache(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", MarketCap: 3e12},
	}}
	gemini := &mockGemini{}
	svc, _ := newTestService(fmp, gemini)

	_, err := svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{})
	require.NoError(t, err)

	llmCalls := gemini.calls
	_, err = svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, llmCalls+1, gemini.calls)
}

func TestScoreSymbol_StaleStoredScoreRecomputed(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", MarketCap: 3e12},
	}}
	gemini := &mockGemini{}
	svc, storage := newTestService(fmp, gemini)

	date := time.Now().Format("2006-01-02")
	stale := &models.ScoringResult{
		Symbol:      "AAPL",
		AsOfDate:    date,
		FinalScore:  10,
		GeneratedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, storage.scores.SaveScore(context.Background(), stale))

	result, err := svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, 10.0, result.FinalScore)
	assert.Equal(t, 1, gemini.calls)
}

func TestScoreBatch_PartialFailure(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", MarketCap: 3e12},
	}}
	gemini := &mockGemini{}
	svc, _ := newTestService(fmp, gemini)

	result, err := svc.ScoreBatch(context.Background(), []string{"AAPL", "INVALIDTICKER123"})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "AAPL", result.Results[0].Symbol)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "INVALIDTICKER123", result.Errors[0].Symbol)
	assert.NotEmpty(t, result.Errors[0].Error)
}

func TestScoreBatch_LimitEnforced(t *testing.T) {
	svc, _ := newTestService(&mockFMP{}, &mockGemini{})

	symbols := make([]string, 11)
	for i := range symbols {
		symbols[i] = "SYM"
	}
	_, err := svc.ScoreBatch(context.Background(), symbols)
	assert.Error(t, err)
}

func TestScoreSymbol_LLMFailureAbortsSymbol(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", MarketCap: 3e12},
	}}
	svc, storage := newTestService(fmp, &mockGemini{fail: true})

	_, err := svc.ScoreSymbol(context.Background(), "AAPL", interfaces.ScoreOptions{})
	require.Error(t, err)
	assert.Empty(t, storage.scores.scores)
}

func TestCustomScore(t *testing.T) {
	fmp := &mockFMP{profiles: map[string]*models.CompanyProfile{
		"AAPL": {Symbol: "AAPL", MarketCap: 3e12},
	}}
	svc, _ := newTestService(fmp, &mockGemini{})

	value, metrics, err := svc.CustomScore(context.Background(), "AAPL", "gross_margin * 100")
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.InDelta(t, 50.0, value, 1e-9) // 600/1200 gross margin

	_, _, err = svc.CustomScore(context.Background(), "AAPL", "os.Getenv('HOME')")
	assert.Error(t, err)
}
