package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()

	m, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestScoreStorage_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	result := &models.ScoringResult{
		Symbol:         "AAPL",
		AsOfDate:       "2026-08-28",
		Classification: models.ClassificationGrowth,
		FinalScore:     72.5,
		GeneratedAt:    time.Now(),
	}
	require.NoError(t, m.ScoreStorage().SaveScore(ctx, result))

	got, err := m.ScoreStorage().GetScore(ctx, "AAPL", "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, 72.5, got.FinalScore)
	assert.Equal(t, models.ClassificationGrowth, got.Classification)

	_, err = m.ScoreStorage().GetScore(ctx, "AAPL", "2026-08-27")
	assert.Error(t, err)
}

func TestScoreStorage_UpsertOverwrites(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	first := &models.ScoringResult{Symbol: "AAPL", AsOfDate: "2026-08-28", FinalScore: 50}
	require.NoError(t, m.ScoreStorage().SaveScore(ctx, first))

	second := &models.ScoringResult{Symbol: "AAPL", AsOfDate: "2026-08-28", FinalScore: 80}
	require.NoError(t, m.ScoreStorage().SaveScore(ctx, second))

	got, err := m.ScoreStorage().GetScore(ctx, "AAPL", "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.FinalScore)
}

func TestScoreStorage_GetLatest(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-25", "2026-08-28", "2026-08-26"} {
		require.NoError(t, m.ScoreStorage().SaveScore(ctx, &models.ScoringResult{
			Symbol: "AAPL", AsOfDate: date, FinalScore: 60,
		}))
	}
	require.NoError(t, m.ScoreStorage().SaveScore(ctx, &models.ScoringResult{
		Symbol: "MSFT", AsOfDate: "2026-08-29", FinalScore: 70,
	}))

	latest, err := m.ScoreStorage().GetLatestScore(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", latest.AsOfDate)

	_, err = m.ScoreStorage().GetLatestScore(ctx, "NVDA")
	assert.Error(t, err)
}

func TestBriefStorage_RoundTripAndList(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-26", "2026-08-28", "2026-08-27"} {
		require.NoError(t, m.BriefStorage().SaveBrief(ctx, &models.DailyBrief{
			Date:        date,
			MacroRegime: "neutral",
			GeneratedAt: time.Now(),
		}))
	}

	dates, err := m.BriefStorage().ListBriefDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-28", "2026-08-27", "2026-08-26"}, dates)

	latest, err := m.BriefStorage().GetLatestBrief(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", latest.Date)
}

func TestSignalStorage_QueryByType(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	now := time.Now()
	signals := []models.SetupSignal{
		{Symbol: "AAA", SetupType: models.SetupBreakout, SignalDate: now, RiskReward: 1.5},
		{Symbol: "BBB", SetupType: models.SetupBreakout, SignalDate: now, RiskReward: 3.0},
		{Symbol: "CCC", SetupType: models.SetupBreakout, SignalDate: now.AddDate(0, 0, -10), RiskReward: 5.0},
		{Symbol: "DDD", SetupType: models.SetupPullback, SignalDate: now, RiskReward: 2.0},
	}
	require.NoError(t, m.SignalStorage().SaveSignals(ctx, signals))

	since := now.AddDate(0, 0, -3)
	got, err := m.SignalStorage().GetSignalsByType(ctx, models.SetupBreakout, since, 20)
	require.NoError(t, err)
	require.Len(t, got, 2, "stale signal excluded")

	// sorted by risk/reward descending
	assert.Equal(t, "BBB", got[0].Symbol)
	assert.Equal(t, "AAA", got[1].Symbol)

	got, err = m.SignalStorage().GetSignalsByType(ctx, models.SetupBreakout, since, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BBB", got[0].Symbol)
}

func TestSignalStorage_AssignsIDs(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	signals := []models.SetupSignal{{Symbol: "AAA", SetupType: models.SetupBreakout, SignalDate: time.Now()}}
	require.NoError(t, m.SignalStorage().SaveSignals(ctx, signals))
	assert.NotEmpty(t, signals[0].ID)
}

func TestPositionStorage_ReplaceSemantics(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.PositionStorage().SavePositions(ctx, []models.Position{
		{Symbol: "AAPL", Sector: "Technology", Quantity: 10},
		{Symbol: "XOM", Sector: "Energy", Quantity: 5},
	}))

	require.NoError(t, m.PositionStorage().SavePositions(ctx, []models.Position{
		{Symbol: "AAPL", Sector: "Technology", Quantity: 12},
	}))

	positions, err := m.PositionStorage().ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1, "removed position deleted")
	assert.Equal(t, 12.0, positions[0].Quantity)
}

func TestKeyValueStorage(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.KeyValueStorage().Set(ctx, "macro_regime", "bull"))

	v, err := m.KeyValueStorage().Get(ctx, "macro_regime")
	require.NoError(t, err)
	assert.Equal(t, "bull", v)

	require.NoError(t, m.KeyValueStorage().Set(ctx, "macro_regime", "bear"))
	v, _ = m.KeyValueStorage().Get(ctx, "macro_regime")
	assert.Equal(t, "bear", v)

	require.NoError(t, m.KeyValueStorage().Delete(ctx, "macro_regime"))
	_, err = m.KeyValueStorage().Get(ctx, "macro_regime")
	assert.Error(t, err)
}
