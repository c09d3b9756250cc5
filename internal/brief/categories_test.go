package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fvs/internal/models"
)

func TestCategoryPartition(t *testing.T) {
	// Every setup type belongs to exactly one category.
	seen := make(map[string]string)
	for category, types := range categorySetupTypes {
		for _, st := range types {
			prev, dup := seen[st]
			require.False(t, dup, "setup type %s in both %s and %s", st, prev, category)
			seen[st] = category
		}
	}
	assert.Len(t, seen, 9)

	category, ok := CategoryForSetup(models.SetupBreakout)
	require.True(t, ok)
	assert.Equal(t, models.CategoryMomentumBreakout, category)

	_, ok = CategoryForSetup("not_a_setup")
	assert.False(t, ok)
}

func TestCompositeScoreFormulas(t *testing.T) {
	s := &models.SetupSignal{AIDirection: models.Float(80), AIPurity: models.Float(60), Return1D: 0.02}

	momentum := compositeScore(models.CategoryMomentumBreakout, s)
	assert.InDelta(t, 80*0.45+60*0.30+2*0.25, momentum, 1e-9)

	trend := compositeScore(models.CategoryTrendContinuation, s)
	assert.InDelta(t, 80*0.35+60*0.45+2*0.20, trend, 1e-9)

	// compression rewards a pullback: negative return raises the score
	down := &models.SetupSignal{AIDirection: models.Float(80), AIPurity: models.Float(60), Return1D: -0.03}
	compression := compositeScore(models.CategoryCompressionReversion, down)
	assert.InDelta(t, 80*0.35+60*0.35+3*0.30, compression, 1e-9)

	// a scored zero direction counts as zero, not the neutral 50
	bearish := &models.SetupSignal{AIDirection: models.Float(0), AIPurity: models.Float(60)}
	assert.InDelta(t, 0*0.45+60*0.30, compositeScore(models.CategoryMomentumBreakout, bearish), 1e-9)

	// unenriched signals fall back to the neutral defaults
	blank := &models.SetupSignal{}
	assert.InDelta(t, 50*0.45+50*0.30, compositeScore(models.CategoryMomentumBreakout, blank), 1e-9)
}

func TestBucketAndScore(t *testing.T) {
	candidates := []*models.SetupSignal{
		{ID: "1", Symbol: "AAA", SetupType: models.SetupBreakout, AIDirection: models.Float(60), AIPurity: models.Float(60)},
		{ID: "2", Symbol: "BBB", SetupType: models.SetupBreakout, AIDirection: models.Float(90), AIPurity: models.Float(90)},
		{ID: "3", Symbol: "CCC", SetupType: models.SetupPullback, AIDirection: models.Float(70), AIPurity: models.Float(70)},
		{ID: "4", Symbol: "DDD", SetupType: "unknown_setup", AIDirection: models.Float(99), AIPurity: models.Float(99)},
	}

	buckets := bucketAndScore(candidates)
	require.Len(t, buckets, 3)

	momentum := buckets[0]
	assert.Equal(t, models.CategoryMomentumBreakout, momentum.Category)
	require.Len(t, momentum.Candidates, 2)
	// sorted descending by composite
	assert.Equal(t, "BBB", momentum.Candidates[0].Symbol)
	assert.Equal(t, "AAA", momentum.Candidates[1].Symbol)

	trend := buckets[1]
	require.Len(t, trend.Candidates, 1)
	assert.Equal(t, "CCC", trend.Candidates[0].Symbol)

	// unknown setup type is dropped, compression bucket stays empty
	assert.Empty(t, buckets[2].Candidates)
}

func TestGenerateAlerts(t *testing.T) {
	positions := []models.Position{
		{Symbol: "AAPL", Sector: "Technology"},
		{Symbol: "XOM", Sector: "Energy"},
	}
	signals := []models.SetupSignal{
		{Symbol: "AAPL", Sector: "Technology", SetupType: models.SetupBreakout},
		{Symbol: "MSFT", Sector: "Technology", SetupType: models.SetupPullback},
		{Symbol: "JPM", Sector: "Financials", SetupType: models.SetupBreakout},
	}

	alerts := generateAlerts(signals, positions)
	require.Len(t, alerts, 2)

	assert.Equal(t, "add_on_opportunity", alerts[0].Type)
	assert.Equal(t, "AAPL", alerts[0].Symbol)

	assert.Equal(t, "sector_concentration", alerts[1].Type)
	assert.Equal(t, "MSFT", alerts[1].Symbol)
}

func TestGenerateAlerts_Truncation(t *testing.T) {
	positions := []models.Position{{Symbol: "HELD", Sector: "Technology"}}

	var signals []models.SetupSignal
	for i := 0; i < 25; i++ {
		signals = append(signals, models.SetupSignal{
			Symbol: string(rune('A'+i)) + "X",
			Sector: "Technology",
		})
	}

	alerts := generateAlerts(signals, positions)
	assert.Len(t, alerts, maxPortfolioAlerts)
}

func TestGenerateAlerts_NoPositions(t *testing.T) {
	signals := []models.SetupSignal{{Symbol: "AAPL", Sector: "Technology"}}
	assert.Nil(t, generateAlerts(signals, nil))
}
