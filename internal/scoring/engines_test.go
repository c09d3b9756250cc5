package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fvs/internal/models"
)

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 50.0, NormalizeScore(nil, 100, 0, true))
	assert.Equal(t, 50.0, NormalizeScore(nil, 0, 100, false))

	// higher is better: linear between zero and perfect, clamped
	assert.Equal(t, 0.0, NormalizeScore(models.Float(-5), 10, 0, true))
	assert.Equal(t, 0.0, NormalizeScore(models.Float(0), 10, 0, true))
	assert.InDelta(t, 50.0, NormalizeScore(models.Float(5), 10, 0, true), 1e-9)
	assert.Equal(t, 100.0, NormalizeScore(models.Float(10), 10, 0, true))
	assert.Equal(t, 100.0, NormalizeScore(models.Float(25), 10, 0, true))

	// lower is better: inverted scale
	assert.Equal(t, 100.0, NormalizeScore(models.Float(0.5), 1.0, 3.0, false))
	assert.InDelta(t, 50.0, NormalizeScore(models.Float(2.0), 1.0, 3.0, false), 1e-9)
	assert.Equal(t, 0.0, NormalizeScore(models.Float(4.0), 1.0, 3.0, false))
}

func TestNormalizeScore_Monotonic(t *testing.T) {
	prev := -1.0
	for v := -2.0; v <= 12.0; v += 0.25 {
		score := NormalizeScore(models.Float(v), 10, 0, true)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestEngineWeightsSumToOne(t *testing.T) {
	for _, engine := range [][]engineComponent{growthComponents, valueComponents} {
		sum := 0.0
		for _, c := range engine {
			sum += c.weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestGrowthScore_StrongCompounder(t *testing.T) {
	m := &models.QuantitativeMetrics{
		RuleOf40:            models.Float(55),
		GrossMargin:         models.Float(0.70),
		RevenueAcceleration: models.Float(0.12),
		PEG:                 models.Float(0.9),
	}
	b := GrowthScore(m)
	assert.Equal(t, "growth", b.Engine)
	assert.InDelta(t, 100.0, b.Score, 1e-9)
	require.Len(t, b.Components, 4)
}

func TestValueScore_MissingDataIsNeutral(t *testing.T) {
	// All metrics missing: every component normalizes to 50, so the
	// weighted composite is exactly 50.
	b := ValueScore(&models.QuantitativeMetrics{})
	assert.InDelta(t, 50.0, b.Score, 1e-9)
	for _, c := range b.Components {
		assert.Nil(t, c.Value)
		assert.Equal(t, 50.0, c.Normalized)
	}
}

func TestCompositeScore_HybridAveragesEngines(t *testing.T) {
	m := &models.QuantitativeMetrics{
		RuleOf40:            models.Float(55),
		GrossMargin:         models.Float(0.70),
		RevenueAcceleration: models.Float(0.12),
		PEG:                 models.Float(0.9),
		// value components left missing → value engine scores 50
	}

	g := GrowthScore(m)
	v := ValueScore(m)

	score, breakdown := CompositeScore(models.ClassificationHybrid, m)
	require.Len(t, breakdown, 2)
	assert.InDelta(t, (g.Score+v.Score)/2, score, 1e-9)

	score, breakdown = CompositeScore(models.ClassificationGrowth, m)
	require.Len(t, breakdown, 1)
	assert.InDelta(t, g.Score, score, 1e-9)

	score, breakdown = CompositeScore(models.ClassificationValue, m)
	require.Len(t, breakdown, 1)
	assert.InDelta(t, v.Score, score, 1e-9)
}

func TestPEVsHistorical(t *testing.T) {
	m := &models.QuantitativeMetrics{PE: models.Float(12), PEHistoricalAvg: models.Float(20)}
	v := peVsHistorical(m)
	require.NotNil(t, v)
	assert.InDelta(t, 0.6, *v, 1e-9)

	assert.Nil(t, peVsHistorical(&models.QuantitativeMetrics{PE: models.Float(12)}))
	assert.Nil(t, peVsHistorical(&models.QuantitativeMetrics{PE: models.Float(-5), PEHistoricalAvg: models.Float(20)}))
}
