package scoring

import (
	"github.com/bobmcallan/fvs/internal/models"
)

// engineComponent binds one sub-metric to its weight and threshold band.
type engineComponent struct {
	name           string
	weight         float64
	perfect        float64
	zero           float64
	higherIsBetter bool
	value          func(m *models.QuantitativeMetrics) *float64
}

// Engine weights and threshold bands are scoring-policy constants.
// Each engine's weights sum to exactly 1.0.
var growthComponents = []engineComponent{
	{
		name: "rule_of_40", weight: 0.40,
		perfect: 40, zero: 0, higherIsBetter: true,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.RuleOf40 },
	},
	{
		name: "gross_margin", weight: 0.20,
		perfect: 0.60, zero: 0.20, higherIsBetter: true,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.GrossMargin },
	},
	{
		name: "revenue_acceleration", weight: 0.20,
		perfect: 0.10, zero: -0.10, higherIsBetter: true,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.RevenueAcceleration },
	},
	{
		name: "peg_ratio", weight: 0.20,
		perfect: 1.0, zero: 3.0, higherIsBetter: false,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.PEG },
	},
}

var valueComponents = []engineComponent{
	{
		name: "fcf_yield", weight: 0.30,
		perfect: 0.08, zero: 0, higherIsBetter: true,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.FCFYield },
	},
	{
		name: "pe_vs_historical", weight: 0.20,
		perfect: 0.70, zero: 1.50, higherIsBetter: false,
		value: peVsHistorical,
	},
	{
		name: "debt_to_equity", weight: 0.20,
		perfect: 0.30, zero: 2.00, higherIsBetter: false,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.DebtToEquity },
	},
	{
		name: "dividend_yield", weight: 0.15,
		perfect: 0.05, zero: 0, higherIsBetter: true,
		value: func(m *models.QuantitativeMetrics) *float64 { return m.DividendYield },
	},
	{
		name: "piotroski", weight: 0.15,
		perfect: 9, zero: 0, higherIsBetter: true,
		value: piotroskiScore,
	},
}

// peVsHistorical is the ratio of the current P/E to its historical average;
// below 1 means the asset trades cheaper than its own history.
func peVsHistorical(m *models.QuantitativeMetrics) *float64 {
	if m.PE == nil || m.PEHistoricalAvg == nil || *m.PEHistoricalAvg <= 0 || *m.PE <= 0 {
		return nil
	}
	v := *m.PE / *m.PEHistoricalAvg
	return &v
}

func piotroskiScore(m *models.QuantitativeMetrics) *float64 {
	if m.Piotroski == nil {
		return nil
	}
	v := float64(m.Piotroski.Score)
	return &v
}

// runEngine produces the weighted composite for one engine.
func runEngine(engine string, components []engineComponent, m *models.QuantitativeMetrics) models.EngineBreakdown {
	out := models.EngineBreakdown{
		Engine:     engine,
		Components: make([]models.ComponentScore, 0, len(components)),
	}
	for _, c := range components {
		raw := c.value(m)
		normalized := NormalizeScore(raw, c.perfect, c.zero, c.higherIsBetter)
		out.Score += normalized * c.weight
		out.Components = append(out.Components, models.ComponentScore{
			Name:       c.name,
			Value:      raw,
			Normalized: normalized,
			Weight:     c.weight,
		})
	}
	return out
}

// GrowthScore runs the growth-oriented engine.
func GrowthScore(m *models.QuantitativeMetrics) models.EngineBreakdown {
	return runEngine("growth", growthComponents, m)
}

// ValueScore runs the value-oriented engine.
func ValueScore(m *models.QuantitativeMetrics) models.EngineBreakdown {
	return runEngine("value", valueComponents, m)
}

// CompositeScore dispatches on the classification: growth and value run
// their own engine; hybrid runs both and averages the two final scores.
func CompositeScore(class models.Classification, m *models.QuantitativeMetrics) (float64, []models.EngineBreakdown) {
	switch class {
	case models.ClassificationGrowth:
		b := GrowthScore(m)
		return b.Score, []models.EngineBreakdown{b}
	case models.ClassificationValue:
		b := ValueScore(m)
		return b.Score, []models.EngineBreakdown{b}
	default:
		g := GrowthScore(m)
		v := ValueScore(m)
		return (g.Score + v.Score) / 2, []models.EngineBreakdown{g, v}
	}
}
