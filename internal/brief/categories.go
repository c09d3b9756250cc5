// Package brief implements the three-stage daily-brief orchestrator:
// candidate generation, bucketing and composite scoring, and LLM re-ranking
// with macro-regime aware category suppression.
package brief

import (
	"sort"

	"github.com/bobmcallan/fvs/internal/models"
)

// Pipeline constants. The partition of setup types into categories is
// fixed and non-overlapping; every setup type belongs to exactly one.
const (
	candidatesPerSetup = 20
	signalLookbackDays = 3
	rerankPoolSize     = 40
	picksPerCategory   = 15
	maxPortfolioAlerts = 10

	// Neutral enrichment defaults: missing joins never propagate nil.
	neutralDirection  = 50.0
	neutralPurity     = 50.0
	neutralConfidence = 0.5
)

// SuppressionMessage is the fixed theme summary emitted when a category is
// skipped under a bearish macro regime.
const SuppressionMessage = "Category suppressed: compression and mean-reversion setups are not traded in a bearish macro regime."

// categorySetupTypes maps each category to its member setup types.
var categorySetupTypes = map[string][]string{
	models.CategoryMomentumBreakout: {
		models.SetupBreakout,
		models.SetupGapContinuation,
		models.SetupHighTightFlag,
	},
	models.CategoryTrendContinuation: {
		models.SetupPullback,
		models.SetupTrendResumption,
		models.SetupBasingBreak,
	},
	models.CategoryCompressionReversion: {
		models.SetupCompression,
		models.SetupMeanReversion,
		models.SetupOversoldBounce,
	},
}

// categoryOrder fixes the presentation order of brief sections.
var categoryOrder = []string{
	models.CategoryMomentumBreakout,
	models.CategoryTrendContinuation,
	models.CategoryCompressionReversion,
}

// CategoryForSetup returns the category a setup type belongs to.
func CategoryForSetup(setupType string) (string, bool) {
	for category, types := range categorySetupTypes {
		for _, t := range types {
			if t == setupType {
				return category, true
			}
		}
	}
	return "", false
}

// orNeutral unwraps an enrichment score, substituting the neutral default
// for a missed join.
func orNeutral(v *float64, neutral float64) float64 {
	if v == nil {
		return neutral
	}
	return *v
}

// compositeScore blends direction, purity, and 1-day return with weights
// specific to the category's character: momentum chases strength, trend
// rewards purity, compression fades the recent move.
func compositeScore(category string, s *models.SetupSignal) float64 {
	dir := orNeutral(s.AIDirection, neutralDirection)
	purity := orNeutral(s.AIPurity, neutralPurity)

	switch category {
	case models.CategoryMomentumBreakout:
		return dir*0.45 + purity*0.30 + s.Return1D*100*0.25
	case models.CategoryTrendContinuation:
		return dir*0.35 + purity*0.45 + s.Return1D*100*0.20
	default: // compression_reversion: a negative recent return is the setup
		return dir*0.35 + purity*0.35 - s.Return1D*100*0.30
	}
}

// bucketAndScore assigns each candidate to its category, computes the
// per-category composite, and sorts each bucket descending by composite.
func bucketAndScore(candidates []*models.SetupSignal) []*models.CategoryBucket {
	buckets := make(map[string]*models.CategoryBucket, len(categoryOrder))
	for _, category := range categoryOrder {
		buckets[category] = &models.CategoryBucket{
			Category:   category,
			SetupTypes: categorySetupTypes[category],
		}
	}

	for _, c := range candidates {
		category, ok := CategoryForSetup(c.SetupType)
		if !ok {
			continue
		}
		c.CompositeScore = compositeScore(category, c)
		buckets[category].Candidates = append(buckets[category].Candidates, c)
	}

	out := make([]*models.CategoryBucket, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		b := buckets[category]
		sort.SliceStable(b.Candidates, func(i, j int) bool {
			return b.Candidates[i].CompositeScore > b.Candidates[j].CompositeScore
		})
		out = append(out, b)
	}
	return out
}
