package scoring

import (
	"fmt"

	"github.com/bobmcallan/fvs/internal/models"
)

// Classification band thresholds. The asymmetric banding (15% growth
// threshold against a 10% value threshold, leaving a band that falls to
// hybrid unless the value conditions trigger) is a deliberate policy choice.
const (
	growthCAGRThreshold = 0.15
	valueCAGRThreshold  = 0.10
	valuePEMax          = 20.0
)

// Classify assigns a scoring regime from the 3-year revenue CAGR, trailing
// P/E, and free cash flow. Rules apply in order; the first match wins:
//
//  1. nil CAGR            → hybrid ("insufficient history")
//  2. CAGR > 15%          → growth
//  3. CAGR < 10% and either 0 < P/E < 20, or P/E nil-or-negative with
//     positive free cash flow → value
//  4. otherwise           → hybrid
func Classify(m *models.QuantitativeMetrics) (models.Classification, string) {
	if m.RevenueCAGR3Y == nil {
		return models.ClassificationHybrid, "insufficient history to compute revenue CAGR"
	}
	cagr := *m.RevenueCAGR3Y

	if cagr > growthCAGRThreshold {
		return models.ClassificationGrowth, fmt.Sprintf("revenue CAGR %.1f%% exceeds %.0f%% growth threshold", cagr*100, growthCAGRThreshold*100)
	}

	if cagr < valueCAGRThreshold {
		if m.PE != nil && *m.PE > 0 && *m.PE < valuePEMax {
			return models.ClassificationValue, fmt.Sprintf("revenue CAGR %.1f%% below %.0f%% with P/E %.1f inside value band", cagr*100, valueCAGRThreshold*100, *m.PE)
		}
		if (m.PE == nil || *m.PE <= 0) && m.FCFTTM != nil && *m.FCFTTM > 0 {
			return models.ClassificationValue, fmt.Sprintf("revenue CAGR %.1f%% below %.0f%% with positive free cash flow and no meaningful P/E", cagr*100, valueCAGRThreshold*100)
		}
	}

	return models.ClassificationHybrid, fmt.Sprintf("revenue CAGR %.1f%% between value and growth bands", cagr*100)
}
