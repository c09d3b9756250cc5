// Package fundamentals derives ratios, growth rates, and quality scores
// from raw financial-statement data. Everything here is pure: no I/O, and
// missing inputs yield nil rather than errors; real filings chronically
// omit fields, and callers treat nil as "metric not computable".
package fundamentals

import (
	"math"

	"github.com/bobmcallan/fvs/internal/models"
)

// SafeDivide returns num/den, or nil when the denominator is nil or exactly
// zero, or the numerator is nil. Nil means "not computable"; it is never a
// stand-in for zero.
func SafeDivide(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// Ratio is SafeDivide over plain values; a zero denominator yields nil.
func Ratio(num, den float64) *float64 {
	return SafeDivide(&num, &den)
}

// CAGR computes the compound annual growth rate over a most-recent-first
// history: values[0] is the latest period, values[len-1] the oldest.
// The effective period count n = min(years, len(values)-1). Returns nil
// with fewer than 2 data points or when either endpoint is non-positive
// (fractional exponents of negative bases are undefined).
func CAGR(values []float64, years int) *float64 {
	if len(values) < 2 || years < 1 {
		return nil
	}
	n := years
	if n > len(values)-1 {
		n = len(values) - 1
	}
	end := values[0]
	start := values[n]
	if start <= 0 || end <= 0 {
		return nil
	}
	v := math.Pow(end/start, 1.0/float64(n)) - 1.0
	return &v
}

// YoYGrowth computes the latest year-over-year growth rate from a
// most-recent-first history. Nil when history is short or the prior
// period is non-positive.
func YoYGrowth(values []float64) *float64 {
	if len(values) < 2 || values[1] <= 0 {
		return nil
	}
	v := (values[0] - values[1]) / values[1]
	return &v
}

// AltmanZScore computes the classic five-ratio Z-Score:
// 1.2·A + 1.4·B + 3.3·C + 0.6·D + 1.0·E. Returns nil when total assets
// is zero or negative. A zero-liability D term contributes nothing rather
// than poisoning the whole score.
func AltmanZScore(workingCapital, retainedEarnings, ebit, marketCap, totalLiabilities, revenue, totalAssets float64) *float64 {
	if totalAssets <= 0 {
		return nil
	}
	a := workingCapital / totalAssets
	b := retainedEarnings / totalAssets
	c := ebit / totalAssets
	e := revenue / totalAssets

	d := 0.0
	if totalLiabilities > 0 {
		d = marketCap / totalLiabilities
	}

	v := 1.2*a + 1.4*b + 3.3*c + 0.6*d + 1.0*e
	return &v
}

// PeriodInputs holds the per-period values the Piotroski criteria compare.
type PeriodInputs struct {
	NetIncome     float64
	OperatingCF   float64
	ROA           float64 // fraction
	LeverageRatio float64 // long-term debt / total assets
	CurrentRatio  float64
	SharesOut     float64
	GrossMargin   float64 // fraction
	AssetTurnover float64
}

// Piotroski evaluates the nine F-Score criteria for the current period
// against the prior period. The score is the count of true components;
// the boolean vector is preserved for transparency.
func Piotroski(cur, prior PeriodInputs) *models.PiotroskiResult {
	r := &models.PiotroskiResult{
		PositiveNetIncome:    cur.NetIncome > 0,
		PositiveOperatingCF:  cur.OperatingCF > 0,
		ImprovingROA:         cur.ROA > prior.ROA,
		CFExceedsNetIncome:   cur.OperatingCF > cur.NetIncome,
		DecreasingLeverage:   cur.LeverageRatio < prior.LeverageRatio,
		ImprovingLiquidity:   cur.CurrentRatio > prior.CurrentRatio,
		NoShareDilution:      cur.SharesOut <= prior.SharesOut,
		ImprovingGrossMargin: cur.GrossMargin > prior.GrossMargin,
		ImprovingTurnover:    cur.AssetTurnover > prior.AssetTurnover,
	}
	for _, c := range r.Components() {
		if c {
			r.Score++
		}
	}
	return r
}

// RevenueAcceleration is the difference between the two most recent
// trailing year-over-year quarterly growth rates: positive means revenue
// growth is speeding up. quarterly is most-recent-first and assumed to be
// gap-free quarterly cadence; requires at least 6 quarters, nil otherwise.
func RevenueAcceleration(quarterly []float64) *float64 {
	if len(quarterly) < 6 {
		return nil
	}
	latest := Ratio(quarterly[0]-quarterly[4], quarterly[4])
	prior := Ratio(quarterly[1]-quarterly[5], quarterly[5])
	if latest == nil || prior == nil {
		return nil
	}
	v := *latest - *prior
	return &v
}

// AccrualRatio is (net income - operating cash flow) / total assets.
// High positive accruals are an earnings-quality warning.
func AccrualRatio(netIncome, operatingCF, totalAssets float64) *float64 {
	return Ratio(netIncome-operatingCF, totalAssets)
}

// MarginTrend is the change in gross margin between the newest and oldest
// annual periods, in margin points (fraction). Nil with fewer than 2 periods.
func MarginTrend(income []models.IncomeStatement) *float64 {
	if len(income) < 2 {
		return nil
	}
	newest := Ratio(income[0].GrossProfit, income[0].Revenue)
	oldest := Ratio(income[len(income)-1].GrossProfit, income[len(income)-1].Revenue)
	if newest == nil || oldest == nil {
		return nil
	}
	v := *newest - *oldest
	return &v
}
