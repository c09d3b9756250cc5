// Package formula evaluates caller-supplied arithmetic expressions over a
// symbol's derived metrics. Expressions are compiled against a fixed
// variable environment; no function calls, no string execution, nothing
// outside the whitelisted metric names.
package formula

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/bobmcallan/fvs/internal/models"
)

// Vars builds the variable environment for one metric snapshot. Only
// computable metrics are exposed: a formula referencing a metric that is
// nil for this symbol fails compilation with the variable named, which is
// more honest than silently substituting a neutral value.
func Vars(m *models.QuantitativeMetrics) map[string]interface{} {
	env := make(map[string]interface{})

	put := func(name string, v *float64) {
		if v != nil {
			env[name] = *v
		}
	}

	put("roic", m.ROIC)
	put("gross_margin", m.GrossMargin)
	put("operating_margin", m.OperatingMargin)
	put("net_margin", m.NetMargin)
	put("roe", m.ROE)
	put("roa", m.ROA)
	put("asset_turnover", m.AssetTurnover)
	put("current_ratio", m.CurrentRatio)
	put("quick_ratio", m.QuickRatio)
	put("debt_to_equity", m.DebtToEquity)
	put("debt_to_assets", m.DebtToAssets)
	put("altman_z", m.AltmanZScore)
	put("interest_coverage", m.InterestCoverage)
	put("revenue_cagr_3y", m.RevenueCAGR3Y)
	put("ebitda_cagr_3y", m.EBITDACAGR3Y)
	put("fcf_cagr_3y", m.FCFCAGR3Y)
	put("revenue_growth_yoy", m.RevenueGrowthYoY)
	put("revenue_acceleration", m.RevenueAcceleration)
	put("accrual_ratio", m.AccrualRatio)
	put("fcf_to_net_income", m.FCFToNetIncome)
	put("pe", m.PE)
	put("pe_historical_avg", m.PEHistoricalAvg)
	put("peg", m.PEG)
	put("fcf_yield", m.FCFYield)
	put("dividend_yield", m.DividendYield)
	put("rule_of_40", m.RuleOf40)
	put("revenue_ttm", m.RevenueTTM)
	put("ebitda_ttm", m.EBITDATTM)
	put("net_income_ttm", m.NetIncomeTTM)
	put("fcf_ttm", m.FCFTTM)

	if m.Piotroski != nil {
		env["piotroski"] = float64(m.Piotroski.Score)
	}

	return env
}

// Evaluate compiles and runs an arithmetic formula against the snapshot's
// variable environment. The expression must reduce to a number.
func Evaluate(expression string, m *models.QuantitativeMetrics) (float64, error) {
	if expression == "" {
		return 0, fmt.Errorf("empty formula")
	}

	env := Vars(m)

	program, err := expr.Compile(expression, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return 0, fmt.Errorf("invalid formula: %w", err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("formula evaluation failed: %w", err)
	}

	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("formula did not produce a number")
	}
	return v, nil
}
