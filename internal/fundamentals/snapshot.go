package fundamentals

import (
	"github.com/bobmcallan/fvs/internal/models"
)

// Derive builds a full metric snapshot from fetched raw financials.
// Vendor-reported TTM ratios are preferred where present; everything else
// is derived from the statements. Any section of raw may be nil.
func Derive(raw *models.RawFinancials) *models.QuantitativeMetrics {
	m := &models.QuantitativeMetrics{Symbol: raw.Symbol}

	applyRatios(m, raw.Ratios)
	applyIncome(m, raw)
	applyBalance(m, raw)
	applyCashFlow(m, raw)
	applyGrowth(m, raw)
	applyQuality(m, raw)

	return m
}

// applyRatios copies vendor TTM ratios into the snapshot.
func applyRatios(m *models.QuantitativeMetrics, r *models.RatiosTTM) {
	if r == nil {
		return
	}
	m.ROIC = r.ROIC
	m.ROE = r.ROE
	m.ROA = r.ROA
	m.GrossMargin = r.GrossMargin
	m.OperatingMargin = r.OperatingMargin
	m.NetMargin = r.NetMargin
	m.AssetTurnover = r.AssetTurnover
	m.CurrentRatio = r.CurrentRatio
	m.QuickRatio = r.QuickRatio
	m.DebtToEquity = r.DebtToEquity
	m.InterestCoverage = r.InterestCoverage
	m.PE = r.PE
	m.PEG = r.PEG
	m.PEHistoricalAvg = r.PEHistoricalAvg
	m.DividendYield = r.DividendYield
	m.FCFYield = r.FCFYield
}

func applyIncome(m *models.QuantitativeMetrics, raw *models.RawFinancials) {
	annual := raw.AnnualIncome
	if len(annual) == 0 {
		return
	}

	latest := annual[0]
	m.RevenueTTM = models.Float(latest.Revenue)
	m.EBITDATTM = models.Float(latest.EBITDA)
	m.NetIncomeTTM = models.Float(latest.NetIncome)

	for _, p := range annual {
		m.RevenueHistory = append(m.RevenueHistory, p.Revenue)
		m.EBITDAHistory = append(m.EBITDAHistory, p.EBITDA)
		m.NetIncomeHistory = append(m.NetIncomeHistory, p.NetIncome)
	}

	// Margins derived from statements when the ratio feed was missing
	if m.GrossMargin == nil {
		m.GrossMargin = Ratio(latest.GrossProfit, latest.Revenue)
	}
	if m.OperatingMargin == nil {
		m.OperatingMargin = Ratio(latest.OperatingIncome, latest.Revenue)
	}
	if m.NetMargin == nil {
		m.NetMargin = Ratio(latest.NetIncome, latest.Revenue)
	}
	if m.InterestCoverage == nil && latest.InterestExpense != 0 {
		m.InterestCoverage = Ratio(latest.OperatingIncome, latest.InterestExpense)
	}

	for _, q := range raw.QuarterlyIncome {
		m.QuarterlyRevenue = append(m.QuarterlyRevenue, q.Revenue)
	}
}

func applyBalance(m *models.QuantitativeMetrics, raw *models.RawFinancials) {
	if len(raw.Balance) == 0 {
		return
	}
	bal := raw.Balance[0]

	if m.CurrentRatio == nil {
		m.CurrentRatio = Ratio(bal.CurrentAssets, bal.CurrentLiabilities)
	}
	if m.QuickRatio == nil {
		m.QuickRatio = Ratio(bal.CurrentAssets-bal.Inventory, bal.CurrentLiabilities)
	}
	if m.DebtToEquity == nil {
		m.DebtToEquity = Ratio(bal.TotalDebt, bal.ShareholderEquity)
	}
	m.DebtToAssets = Ratio(bal.TotalDebt, bal.TotalAssets)

	if m.ROE == nil && m.NetIncomeTTM != nil {
		m.ROE = Ratio(*m.NetIncomeTTM, bal.ShareholderEquity)
	}
	if m.ROA == nil && m.NetIncomeTTM != nil {
		m.ROA = Ratio(*m.NetIncomeTTM, bal.TotalAssets)
	}
	if m.AssetTurnover == nil && m.RevenueTTM != nil {
		m.AssetTurnover = Ratio(*m.RevenueTTM, bal.TotalAssets)
	}

	// Altman Z needs income + profile alongside the balance sheet
	if len(raw.AnnualIncome) > 0 {
		inc := raw.AnnualIncome[0]
		marketCap := 0.0
		if raw.Profile != nil {
			marketCap = raw.Profile.MarketCap
		}
		m.AltmanZScore = AltmanZScore(
			bal.CurrentAssets-bal.CurrentLiabilities,
			bal.RetainedEarnings,
			inc.OperatingIncome,
			marketCap,
			bal.TotalLiabilities,
			inc.Revenue,
			bal.TotalAssets,
		)
	}
}

func applyCashFlow(m *models.QuantitativeMetrics, raw *models.RawFinancials) {
	if len(raw.CashFlow) == 0 {
		return
	}
	cf := raw.CashFlow[0]
	m.FCFTTM = models.Float(cf.FreeCashFlow)

	for _, p := range raw.CashFlow {
		m.FCFHistory = append(m.FCFHistory, p.FreeCashFlow)
	}

	if m.NetIncomeTTM != nil {
		m.FCFToNetIncome = Ratio(cf.FreeCashFlow, *m.NetIncomeTTM)
	}
	if len(raw.Balance) > 0 && m.NetIncomeTTM != nil {
		m.AccrualRatio = AccrualRatio(*m.NetIncomeTTM, cf.OperatingCashFlow, raw.Balance[0].TotalAssets)
	}
	if m.FCFYield == nil && raw.Profile != nil {
		m.FCFYield = Ratio(cf.FreeCashFlow, raw.Profile.MarketCap)
	}
}

func applyGrowth(m *models.QuantitativeMetrics, raw *models.RawFinancials) {
	m.RevenueCAGR3Y = CAGR(m.RevenueHistory, 3)
	m.EBITDACAGR3Y = CAGR(m.EBITDAHistory, 3)
	m.FCFCAGR3Y = CAGR(m.FCFHistory, 3)
	m.RevenueGrowthYoY = YoYGrowth(m.RevenueHistory)
	m.RevenueAcceleration = RevenueAcceleration(m.QuarterlyRevenue)

	// Rule of 40: revenue growth % plus FCF margin %
	if m.RevenueGrowthYoY != nil && m.FCFTTM != nil && m.RevenueTTM != nil {
		if fcfMargin := Ratio(*m.FCFTTM, *m.RevenueTTM); fcfMargin != nil {
			m.RuleOf40 = models.Float(*m.RevenueGrowthYoY*100 + *fcfMargin*100)
		}
	}
}

func applyQuality(m *models.QuantitativeMetrics, raw *models.RawFinancials) {
	// Piotroski needs two consecutive annual periods across all statements
	if len(raw.AnnualIncome) < 2 || len(raw.Balance) < 2 || len(raw.CashFlow) < 2 {
		return
	}
	m.Piotroski = Piotroski(
		periodInputs(raw.AnnualIncome[0], raw.Balance[0], raw.CashFlow[0]),
		periodInputs(raw.AnnualIncome[1], raw.Balance[1], raw.CashFlow[1]),
	)
}

func periodInputs(inc models.IncomeStatement, bal models.BalanceSheet, cf models.CashFlowStatement) PeriodInputs {
	in := PeriodInputs{
		NetIncome:   inc.NetIncome,
		OperatingCF: cf.OperatingCashFlow,
		SharesOut:   inc.SharesOut,
	}
	if v := Ratio(inc.NetIncome, bal.TotalAssets); v != nil {
		in.ROA = *v
	}
	if v := Ratio(bal.LongTermDebt, bal.TotalAssets); v != nil {
		in.LeverageRatio = *v
	}
	if v := Ratio(bal.CurrentAssets, bal.CurrentLiabilities); v != nil {
		in.CurrentRatio = *v
	}
	if v := Ratio(inc.GrossProfit, inc.Revenue); v != nil {
		in.GrossMargin = *v
	}
	if v := Ratio(inc.Revenue, bal.TotalAssets); v != nil {
		in.AssetTurnover = *v
	}
	return in
}
