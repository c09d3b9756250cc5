package models

// Float returns a pointer to v. Convenience for building metric snapshots.
func Float(v float64) *float64 {
	return &v
}

// PiotroskiResult carries the F-Score plus its nine boolean components.
// The component vector is part of the public output; UI and LLM layers
// need the individual criteria, not just the count.
type PiotroskiResult struct {
	Score int `json:"score"` // 0-9, count of true components

	PositiveNetIncome    bool `json:"positive_net_income"`
	PositiveOperatingCF  bool `json:"positive_operating_cf"`
	ImprovingROA         bool `json:"improving_roa"`
	CFExceedsNetIncome   bool `json:"cf_exceeds_net_income"`
	DecreasingLeverage   bool `json:"decreasing_leverage"`
	ImprovingLiquidity   bool `json:"improving_liquidity"`
	NoShareDilution      bool `json:"no_share_dilution"`
	ImprovingGrossMargin bool `json:"improving_gross_margin"`
	ImprovingTurnover    bool `json:"improving_turnover"`
}

// Components returns the nine criteria in rubric order.
func (p PiotroskiResult) Components() []bool {
	return []bool{
		p.PositiveNetIncome,
		p.PositiveOperatingCF,
		p.ImprovingROA,
		p.CFExceedsNetIncome,
		p.DecreasingLeverage,
		p.ImprovingLiquidity,
		p.NoShareDilution,
		p.ImprovingGrossMargin,
		p.ImprovingTurnover,
	}
}

// QuantitativeMetrics is one scoring run's derived-metric snapshot.
// Every ratio field is a pointer: nil means "not computable from the
// available filings", which downstream scoring maps to a neutral 50,
// never to zero. Built fresh per request and not mutated afterwards.
type QuantitativeMetrics struct {
	Symbol string `json:"symbol"`

	// Profitability pillar
	ROIC            *float64 `json:"roic,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"` // fraction, 0.55 = 55%
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	ROE             *float64 `json:"roe,omitempty"`
	ROA             *float64 `json:"roa,omitempty"`
	AssetTurnover   *float64 `json:"asset_turnover,omitempty"`

	// Solvency pillar
	CurrentRatio     *float64 `json:"current_ratio,omitempty"`
	QuickRatio       *float64 `json:"quick_ratio,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets     *float64 `json:"debt_to_assets,omitempty"`
	AltmanZScore     *float64 `json:"altman_z_score,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`

	// Growth pillar
	RevenueCAGR3Y       *float64 `json:"revenue_cagr_3y,omitempty"` // fraction, 0.15 = 15%
	EBITDACAGR3Y        *float64 `json:"ebitda_cagr_3y,omitempty"`
	FCFCAGR3Y           *float64 `json:"fcf_cagr_3y,omitempty"`
	RevenueGrowthYoY    *float64 `json:"revenue_growth_yoy,omitempty"`
	RevenueAcceleration *float64 `json:"revenue_acceleration,omitempty"` // QoQ YoY delta

	// Quality pillar
	AccrualRatio   *float64         `json:"accrual_ratio,omitempty"`
	FCFToNetIncome *float64         `json:"fcf_to_net_income,omitempty"`
	Piotroski      *PiotroskiResult `json:"piotroski,omitempty"`

	// Valuation inputs for the composite engines
	PE              *float64 `json:"pe,omitempty"`
	PEHistoricalAvg *float64 `json:"pe_historical_avg,omitempty"`
	PEG             *float64 `json:"peg,omitempty"`
	FCFYield        *float64 `json:"fcf_yield,omitempty"` // fraction
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	RuleOf40        *float64 `json:"rule_of_40,omitempty"` // percentage points

	// Raw TTM values
	RevenueTTM   *float64 `json:"revenue_ttm,omitempty"`
	EBITDATTM    *float64 `json:"ebitda_ttm,omitempty"`
	NetIncomeTTM *float64 `json:"net_income_ttm,omitempty"`
	FCFTTM       *float64 `json:"fcf_ttm,omitempty"`

	// Multi-year history, most recent first (annual periods)
	RevenueHistory   []float64 `json:"revenue_history,omitempty"`
	EBITDAHistory    []float64 `json:"ebitda_history,omitempty"`
	NetIncomeHistory []float64 `json:"net_income_history,omitempty"`
	FCFHistory       []float64 `json:"fcf_history,omitempty"`

	// Quarterly revenue, most recent first, for acceleration
	QuarterlyRevenue []float64 `json:"quarterly_revenue,omitempty"`
}
