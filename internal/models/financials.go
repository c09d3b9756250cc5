// Package models defines the domain types shared across the FVS service.
package models

import "time"

// CompanyProfile holds descriptive company data from the vendor API.
type CompanyProfile struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	Exchange  string  `json:"exchange"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Beta      float64 `json:"beta"`
	Currency  string  `json:"currency"`
}

// IncomeStatement holds one reported income-statement period.
// Most-recent-first ordering is preserved from the vendor response.
type IncomeStatement struct {
	Date             string  `json:"date"` // period end, YYYY-MM-DD
	Period           string  `json:"period"`
	Revenue          float64 `json:"revenue"`
	GrossProfit      float64 `json:"gross_profit"`
	OperatingIncome  float64 `json:"operating_income"`
	EBITDA           float64 `json:"ebitda"`
	NetIncome        float64 `json:"net_income"`
	InterestExpense  float64 `json:"interest_expense"`
	IncomeTaxExpense float64 `json:"income_tax_expense"`
	SharesOut        float64 `json:"shares_out"`
	EPS              float64 `json:"eps"`
}

// BalanceSheet holds one reported balance-sheet period.
type BalanceSheet struct {
	Date               string  `json:"date"`
	TotalAssets        float64 `json:"total_assets"`
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	TotalDebt          float64 `json:"total_debt"`
	LongTermDebt       float64 `json:"long_term_debt"`
	Cash               float64 `json:"cash"`
	Inventory          float64 `json:"inventory"`
	Receivables        float64 `json:"receivables"`
	RetainedEarnings   float64 `json:"retained_earnings"`
	ShareholderEquity  float64 `json:"shareholder_equity"`
}

// CashFlowStatement holds one reported cash-flow period.
type CashFlowStatement struct {
	Date              string  `json:"date"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	CapEx             float64 `json:"capex"`
	FreeCashFlow      float64 `json:"free_cash_flow"`
	DividendsPaid     float64 `json:"dividends_paid"`
}

// RatiosTTM holds trailing-twelve-month ratios from the vendor API.
// Pointer fields distinguish "not reported" from a true zero; the
// derivation layer must never coerce a missing ratio to 0.
type RatiosTTM struct {
	PE               *float64 `json:"pe,omitempty"`
	PEG              *float64 `json:"peg,omitempty"`
	CurrentRatio     *float64 `json:"current_ratio,omitempty"`
	QuickRatio       *float64 `json:"quick_ratio,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	DividendYield    *float64 `json:"dividend_yield,omitempty"`
	GrossMargin      *float64 `json:"gross_margin,omitempty"`
	OperatingMargin  *float64 `json:"operating_margin,omitempty"`
	NetMargin        *float64 `json:"net_margin,omitempty"`
	ROE              *float64 `json:"roe,omitempty"`
	ROA              *float64 `json:"roa,omitempty"`
	ROIC             *float64 `json:"roic,omitempty"`
	InterestCoverage *float64 `json:"interest_coverage,omitempty"`
	FCFYield         *float64 `json:"fcf_yield,omitempty"`
	AssetTurnover    *float64 `json:"asset_turnover,omitempty"`
	PEHistoricalAvg  *float64 `json:"pe_historical_avg,omitempty"`
}

// RawFinancials aggregates all fetched statement data for one symbol.
// Any section may be nil when the corresponding vendor fetch failed;
// derivation treats dependent metrics as not computable.
type RawFinancials struct {
	Symbol          string              `json:"symbol"`
	Profile         *CompanyProfile     `json:"profile,omitempty"`
	AnnualIncome    []IncomeStatement   `json:"annual_income,omitempty"`    // most recent first
	QuarterlyIncome []IncomeStatement   `json:"quarterly_income,omitempty"` // most recent first
	Balance         []BalanceSheet      `json:"balance,omitempty"`          // most recent first
	CashFlow        []CashFlowStatement `json:"cash_flow,omitempty"`        // most recent first
	Ratios          *RatiosTTM          `json:"ratios,omitempty"`
	FetchedAt       time.Time           `json:"fetched_at"`
}
