// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the FMPClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetProfile retrieves the company profile for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	path := fmt.Sprintf("/profile/%s", symbol)

	var resp []profileResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "empty profile response", Endpoint: path}
	}

	p := resp[0]
	return &models.CompanyProfile{
		Symbol:    p.Symbol,
		Name:      p.CompanyName,
		Sector:    p.Sector,
		Industry:  p.Industry,
		Exchange:  p.Exchange,
		Price:     float64(p.Price),
		MarketCap: float64(p.MarketCap),
		Beta:      float64(p.Beta),
		Currency:  p.Currency,
	}, nil
}

type profileResponse struct {
	Symbol      string      `json:"symbol"`
	CompanyName string      `json:"companyName"`
	Sector      string      `json:"sector"`
	Industry    string      `json:"industry"`
	Exchange    string      `json:"exchangeShortName"`
	Price       flexFloat64 `json:"price"`
	MarketCap   flexFloat64 `json:"mktCap"`
	Beta        flexFloat64 `json:"beta"`
	Currency    string      `json:"currency"`
}

// GetIncomeStatements retrieves income statements, most recent first.
func (c *Client) GetIncomeStatements(ctx context.Context, symbol string, quarterly bool, limit int) ([]models.IncomeStatement, error) {
	path := fmt.Sprintf("/income-statement/%s", symbol)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if quarterly {
		params.Set("period", "quarter")
	}

	var resp []incomeResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	statements := make([]models.IncomeStatement, len(resp))
	for i, s := range resp {
		statements[i] = models.IncomeStatement{
			Date:             s.Date,
			Period:           s.Period,
			Revenue:          float64(s.Revenue),
			GrossProfit:      float64(s.GrossProfit),
			OperatingIncome:  float64(s.OperatingIncome),
			EBITDA:           float64(s.EBITDA),
			NetIncome:        float64(s.NetIncome),
			InterestExpense:  float64(s.InterestExpense),
			IncomeTaxExpense: float64(s.IncomeTaxExpense),
			SharesOut:        float64(s.SharesOut),
			EPS:              float64(s.EPS),
		}
	}
	return statements, nil
}

type incomeResponse struct {
	Date             string      `json:"date"`
	Period           string      `json:"period"`
	Revenue          flexFloat64 `json:"revenue"`
	GrossProfit      flexFloat64 `json:"grossProfit"`
	OperatingIncome  flexFloat64 `json:"operatingIncome"`
	EBITDA           flexFloat64 `json:"ebitda"`
	NetIncome        flexFloat64 `json:"netIncome"`
	InterestExpense  flexFloat64 `json:"interestExpense"`
	IncomeTaxExpense flexFloat64 `json:"incomeTaxExpense"`
	SharesOut        flexFloat64 `json:"weightedAverageShsOutDil"`
	EPS              flexFloat64 `json:"epsdiluted"`
}

// GetBalanceSheets retrieves annual balance sheets, most recent first.
func (c *Client) GetBalanceSheets(ctx context.Context, symbol string, limit int) ([]models.BalanceSheet, error) {
	path := fmt.Sprintf("/balance-sheet-statement/%s", symbol)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp []balanceResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	sheets := make([]models.BalanceSheet, len(resp))
	for i, s := range resp {
		sheets[i] = models.BalanceSheet{
			Date:               s.Date,
			TotalAssets:        float64(s.TotalAssets),
			CurrentAssets:      float64(s.TotalCurrentAssets),
			CurrentLiabilities: float64(s.TotalCurrentLiabilities),
			TotalLiabilities:   float64(s.TotalLiabilities),
			TotalDebt:          float64(s.TotalDebt),
			LongTermDebt:       float64(s.LongTermDebt),
			Cash:               float64(s.CashAndEquivalents),
			Inventory:          float64(s.Inventory),
			Receivables:        float64(s.NetReceivables),
			RetainedEarnings:   float64(s.RetainedEarnings),
			ShareholderEquity:  float64(s.TotalStockholdersEquity),
		}
	}
	return sheets, nil
}

type balanceResponse struct {
	Date                    string      `json:"date"`
	TotalAssets             flexFloat64 `json:"totalAssets"`
	TotalCurrentAssets      flexFloat64 `json:"totalCurrentAssets"`
	TotalCurrentLiabilities flexFloat64 `json:"totalCurrentLiabilities"`
	TotalLiabilities        flexFloat64 `json:"totalLiabilities"`
	TotalDebt               flexFloat64 `json:"totalDebt"`
	LongTermDebt            flexFloat64 `json:"longTermDebt"`
	CashAndEquivalents      flexFloat64 `json:"cashAndCashEquivalents"`
	Inventory               flexFloat64 `json:"inventory"`
	NetReceivables          flexFloat64 `json:"netReceivables"`
	RetainedEarnings        flexFloat64 `json:"retainedEarnings"`
	TotalStockholdersEquity flexFloat64 `json:"totalStockholdersEquity"`
}

// GetCashFlowStatements retrieves annual cash-flow statements, most recent first.
func (c *Client) GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowStatement, error) {
	path := fmt.Sprintf("/cash-flow-statement/%s", symbol)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var resp []cashFlowResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	statements := make([]models.CashFlowStatement, len(resp))
	for i, s := range resp {
		statements[i] = models.CashFlowStatement{
			Date:              s.Date,
			OperatingCashFlow: float64(s.OperatingCashFlow),
			CapEx:             float64(s.CapitalExpenditure),
			FreeCashFlow:      float64(s.FreeCashFlow),
			DividendsPaid:     float64(s.DividendsPaid),
		}
	}
	return statements, nil
}

type cashFlowResponse struct {
	Date               string      `json:"date"`
	OperatingCashFlow  flexFloat64 `json:"operatingCashFlow"`
	CapitalExpenditure flexFloat64 `json:"capitalExpenditure"`
	FreeCashFlow       flexFloat64 `json:"freeCashFlow"`
	DividendsPaid      flexFloat64 `json:"dividendsPaid"`
}

// GetRatiosTTM retrieves trailing-twelve-month ratios. Fields the vendor
// omits stay nil so the derivation layer can fall back to statement math.
func (c *Client) GetRatiosTTM(ctx context.Context, symbol string) (*models.RatiosTTM, error) {
	path := fmt.Sprintf("/ratios-ttm/%s", symbol)

	var resp []ratiosResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "empty ratios response", Endpoint: path}
	}

	r := resp[0]
	return &models.RatiosTTM{
		PE:               r.PE.ptr(),
		PEG:              r.PEG.ptr(),
		CurrentRatio:     r.CurrentRatio.ptr(),
		QuickRatio:       r.QuickRatio.ptr(),
		DebtToEquity:     r.DebtToEquity.ptr(),
		DividendYield:    r.DividendYield.ptr(),
		GrossMargin:      r.GrossMargin.ptr(),
		OperatingMargin:  r.OperatingMargin.ptr(),
		NetMargin:        r.NetMargin.ptr(),
		ROE:              r.ROE.ptr(),
		ROA:              r.ROA.ptr(),
		ROIC:             r.ROIC.ptr(),
		InterestCoverage: r.InterestCoverage.ptr(),
		FCFYield:         r.FCFYield.ptr(),
		AssetTurnover:    r.AssetTurnover.ptr(),
	}, nil
}

type ratiosResponse struct {
	PE               *flexFloat64 `json:"peRatioTTM"`
	PEG              *flexFloat64 `json:"pegRatioTTM"`
	CurrentRatio     *flexFloat64 `json:"currentRatioTTM"`
	QuickRatio       *flexFloat64 `json:"quickRatioTTM"`
	DebtToEquity     *flexFloat64 `json:"debtEquityRatioTTM"`
	DividendYield    *flexFloat64 `json:"dividendYielTTM"`
	GrossMargin      *flexFloat64 `json:"grossProfitMarginTTM"`
	OperatingMargin  *flexFloat64 `json:"operatingProfitMarginTTM"`
	NetMargin        *flexFloat64 `json:"netProfitMarginTTM"`
	ROE              *flexFloat64 `json:"returnOnEquityTTM"`
	ROA              *flexFloat64 `json:"returnOnAssetsTTM"`
	ROIC             *flexFloat64 `json:"returnOnCapitalEmployedTTM"`
	InterestCoverage *flexFloat64 `json:"interestCoverageTTM"`
	FCFYield         *flexFloat64 `json:"freeCashFlowYieldTTM"`
	AssetTurnover    *flexFloat64 `json:"assetTurnoverTTM"`
}

// Ensure Client implements FMPClient
var _ interfaces.FMPClient = (*Client)(nil)
