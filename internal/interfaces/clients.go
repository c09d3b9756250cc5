// Package interfaces defines the service, client, and storage contracts for FVS.
package interfaces

import (
	"context"

	"github.com/bobmcallan/fvs/internal/models"
)

// FMPClient fetches financial-statement data from Financial Modeling Prep.
// Implementations tolerate partially missing data: a failed section returns
// an error for that call only, and callers degrade to nil for that section.
type FMPClient interface {
	GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	GetIncomeStatements(ctx context.Context, symbol string, quarterly bool, limit int) ([]models.IncomeStatement, error)
	GetBalanceSheets(ctx context.Context, symbol string, limit int) ([]models.BalanceSheet, error)
	GetCashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowStatement, error)
	GetRatiosTTM(ctx context.Context, symbol string) (*models.RatiosTTM, error)
}

// LLMResult is a raw model response plus token accounting.
type LLMResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// GeminiClient generates structured LLM output.
type GeminiClient interface {
	// GenerateJSON sends the prompt expecting a JSON object back.
	// The returned text may still carry markdown fences; callers strip them.
	GenerateJSON(ctx context.Context, prompt string) (*LLMResult, error)
	Model() string
}
