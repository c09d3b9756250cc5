package interfaces

import (
	"context"

	"github.com/bobmcallan/fvs/internal/models"
)

// ScoreOptions control a single scoring run.
type ScoreOptions struct {
	Refresh bool // bypass the cached result
}

// BatchResult is the outcome of a multi-symbol scoring request.
// Partial success is the expected shape, not an anomaly.
type BatchResult struct {
	Results []*models.ScoringResult  `json:"results"`
	Errors  []models.SymbolError     `json:"errors,omitempty"`
}

// ScoringService runs the fetch → derive → classify → score → LLM pipeline.
type ScoringService interface {
	ScoreSymbol(ctx context.Context, symbol string, opts ScoreOptions) (*models.ScoringResult, error)
	ScoreBatch(ctx context.Context, symbols []string) (*BatchResult, error)
	LatestScore(ctx context.Context, symbol string) (*models.ScoringResult, error)
	// CustomScore evaluates a caller-supplied arithmetic formula over the
	// symbol's derived metrics.
	CustomScore(ctx context.Context, symbol, formula string) (float64, *models.QuantitativeMetrics, error)
}

// BriefOptions control daily-brief generation.
type BriefOptions struct {
	Date  string // YYYY-MM-DD; empty means today
	Force bool   // regenerate even when a brief exists for the date
}

// BriefService generates and retrieves daily briefs.
type BriefService interface {
	Generate(ctx context.Context, opts BriefOptions) (*models.DailyBrief, error)
	GetBrief(ctx context.Context, date string) (*models.DailyBrief, error)
	LatestBrief(ctx context.Context) (*models.DailyBrief, error)
	ListDates(ctx context.Context) ([]string, error)
}
