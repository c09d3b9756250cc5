package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Classification is the scoring regime assigned to an asset.
// It is a closed enum: the scoring dispatch switches exhaustively over it,
// so a new regime forces every call site to be revisited.
type Classification int

const (
	ClassificationGrowth Classification = iota
	ClassificationValue
	ClassificationHybrid
)

// String returns the wire label for the classification.
func (c Classification) String() string {
	switch c {
	case ClassificationGrowth:
		return "growth"
	case ClassificationValue:
		return "value"
	case ClassificationHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the classification as its string label.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a classification string label.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "growth":
		*c = ClassificationGrowth
	case "value":
		*c = ClassificationValue
	case "hybrid":
		*c = ClassificationHybrid
	default:
		return fmt.Errorf("unknown classification %q", s)
	}
	return nil
}

// ComponentScore is one normalized sub-metric within a composite engine.
type ComponentScore struct {
	Name       string   `json:"name"`
	Value      *float64 `json:"value,omitempty"` // raw input; nil when not computable
	Normalized float64  `json:"normalized"`      // 0-100 after threshold banding
	Weight     float64  `json:"weight"`
}

// EngineBreakdown retains the per-component detail of one composite engine run.
type EngineBreakdown struct {
	Engine     string           `json:"engine"` // "growth" or "value"
	Score      float64          `json:"score"`  // 0-100 weighted sum
	Components []ComponentScore `json:"components"`
}

// PillarScores are the four validated LLM pillar sub-scores, 0-100 each.
type PillarScores struct {
	Profitability float64 `json:"profitability"`
	Solvency      float64 `json:"solvency"`
	Growth        float64 `json:"growth"`
	Quality       float64 `json:"quality"`
}

// TokenUsage accounts for LLM token consumption across a pipeline run.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage sample.
func (t *TokenUsage) Add(prompt, completion int) {
	t.PromptTokens += prompt
	t.CompletionTokens += completion
	t.TotalTokens += prompt + completion
}

// ScoringResult is the persisted output of one scoring run,
// keyed by (Symbol, AsOfDate). Regenerating a date overwrites.
type ScoringResult struct {
	Symbol   string `json:"symbol" badgerhold:"index"`
	AsOfDate string `json:"as_of_date"` // YYYY-MM-DD
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`

	Classification       Classification `json:"classification"`
	ClassificationReason string         `json:"classification_reason,omitempty"`

	// Quantitative composite (engine output, 0-100)
	CompositeScore float64           `json:"composite_score"`
	Breakdown      []EngineBreakdown `json:"breakdown,omitempty"`

	// LLM qualitative verdict (validated and cap-clamped)
	Pillars          PillarScores `json:"pillars"`
	FinalScore       float64      `json:"final_score"` // 35/25/20/20 weighted pillar sum
	ConfidenceLevel  string       `json:"confidence_level,omitempty"`
	DataQualityScore float64      `json:"data_quality_score"`
	Reasoning        string       `json:"reasoning,omitempty"`
	Strengths        []string     `json:"strengths,omitempty"`
	Risks            []string     `json:"risks,omitempty"`

	Metrics     *QuantitativeMetrics `json:"metrics,omitempty"`
	TokenUsage  TokenUsage           `json:"token_usage"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Key returns the storage key for the (symbol, date) pair.
func (r *ScoringResult) Key() string {
	return r.Symbol + ":" + r.AsOfDate
}

// SymbolError pairs a symbol with the error that failed it in a batch run.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}
