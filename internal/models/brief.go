package models

import "time"

// Setup types recognized by the daily brief candidate generator.
// Each belongs to exactly one category; the partition is fixed.
const (
	SetupBreakout         = "breakout"
	SetupGapContinuation  = "gap_continuation"
	SetupHighTightFlag    = "high_tight_flag"
	SetupPullback         = "pullback"
	SetupTrendResumption  = "trend_resumption"
	SetupBasingBreak      = "basing_break"
	SetupCompression      = "compression"
	SetupMeanReversion    = "mean_reversion"
	SetupOversoldBounce   = "oversold_bounce"
)

// Category names for the brief's thematic buckets.
const (
	CategoryMomentumBreakout     = "momentum_breakout"
	CategoryTrendContinuation    = "trend_continuation"
	CategoryCompressionReversion = "compression_reversion"
)

// SetupSignal is a trading-setup candidate for the daily brief.
// Fetched from the signal store, enriched once (AI scores, return,
// volume, fundamental score), scored, then treated as read-only.
type SetupSignal struct {
	ID         string    `json:"id" badgerhold:"key"`
	Symbol     string    `json:"symbol" badgerhold:"index"`
	Sector     string    `json:"sector,omitempty"`
	SetupType  string    `json:"setup_type" badgerhold:"index"`
	AssetClass string    `json:"asset_class,omitempty"` // "equity" unless stated
	Entry      float64   `json:"entry"`
	Stop       float64   `json:"stop"`
	Target     float64   `json:"target"`
	RiskReward float64   `json:"risk_reward"`
	SignalDate time.Time `json:"signal_date"`

	// Enrichment, populated in brief stage 1. Nil means the join missed;
	// enrichment fills neutral defaults (direction/purity 50, confidence
	// 0.5). A genuinely scored zero is preserved, never reset to neutral.
	AIDirection      *float64 `json:"ai_direction,omitempty"`
	AIPurity         *float64 `json:"ai_purity,omitempty"`
	AIConfidence     *float64 `json:"ai_confidence,omitempty"`
	Return1D         float64  `json:"return_1d"` // fraction
	DollarVolume     float64  `json:"dollar_volume"`
	FundamentalScore *float64 `json:"fundamental_score,omitempty"`

	// Per-category composite, set in brief stage 2.
	CompositeScore float64 `json:"composite_score"`
}

// BriefPick is one curated selection within a brief category.
type BriefPick struct {
	Symbol     string  `json:"symbol"`
	SetupType  string  `json:"setup_type"`
	Sector     string  `json:"sector,omitempty"`
	Conviction string  `json:"conviction"` // high | medium | low
	Rationale  string  `json:"rationale"`
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop"`
	Target     float64 `json:"target"`
	RiskReward float64 `json:"risk_reward"`
}

// CategoryBucket groups candidates for one theme during brief generation.
// Created fresh per run; only the final picks are persisted with the brief.
type CategoryBucket struct {
	Category   string         `json:"category"`
	SetupTypes []string       `json:"setup_types"`
	Candidates []*SetupSignal `json:"-"`
	Picks      []BriefPick    `json:"picks"`
	Summary    string         `json:"summary"`
	Suppressed bool           `json:"suppressed"`
}

// BriefCategory is the persisted per-category section of a brief.
type BriefCategory struct {
	Category     string      `json:"category"`
	ThemeSummary string      `json:"theme_summary"`
	Picks        []BriefPick `json:"picks"`
	Suppressed   bool        `json:"suppressed"`
}

// PortfolioAlert flags a signal that intersects held positions or sectors.
type PortfolioAlert struct {
	Type    string `json:"type"` // add_on_opportunity | sector_concentration
	Symbol  string `json:"symbol"`
	Sector  string `json:"sector,omitempty"`
	Message string `json:"message"`
}

// Position is a held portfolio position, used only for alert generation.
type Position struct {
	Symbol   string  `json:"symbol" badgerhold:"key"`
	Sector   string  `json:"sector,omitempty"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// DailyBrief is the top-level curated output, one per calendar date.
// Regenerating a date upserts; last write wins.
type DailyBrief struct {
	Date        string           `json:"date" badgerhold:"key"` // YYYY-MM-DD
	MacroRegime string           `json:"macro_regime"`
	Categories  []BriefCategory  `json:"categories"`
	Alerts      []PortfolioAlert `json:"alerts,omitempty"`
	ActionItems []string         `json:"action_items,omitempty"`
	TokenUsage  TokenUsage       `json:"token_usage"`
	GeneratedAt time.Time        `json:"generated_at"`
}
