package brief

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/models"
)

// RegimeKey is the system-settings key holding the macro regime label.
const RegimeKey = "macro_regime"

// Service implements BriefService.
type Service struct {
	storage interfaces.StorageManager
	gemini  interfaces.GeminiClient
	logger  *common.Logger
}

// NewService creates a new brief service
func NewService(storage interfaces.StorageManager, gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		gemini:  gemini,
		logger:  logger,
	}
}

// Generate produces the daily brief for a date. An existing brief for the
// date is returned as-is unless opts.Force; regeneration upserts on the
// date key, last write wins.
func (s *Service) Generate(ctx context.Context, opts interfaces.BriefOptions) (*models.DailyBrief, error) {
	date := opts.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}

	if !opts.Force {
		if existing, err := s.storage.BriefStorage().GetBrief(ctx, date); err == nil && existing != nil {
			s.logger.Debug().Str("date", date).Msg("Brief served from store")
			return existing, nil
		}
	}

	regime := s.macroRegime(ctx)

	brief := &models.DailyBrief{
		Date:        date,
		MacroRegime: regime,
		GeneratedAt: time.Now(),
	}

	// Stage 1: candidate generation with best-effort enrichment
	candidates := s.generateCandidates(ctx)

	// Stage 2: bucket by category and rank by composite
	buckets := bucketAndScore(candidates)

	// Stage 3: per-category AI re-ranking; failures degrade the category,
	// never the whole brief
	for _, bucket := range buckets {
		category := s.rerankCategory(ctx, bucket, regime, &brief.TokenUsage)
		brief.Categories = append(brief.Categories, category)
	}

	// Side computation: portfolio alerts from the brief date's signals,
	// not just the curated candidate pool
	positions, err := s.storage.PositionStorage().ListPositions(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Position lookup failed; skipping alerts")
	} else if len(positions) > 0 {
		todays, err := s.storage.SignalStorage().GetSignalsForDate(ctx, date)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Signal lookup failed; skipping alerts")
		} else {
			brief.Alerts = generateAlerts(todays, positions)
		}
	}

	brief.ActionItems = buildActionItems(brief)

	if err := s.storage.BriefStorage().SaveBrief(ctx, brief); err != nil {
		return nil, fmt.Errorf("failed to persist brief for %s: %w", date, err)
	}

	s.logger.Info().
		Str("date", date).
		Str("regime", regime).
		Int("candidates", len(candidates)).
		Int("total_tokens", brief.TokenUsage.TotalTokens).
		Msg("Daily brief generated")

	return brief, nil
}

// GetBrief returns the persisted brief for a date.
func (s *Service) GetBrief(ctx context.Context, date string) (*models.DailyBrief, error) {
	return s.storage.BriefStorage().GetBrief(ctx, date)
}

// LatestBrief returns the most recent persisted brief.
func (s *Service) LatestBrief(ctx context.Context) (*models.DailyBrief, error) {
	return s.storage.BriefStorage().GetLatestBrief(ctx)
}

// ListDates returns all dates with a persisted brief, newest first.
func (s *Service) ListDates(ctx context.Context) ([]string, error) {
	return s.storage.BriefStorage().ListBriefDates(ctx)
}

// macroRegime reads the regime label from system settings; missing means
// no regime filter applies.
func (s *Service) macroRegime(ctx context.Context) string {
	regime, err := s.storage.KeyValueStorage().Get(ctx, RegimeKey)
	if err != nil {
		return ""
	}
	return regime
}

// generateCandidates pulls the top signals per setup type from the last
// lookback window and enriches them. Missing enrichment falls back to
// neutral values rather than nil.
func (s *Service) generateCandidates(ctx context.Context) []*models.SetupSignal {
	since := time.Now().AddDate(0, 0, -signalLookbackDays)

	var candidates []*models.SetupSignal
	for _, setupType := range allSetupTypes() {
		signals, err := s.storage.SignalStorage().GetSignalsByType(ctx, setupType, since, candidatesPerSetup)
		if err != nil {
			s.logger.Warn().Str("setup_type", setupType).Err(err).Msg("Signal fetch failed")
			continue
		}
		for i := range signals {
			sig := signals[i]
			s.enrich(ctx, &sig)
			candidates = append(candidates, &sig)
		}
	}
	return candidates
}

// enrich fills neutral defaults for missing AI scores and joins the latest
// fundamental score. Only absent values get the neutral default; a scored
// zero (maximally bearish) is kept as-is.
func (s *Service) enrich(ctx context.Context, sig *models.SetupSignal) {
	if sig.AIDirection == nil {
		sig.AIDirection = models.Float(neutralDirection)
	}
	if sig.AIPurity == nil {
		sig.AIPurity = models.Float(neutralPurity)
	}
	if sig.AIConfidence == nil {
		sig.AIConfidence = models.Float(neutralConfidence)
	}

	if sig.FundamentalScore == nil {
		if score, err := s.storage.ScoreStorage().GetLatestScore(ctx, sig.Symbol); err == nil && score != nil {
			sig.FundamentalScore = models.Float(score.FinalScore)
			if sig.Sector == "" {
				sig.Sector = score.Sector
			}
		}
	}
}

// rerankCategory runs stage 3 for one bucket. An empty bucket or a
// suppressed category skips the LLM call entirely.
func (s *Service) rerankCategory(ctx context.Context, bucket *models.CategoryBucket, regime string, usage *models.TokenUsage) models.BriefCategory {
	out := models.BriefCategory{Category: bucket.Category}

	if bucket.Category == models.CategoryCompressionReversion && isBearish(regime) {
		out.Suppressed = true
		out.ThemeSummary = SuppressionMessage
		s.logger.Info().Str("category", bucket.Category).Str("regime", regime).Msg("Category suppressed by macro regime")
		return out
	}

	if len(bucket.Candidates) == 0 {
		out.ThemeSummary = "No qualifying candidates today."
		return out
	}

	pool := bucket.Candidates
	if len(pool) > rerankPoolSize {
		pool = pool[:rerankPoolSize]
	}
	pickCount := picksPerCategory
	if len(pool) < pickCount {
		pickCount = len(pool)
	}

	prompt := buildRerankPrompt(bucket.Category, regime, pool, pickCount)
	result, err := s.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		s.logger.Warn().Str("category", bucket.Category).Err(err).Msg("Re-ranking LLM call failed")
		out.ThemeSummary = "AI re-ranking unavailable; category omitted from today's brief."
		return out
	}
	usage.Add(result.PromptTokens, result.CompletionTokens)

	summary, picks, err := parseRerankVerdict(result.Text, pool, pickCount)
	if err != nil {
		s.logger.Warn().Str("category", bucket.Category).Err(err).Msg("Re-ranking verdict unparseable")
		out.ThemeSummary = "AI re-ranking unavailable; category omitted from today's brief."
		return out
	}

	out.ThemeSummary = summary
	out.Picks = picks
	return out
}

// isBearish reports whether the macro regime label indicates a bear market.
func isBearish(regime string) bool {
	return strings.Contains(strings.ToLower(regime), "bear")
}

// buildActionItems derives a prioritized to-do list from the brief.
func buildActionItems(brief *models.DailyBrief) []string {
	var items []string

	for _, alert := range brief.Alerts {
		if alert.Type == "add_on_opportunity" {
			items = append(items, fmt.Sprintf("Review add-on opportunity on held position %s", alert.Symbol))
		}
	}
	for _, category := range brief.Categories {
		for _, pick := range category.Picks {
			if pick.Conviction == "high" {
				items = append(items, fmt.Sprintf("Evaluate high-conviction %s setup on %s (entry %.2f, stop %.2f)", pick.SetupType, pick.Symbol, pick.Entry, pick.Stop))
			}
		}
	}
	return items
}

func allSetupTypes() []string {
	var types []string
	for _, category := range categoryOrder {
		types = append(types, categorySetupTypes[category]...)
	}
	return types
}

// Ensure Service implements BriefService
var _ interfaces.BriefService = (*Service)(nil)
