package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/formula"
	"github.com/bobmcallan/fvs/internal/fundamentals"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/models"
)

// Service implements ScoringService: fetch → derive → classify → composite
// score → LLM verdict → persist.
type Service struct {
	storage     interfaces.StorageManager
	fmp         interfaces.FMPClient
	gemini      interfaces.GeminiClient
	logger      *common.Logger
	cacheTTL    time.Duration
	batchLimit  int
	ingestDelay time.Duration

	// hot holds recently served results so repeat requests within the TTL
	// skip even the store read; the persisted row remains the truth.
	hot *gocache.Cache
}

// NewService creates a new scoring service
func NewService(
	storage interfaces.StorageManager,
	fmp interfaces.FMPClient,
	gemini interfaces.GeminiClient,
	cfg *common.ScoringConfig,
	logger *common.Logger,
) *Service {
	ttl := cfg.GetCacheTTL()
	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 10
	}
	return &Service{
		storage:     storage,
		fmp:         fmp,
		gemini:      gemini,
		logger:      logger,
		cacheTTL:    ttl,
		batchLimit:  batchLimit,
		ingestDelay: time.Duration(cfg.IngestDelayMS) * time.Millisecond,
		hot:         gocache.New(ttl, 2*ttl),
	}
}

// BatchLimit returns the maximum symbols accepted per batch request.
func (s *Service) BatchLimit() int {
	return s.batchLimit
}

// ScoreSymbol scores one symbol. A fresh persisted result for today is
// returned as-is unless opts.Refresh forces recomputation; a cache hit
// issues zero vendor or LLM calls.
func (s *Service) ScoreSymbol(ctx context.Context, symbol string, opts interfaces.ScoreOptions) (*models.ScoringResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	date := time.Now().Format("2006-01-02")
	cacheKey := symbol + ":" + date

	if !opts.Refresh {
		if cached, found := s.hot.Get(cacheKey); found {
			s.logger.Debug().Str("symbol", symbol).Msg("Score served from hot cache")
			return cached.(*models.ScoringResult), nil
		}
		if existing, err := s.storage.ScoreStorage().GetScore(ctx, symbol, date); err == nil && existing != nil {
			if common.IsFresh(existing.GeneratedAt, s.cacheTTL) {
				s.logger.Debug().Str("symbol", symbol).Msg("Score served from store")
				s.hot.Set(cacheKey, existing, gocache.DefaultExpiration)
				return existing, nil
			}
		}
	}

	raw, err := s.fetchFinancials(ctx, symbol)
	if err != nil {
		return nil, err
	}

	result, err := s.score(ctx, raw, date)
	if err != nil {
		return nil, err
	}

	if err := s.storage.ScoreStorage().SaveScore(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist score for %s: %w", symbol, err)
	}
	s.hot.Set(cacheKey, result, gocache.DefaultExpiration)

	s.logger.Info().
		Str("symbol", symbol).
		Str("classification", result.Classification.String()).
		Float64("final_score", result.FinalScore).
		Msg("Symbol scored")

	return result, nil
}

// ScoreBatch scores up to the configured limit of symbols. Per-symbol
// failures are isolated: partial success is the expected shape. A fixed
// delay between tickers keeps vendor rate limits honest.
func (s *Service) ScoreBatch(ctx context.Context, symbols []string) (*interfaces.BatchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}
	if len(symbols) > s.batchLimit {
		return nil, fmt.Errorf("too many symbols: %d exceeds limit of %d", len(symbols), s.batchLimit)
	}

	out := &interfaces.BatchResult{}
	for i, symbol := range symbols {
		if i > 0 && s.ingestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.ingestDelay):
			}
		}

		result, err := s.ScoreSymbol(ctx, symbol, interfaces.ScoreOptions{})
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Batch symbol failed")
			out.Errors = append(out.Errors, models.SymbolError{Symbol: symbol, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, result)
	}

	return out, nil
}

// LatestScore returns the most recent persisted score without recomputation.
func (s *Service) LatestScore(ctx context.Context, symbol string) (*models.ScoringResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return s.storage.ScoreStorage().GetLatestScore(ctx, symbol)
}

// CustomScore evaluates a caller-supplied formula over the symbol's
// derived metrics. The metrics come from the fetch/derive path (no LLM
// call), reusing today's persisted snapshot when fresh.
func (s *Service) CustomScore(ctx context.Context, symbol, expression string) (float64, *models.QuantitativeMetrics, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, nil, fmt.Errorf("empty symbol")
	}

	date := time.Now().Format("2006-01-02")
	var metrics *models.QuantitativeMetrics

	if existing, err := s.storage.ScoreStorage().GetScore(ctx, symbol, date); err == nil && existing != nil &&
		existing.Metrics != nil && common.IsFresh(existing.GeneratedAt, s.cacheTTL) {
		metrics = existing.Metrics
	} else {
		raw, err := s.fetchFinancials(ctx, symbol)
		if err != nil {
			return 0, nil, err
		}
		metrics = fundamentals.Derive(raw)
	}

	value, err := formula.Evaluate(expression, metrics)
	if err != nil {
		return 0, nil, err
	}
	return value, metrics, nil
}

// fetchFinancials fans out the five vendor fetches concurrently and fans
// back in once all resolve. A failed section is logged and left nil so
// derivation degrades instead of aborting, but a symbol with no profile
// and no statements at all is an error.
func (s *Service) fetchFinancials(ctx context.Context, symbol string) (*models.RawFinancials, error) {
	raw := &models.RawFinancials{Symbol: symbol, FetchedAt: time.Now()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.fmp.GetProfile(gctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Profile fetch failed")
			return nil
		}
		raw.Profile = profile
		return nil
	})
	g.Go(func() error {
		income, err := s.fmp.GetIncomeStatements(gctx, symbol, false, 5)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Annual income fetch failed")
			return nil
		}
		raw.AnnualIncome = income
		return nil
	})
	g.Go(func() error {
		quarterly, err := s.fmp.GetIncomeStatements(gctx, symbol, true, 8)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Quarterly income fetch failed")
			return nil
		}
		raw.QuarterlyIncome = quarterly
		return nil
	})
	g.Go(func() error {
		balance, err := s.fmp.GetBalanceSheets(gctx, symbol, 5)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Balance sheet fetch failed")
			return nil
		}
		raw.Balance = balance
		return nil
	})
	g.Go(func() error {
		cashFlow, err := s.fmp.GetCashFlowStatements(gctx, symbol, 5)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Cash flow fetch failed")
			return nil
		}
		raw.CashFlow = cashFlow
		return nil
	})
	g.Go(func() error {
		ratios, err := s.fmp.GetRatiosTTM(gctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Ratios fetch failed")
			return nil
		}
		raw.Ratios = ratios
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if raw.Profile == nil && len(raw.AnnualIncome) == 0 && len(raw.Balance) == 0 {
		return nil, fmt.Errorf("no financial data available for %s", symbol)
	}

	return raw, nil
}

// score runs the derive → classify → composite → LLM stages over fetched
// financials. An LLM failure aborts scoring for this symbol only.
func (s *Service) score(ctx context.Context, raw *models.RawFinancials, date string) (*models.ScoringResult, error) {
	metrics := fundamentals.Derive(raw)

	class, reason := Classify(metrics)
	composite, breakdown := CompositeScore(class, metrics)

	result := &models.ScoringResult{
		Symbol:               raw.Symbol,
		AsOfDate:             date,
		Classification:       class,
		ClassificationReason: reason,
		CompositeScore:       composite,
		Breakdown:            breakdown,
		Metrics:              metrics,
		GeneratedAt:          time.Now(),
	}
	if raw.Profile != nil {
		result.Sector = raw.Profile.Sector
		result.Industry = raw.Profile.Industry
	}

	prompt := BuildScoringPrompt(raw.Symbol, result.Sector, class, metrics)
	llmResult, err := s.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM scoring failed for %s: %w", raw.Symbol, err)
	}
	result.TokenUsage.Add(llmResult.PromptTokens, llmResult.CompletionTokens)

	pillars, final, verdict, err := ParseVerdict(llmResult.Text, metrics)
	if err != nil {
		return nil, fmt.Errorf("LLM verdict for %s: %w", raw.Symbol, err)
	}

	result.Pillars = *pillars
	result.FinalScore = final
	result.ConfidenceLevel = verdict.ConfidenceLevel
	result.DataQualityScore = clamp(verdict.DataQualityScore, 0, 100)
	result.Reasoning = verdict.Reasoning
	result.Strengths = verdict.Strengths
	result.Risks = verdict.Risks

	return result, nil
}

// Ensure Service implements ScoringService
var _ interfaces.ScoringService = (*Service)(nil)
