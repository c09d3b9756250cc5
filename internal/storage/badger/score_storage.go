package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/models"
)

type scoreStorage struct {
	store  *Store
	logger *common.Logger
}

// NewScoreStorage creates a new ScoreStorage backed by BadgerHold.
func NewScoreStorage(store *Store, logger *common.Logger) *scoreStorage {
	return &scoreStorage{store: store, logger: logger}
}

func (s *scoreStorage) GetScore(_ context.Context, symbol, date string) (*models.ScoringResult, error) {
	key := symbol + ":" + date

	var result models.ScoringResult
	err := s.store.db.Get(key, &result)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no score for '%s' on %s", symbol, date)
		}
		return nil, fmt.Errorf("failed to get score '%s': %w", key, err)
	}
	return &result, nil
}

func (s *scoreStorage) GetLatestScore(_ context.Context, symbol string) (*models.ScoringResult, error) {
	var results []models.ScoringResult
	if err := s.store.db.Find(&results, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")); err != nil {
		return nil, fmt.Errorf("failed to query scores for '%s': %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no scores for '%s'", symbol)
	}

	latest := &results[0]
	for i := range results[1:] {
		if results[i+1].AsOfDate > latest.AsOfDate {
			latest = &results[i+1]
		}
	}
	return latest, nil
}

func (s *scoreStorage) SaveScore(_ context.Context, result *models.ScoringResult) error {
	if result.Symbol == "" || result.AsOfDate == "" {
		return fmt.Errorf("score requires symbol and as-of date")
	}
	if err := s.store.db.Upsert(result.Key(), result); err != nil {
		return fmt.Errorf("failed to save score '%s': %w", result.Key(), err)
	}
	s.logger.Debug().Str("symbol", result.Symbol).Str("date", result.AsOfDate).Msg("Score saved")
	return nil
}
