package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/models"
)

type signalStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSignalStorage creates a new SignalStorage backed by BadgerHold.
func NewSignalStorage(store *Store, logger *common.Logger) *signalStorage {
	return &signalStorage{store: store, logger: logger}
}

func (s *signalStorage) SaveSignals(_ context.Context, signals []models.SetupSignal) error {
	for i := range signals {
		sig := &signals[i]
		if sig.ID == "" {
			sig.ID = uuid.New().String()
		}
		if err := s.store.db.Upsert(sig.ID, sig); err != nil {
			return fmt.Errorf("failed to save signal %s/%s: %w", sig.Symbol, sig.SetupType, err)
		}
	}
	s.logger.Debug().Int("count", len(signals)).Msg("Signals saved")
	return nil
}

func (s *signalStorage) GetSignalsByType(_ context.Context, setupType string, since time.Time, limit int) ([]models.SetupSignal, error) {
	var signals []models.SetupSignal
	query := badgerhold.Where("SetupType").Eq(setupType).Index("SetupType")
	if err := s.store.db.Find(&signals, query); err != nil {
		return nil, fmt.Errorf("failed to query signals of type '%s': %w", setupType, err)
	}

	filtered := signals[:0]
	for _, sig := range signals {
		if !sig.SignalDate.Before(since) {
			filtered = append(filtered, sig)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RiskReward > filtered[j].RiskReward
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (s *signalStorage) GetSignalsForDate(_ context.Context, date string) ([]models.SetupSignal, error) {
	var signals []models.SetupSignal
	if err := s.store.db.Find(&signals, nil); err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}

	filtered := signals[:0]
	for _, sig := range signals {
		if sig.SignalDate.Format("2006-01-02") == date {
			filtered = append(filtered, sig)
		}
	}
	return filtered, nil
}
