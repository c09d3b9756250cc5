package badger

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/models"
)

type positionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPositionStorage creates a new PositionStorage backed by BadgerHold.
func NewPositionStorage(store *Store, logger *common.Logger) *positionStorage {
	return &positionStorage{store: store, logger: logger}
}

func (s *positionStorage) ListPositions(_ context.Context) ([]models.Position, error) {
	var positions []models.Position
	if err := s.store.db.Find(&positions, nil); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// SavePositions replaces the held-position set. Positions removed from the
// incoming list are deleted so stale holdings stop generating alerts.
func (s *positionStorage) SavePositions(ctx context.Context, positions []models.Position) error {
	existing, err := s.ListPositions(ctx)
	if err != nil {
		return err
	}

	incoming := make(map[string]bool, len(positions))
	for i := range positions {
		p := &positions[i]
		if p.Symbol == "" {
			return fmt.Errorf("position requires a symbol")
		}
		incoming[p.Symbol] = true
		if err := s.store.db.Upsert(p.Symbol, p); err != nil {
			return fmt.Errorf("failed to save position '%s': %w", p.Symbol, err)
		}
	}

	for _, p := range existing {
		if !incoming[p.Symbol] {
			if err := s.store.db.Delete(p.Symbol, models.Position{}); err != nil {
				return fmt.Errorf("failed to remove position '%s': %w", p.Symbol, err)
			}
		}
	}

	s.logger.Debug().Int("count", len(positions)).Msg("Positions saved")
	return nil
}
