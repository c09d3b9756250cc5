package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/models"
)

type briefStorage struct {
	store  *Store
	logger *common.Logger
}

// NewBriefStorage creates a new BriefStorage backed by BadgerHold.
func NewBriefStorage(store *Store, logger *common.Logger) *briefStorage {
	return &briefStorage{store: store, logger: logger}
}

func (s *briefStorage) GetBrief(_ context.Context, date string) (*models.DailyBrief, error) {
	var brief models.DailyBrief
	err := s.store.db.Get(date, &brief)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no brief for %s", date)
		}
		return nil, fmt.Errorf("failed to get brief for %s: %w", date, err)
	}
	return &brief, nil
}

func (s *briefStorage) GetLatestBrief(ctx context.Context) (*models.DailyBrief, error) {
	dates, err := s.ListBriefDates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no briefs stored")
	}
	return s.GetBrief(ctx, dates[0])
}

func (s *briefStorage) ListBriefDates(_ context.Context) ([]string, error) {
	var briefs []models.DailyBrief
	if err := s.store.db.Find(&briefs, nil); err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}

	dates := make([]string, len(briefs))
	for i, b := range briefs {
		dates[i] = b.Date
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (s *briefStorage) SaveBrief(_ context.Context, brief *models.DailyBrief) error {
	if brief.Date == "" {
		return fmt.Errorf("brief requires a date")
	}
	if err := s.store.db.Upsert(brief.Date, brief); err != nil {
		return fmt.Errorf("failed to save brief for %s: %w", brief.Date, err)
	}
	s.logger.Debug().Str("date", brief.Date).Msg("Brief saved")
	return nil
}
