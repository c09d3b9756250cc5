package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/fvs/internal/models"
)

// ScoreStorage persists scoring results keyed by (symbol, as-of date).
type ScoreStorage interface {
	GetScore(ctx context.Context, symbol, date string) (*models.ScoringResult, error)
	GetLatestScore(ctx context.Context, symbol string) (*models.ScoringResult, error)
	SaveScore(ctx context.Context, result *models.ScoringResult) error
}

// BriefStorage persists daily briefs keyed by date.
type BriefStorage interface {
	GetBrief(ctx context.Context, date string) (*models.DailyBrief, error)
	GetLatestBrief(ctx context.Context) (*models.DailyBrief, error)
	ListBriefDates(ctx context.Context) ([]string, error)
	SaveBrief(ctx context.Context, brief *models.DailyBrief) error
}

// SignalStorage persists trading-setup signals.
type SignalStorage interface {
	SaveSignals(ctx context.Context, signals []models.SetupSignal) error
	// GetSignalsByType returns signals of one setup type dated on or after
	// since, sorted by risk/reward descending, capped at limit.
	GetSignalsByType(ctx context.Context, setupType string, since time.Time, limit int) ([]models.SetupSignal, error)
	GetSignalsForDate(ctx context.Context, date string) ([]models.SetupSignal, error)
}

// PositionStorage persists held positions used for portfolio alerts.
type PositionStorage interface {
	ListPositions(ctx context.Context) ([]models.Position, error)
	SavePositions(ctx context.Context, positions []models.Position) error
}

// KeyValueStorage persists system settings (macro regime, API keys).
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StorageManager is the facade over all storage areas.
type StorageManager interface {
	ScoreStorage() ScoreStorage
	BriefStorage() BriefStorage
	SignalStorage() SignalStorage
	PositionStorage() PositionStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
