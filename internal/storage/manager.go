// Package storage provides the top-level StorageManager coordinating the
// BadgerHold-backed storage areas.
package storage

import (
	"fmt"

	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single BadgerHold
// store shared by all storage areas.
type Manager struct {
	store     *badger.Store
	scores    interfaces.ScoreStorage
	briefs    interfaces.BriefStorage
	signals   interfaces.SignalStorage
	positions interfaces.PositionStorage
	kv        interfaces.KeyValueStorage
	logger    *common.Logger
}

// NewManager creates a new StorageManager rooted at the configured path.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:     store,
		scores:    badger.NewScoreStorage(store, logger),
		briefs:    badger.NewBriefStorage(store, logger),
		signals:   badger.NewSignalStorage(store, logger),
		positions: badger.NewPositionStorage(store, logger),
		kv:        badger.NewKVStorage(store, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) ScoreStorage() interfaces.ScoreStorage {
	return m.scores
}

func (m *Manager) BriefStorage() interfaces.BriefStorage {
	return m.briefs
}

func (m *Manager) SignalStorage() interfaces.SignalStorage {
	return m.signals
}

func (m *Manager) PositionStorage() interfaces.PositionStorage {
	return m.positions
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
