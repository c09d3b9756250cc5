// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/fvs-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/fvs/internal/brief"
	"github.com/bobmcallan/fvs/internal/clients/fmp"
	"github.com/bobmcallan/fvs/internal/clients/gemini"
	"github.com/bobmcallan/fvs/internal/common"
	"github.com/bobmcallan/fvs/internal/interfaces"
	"github.com/bobmcallan/fvs/internal/scoring"
	"github.com/bobmcallan/fvs/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.StorageManager
	FMPClient      interfaces.FMPClient
	GeminiClient   interfaces.GeminiClient
	ScoringService interfaces.ScoringService
	BriefService   interfaces.BriefService
	StartupTime    time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: explicit path, FVS_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FVS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fvs.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fvs.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	kv := storageManager.KeyValueStorage()
	getKV := func(name string) (string, error) { return kv.Get(ctx, name) }

	fmpKey, err := common.ResolveAPIKey(getKV, "fmp_api_key", config.Clients.FMP.APIKey)
	if err != nil {
		logger.Warn().Msg("FMP API key not configured - scoring will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey(getKV, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - AI scoring will be unavailable")
	}

	var fmpClient interfaces.FMPClient
	if fmpKey != "" {
		fmpClient = fmp.NewClient(fmpKey,
			fmp.WithBaseURL(config.Clients.FMP.BaseURL),
			fmp.WithLogger(logger),
			fmp.WithRateLimit(config.Clients.FMP.RateLimit),
			fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		)
	}

	var geminiClient interfaces.GeminiClient
	if geminiKey != "" {
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	scoringService := scoring.NewService(storageManager, fmpClient, geminiClient, &config.Scoring, logger)
	briefService := brief.NewService(storageManager, geminiClient, logger)

	a := &App{
		Config:         config,
		Logger:         logger,
		Storage:        storageManager,
		FMPClient:      fmpClient,
		GeminiClient:   geminiClient,
		ScoringService: scoringService,
		BriefService:   briefService,
		StartupTime:    time.Now(),
	}

	if config.Brief.Enabled {
		if err := a.startBriefScheduler(); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to start brief scheduler: %w", err)
		}
	}

	return a, nil
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
