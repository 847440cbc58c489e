package backend

import (
	"context"
	"fmt"
	"time"

	"estoque/internal/adapters"
	"estoque/internal/apiclient"
	"estoque/internal/log"
	"estoque/internal/statistics"
	"estoque/internal/statistics/memory"
	"estoque/internal/statistics/remote"
	"estoque/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	api    *apiclient.Client
}

// NewFactory creates a new backend factory. api is shared with the chatbot
// and is only required for the remote backend.
func NewFactory(logger *log.Logger, api *apiclient.Client) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		api:    api,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RemoteBackend:
		return f.createRemoteBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*BackendResult, error) {
	api := f.api
	if api == nil {
		var err error
		if api, err = apiclient.New(config.APIBaseURL); err != nil {
			return nil, fmt.Errorf("failed to initialize API client: %w", err)
		}
	}

	f.logger.Info("Initialized remote backend", "api_base_url", api.BaseURL())

	return &BackendResult{Source: remote.New(api, f.logger)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	data, err := statistics.LoadDatasetOrDemo(config.SeedFile, time.Now())
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load seed data: %w", err)
	}
	seeded, err := repo.Seed(ctx, data.Items, data.Transactions)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed SQLite repository: %w", err)
	}

	adapter := adapters.NewSQLiteAdapter(repo)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"seeded", seeded)

	return &BackendResult{
		Source:  adapter,
		Writer:  adapter,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)

	return &BackendResult{Source: store, Writer: store}, nil
}
