package backend

import (
	"context"
	"fmt"
	"log/slog"

	"wallet/internal/ledger/httpapi"
	"wallet/internal/ledger/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPBackend:
		return f.createHTTPBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPBackend(ctx context.Context, config Config) (*BackendResult, error) {
	httpClient := httpapi.NewHTTPClient(config.Timeout)
	client, err := httpapi.New(config.APIURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger HTTP client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized HTTP ledger backend",
		"api_url", config.APIURL,
		"timeout", config.Timeout.String())

	return &BackendResult{
		Client: client,
		Cleanup: func() error {
			httpClient.CloseIdleConnections()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFile(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory ledger: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory ledger backend", "data_directory", dataDir)

	return &BackendResult{
		Client:  store,
		Cleanup: nil,
	}, nil
}
