package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/config"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store/google"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store/memory"
	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store/sqlite"
)

// FromAppConfig converts the application config to a backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore.
func (f *DefaultFactory) CreateStore(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case MemoryBackend:
		return f.createMemoryStore()
	case SQLiteBackend:
		return f.createSQLiteStore(cfg)
	case SheetsBackend:
		return f.createSheetsStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Info("Initialized memory backend")
	return &Result{Store: memory.New(), Cleanup: nil}, nil
}

func (f *DefaultFactory) createSQLiteStore(cfg Config) (*Result, error) {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return &Result{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsStore(ctx context.Context, cfg Config) (*Result, error) {
	var (
		cli *google.Client
		err error
	)
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		cli, err = google.New(ctx, cfg.GoogleSpreadsheetID, []byte(cfg.GoogleServiceAccountJSON))
	case cfg.GoogleServiceAccountFile != "":
		var creds []byte
		creds, err = os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
		cli, err = google.New(ctx, cfg.GoogleSpreadsheetID, creds)
	default:
		cli, err = google.NewFromEnv(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return &Result{Store: cli, Cleanup: nil}, nil
}
