package bootstrap

import (
	"context"
	"fmt"

	infraes "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/database"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/storage"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
)

// StorageComponents holds the selected repository and its cleanup.
type StorageComponents struct {
	Repo  storage.Repository
	Close func()
}

// SetupStorage connects the configured backend and wraps it with metrics.
func SetupStorage(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, log infralogger.Logger) (*StorageComponents, error) {
	var (
		repo    storage.Repository
		cleanup = func() {}
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Warn("Using in-memory complaint store; data is lost on restart")
		repo = storage.NewMemoryStorage()

	case config.BackendElasticsearch:
		esRepo, err := setupElasticsearch(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		repo = esRepo

	case config.BackendPostgres:
		pgRepo, closeDB, err := setupPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		repo, cleanup = pgRepo, closeDB

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return &StorageComponents{
		Repo:  storage.NewInstrumented(repo, tp),
		Close: cleanup,
	}, nil
}

func setupElasticsearch(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*storage.ElasticsearchStorage, error) {
	log.Info("Connecting to Elasticsearch",
		infralogger.String("url", cfg.Elasticsearch.URL),
		infralogger.String("index", cfg.Elasticsearch.Index),
	)

	client, err := infraes.NewClient(ctx, cfg.Elasticsearch.Config, log)
	if err != nil {
		return nil, fmt.Errorf("connect elasticsearch: %w", err)
	}

	esRepo := storage.NewElasticsearchStorage(client, cfg.Elasticsearch.Index)
	if err = esRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	log.Info("Elasticsearch connected successfully")
	return esRepo, nil
}

func setupPostgres(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*database.ComplaintRepository, func(), error) {
	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("Database connected successfully",
		infralogger.String("host", cfg.Database.Host),
		infralogger.String("database", cfg.Database.DBName),
	)

	closeDB := func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", infralogger.Error(closeErr))
		}
	}
	return database.NewComplaintRepository(db), closeDB, nil
}
