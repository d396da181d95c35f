package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quantrun/sigval/internal/config"
	"github.com/quantrun/sigval/internal/marketdata"
	"github.com/quantrun/sigval/internal/reference"
	"github.com/quantrun/sigval/internal/storage/archive"
)

// loadConfig reads the config file when one is given, falling back to
// defaults otherwise.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadStore opens the market data database and loads it into memory.
func loadStore(ctx context.Context, dsn string, log *zap.Logger) (*marketdata.Store, error) {
	store, err := marketdata.LoadSQLite(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("loading market data from %s: %w", dsn, err)
	}
	log.Info("market data loaded",
		zap.String("dsn", dsn),
		zap.Int("assets", store.Assets()))
	return store, nil
}

// buildArchiver constructs the report archiver from config, or nil
// when archiving is disabled.
func buildArchiver(cfg *config.Config, log *zap.Logger) (*archive.Archiver, error) {
	if !cfg.Storage.Archive.Enabled {
		return nil, nil
	}

	var backend archive.Storage
	var err error
	switch cfg.Storage.Archive.Type {
	case "", "localfs":
		backend, err = archive.NewLocalFS(cfg.Storage.Archive.Path)
	case "s3":
		backend, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Storage.Archive.S3.Bucket,
			Endpoint:  cfg.Storage.Archive.S3.Endpoint,
			Region:    cfg.Storage.Archive.S3.Region,
			AccessKey: cfg.Storage.Archive.S3.AccessKey,
			SecretKey: cfg.Storage.Archive.S3.SecretKey,
			Prefix:    cfg.Storage.Archive.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Storage.Archive.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("creating archive backend: %w", err)
	}

	return archive.NewArchiver(backend, log), nil
}

// buildTables constructs the reference tables from config. Empty
// tables are valid; lookups just miss.
func buildTables(cfg *config.Config) (*reference.Tables, error) {
	return reference.NewTables(cfg.Reference.HedgeRatios, cfg.Reference.OptionCostBaselines)
}
