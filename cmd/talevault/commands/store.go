package commands

import (
	"context"
	"fmt"

	"github.com/talevault/talevault/pkg/config"
	"github.com/talevault/talevault/pkg/vars"
)

// loadConfig resolves the effective configuration from the --config and
// --db flags, falling back to defaults when no file is given.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// openStore opens and migrates the variable store described by the
// effective configuration. The caller owns the returned store.
func openStore(ctx context.Context, cfg *config.Config) (*vars.SQLiteStore, error) {
	store, err := vars.New(vars.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}
