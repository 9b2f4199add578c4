package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/tierlist/internal/domain/model"
)

const (
	envPrefix  = "TIERLIST_"
	envConfig  = "TIERLIST_CONFIG"
	dotEnvFile = ".env"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by TIERLIST_CONFIG
//  3. TIERLIST_* environment variables, after .env is merged into the environment
func Load() (*Config, error) {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotEnvFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// TIERLIST_HISTORY_LIMIT -> history_limit; keys stay flat to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HistoryLimit < 1:
		return fmt.Errorf("%w: history_limit must be at least 1", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StoreSQLite && c.StorePath == "":
		return fmt.Errorf("%w: store_path is required for sqlite", ErrInvalidConfig)
	case c.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions must not be negative", ErrInvalidConfig)
	case c.AutosaveQueueSize < 1:
		return fmt.Errorf("%w: autosave_queue_size must be at least 1", ErrInvalidConfig)
	case c.AutosaveWorkers < 1:
		return fmt.Errorf("%w: autosave_workers must be at least 1", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.WatchDataset && c.DatasetPath == "":
		return fmt.Errorf("%w: watch_dataset needs dataset_path", ErrInvalidConfig)
	}
	if _, ok := model.Themes[c.DefaultTheme]; !ok {
		return fmt.Errorf("%w: unknown default_theme %q", ErrInvalidConfig, c.DefaultTheme)
	}
	return nil
}
