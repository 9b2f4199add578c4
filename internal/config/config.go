// Package config defines service configuration and its loading layers.
package config

import (
	"runtime"
	"time"
)

// Store drivers understood by the repository.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HistoryLimit caps undo snapshots kept per session.
	HistoryLimit int `koanf:"history_limit"`

	// StoreDriver is memory or sqlite; StorePath is the sqlite file.
	StoreDriver string `koanf:"store_driver"`
	StorePath   string `koanf:"store_path"`

	// Autosave persists every applied mutation in the background.
	Autosave          bool `koanf:"autosave"`
	AutosaveQueueSize int  `koanf:"autosave_queue_size"`
	AutosaveWorkers   int  `koanf:"autosave_workers"`

	// DedupeSize bounds remembered idempotency keys; 0 keeps every key.
	DedupeSize int `koanf:"dedupe_size"`

	// DatasetPath points at a catalog file; empty uses the built-in one.
	DatasetPath  string `koanf:"dataset_path"`
	WatchDataset bool   `koanf:"watch_dataset"`

	// MaxSessions caps sessions held in memory. Zero means unlimited.
	MaxSessions int `koanf:"max_sessions"`

	DefaultTheme string `koanf:"default_theme"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		HistoryLimit:      50,
		StoreDriver:       StoreMemory,
		StorePath:         "tierlist.db",
		Autosave:          true,
		AutosaveQueueSize: 1024,
		AutosaveWorkers:   max(2, runtime.NumCPU()/2),
		DedupeSize:        10_000,
		MaxSessions:       1000,
		DefaultTheme:      "survivor",
		ShutdownTimeout:   10 * time.Second,
	}
}
