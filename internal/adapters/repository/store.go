// Package repository persists saved rankings.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store reads and writes saved rankings by key.
type Store interface {
	// Put replaces the document stored under key unless the stored one has a
	// higher revision, in which case the write is dropped without error.
	Put(ctx context.Context, key string, doc model.SavedRanking) error

	// Get returns ErrNotFound if nothing is stored under key.
	Get(ctx context.Context, key string) (model.SavedRanking, error)

	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// Open builds the store selected by driver. path is only used by sqlite.
func Open(driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return NewSQLiteStore(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// stale records a put that lost to a newer revision.
func stale(key string, revision int64) {
	metrics.RecordErrorByComponent("repository", "stale_revision")
	logger.Named("repository").Debug(context.Background(), "dropped stale ranking",
		logger.String("key", key), logger.Int64("revision", revision))
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, float64(time.Since(start).Microseconds())/1000, err)
}
