package service

import (
	"time"

	"github.com/okian/tierlist/internal/adapters/repository"
	"github.com/okian/tierlist/internal/domain/dataset"
	"github.com/okian/tierlist/internal/domain/rng"
	"github.com/okian/tierlist/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets where rankings are saved. Without a store Save, Load and
// autosave are unavailable.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCatalog sets the contestant catalog sessions are created from.
func WithCatalog(c *dataset.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog.Store(c)
		}
	}
}

// WithHistoryLimit caps the undo snapshots kept per session.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithAutosave enables background persistence of every applied mutation.
func WithAutosave(enabled bool) Option {
	return func(s *Service) {
		s.autosave = enabled
	}
}

// WithQueueSize sets the capacity of the autosave queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of autosave workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSessions caps sessions held in memory. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithDefaultTheme sets the theme used when a session does not pick one.
func WithDefaultTheme(theme string) Option {
	return func(s *Service) {
		if theme != "" {
			s.defaultTheme = theme
		}
	}
}

// WithSourceFactory overrides how random sources are built for new sessions.
// seed is nil when the caller did not ask for a deterministic session.
func WithSourceFactory(f func(seed *int64) rng.Source) Option {
	return func(s *Service) {
		if f != nil {
			s.newSource = f
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
