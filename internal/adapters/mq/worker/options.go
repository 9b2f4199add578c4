package worker

import (
	"github.com/okian/tierlist/pkg/logger"
)

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker in logs.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger overrides the worker logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
