// Package worker drains autosave events and writes them to the ranking store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/tierlist/internal/adapters/mq/queue"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

const defaultWorkerCount = 2

// Event is the unit of work read off the queue.
type Event = queue.Event

// Saver persists one ranking document.
type Saver interface {
	Put(ctx context.Context, key string, doc model.SavedRanking) error
}

// Queue is where workers read events from.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// InMemoryWorker persists events one at a time.
type InMemoryWorker struct {
	queue  Queue
	saver  Saver
	name   string
	logger logger.Logger

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}
}

// NewInMemoryWorker creates a worker reading from q and writing to s.
func NewInMemoryWorker(q Queue, s Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		saver:    s,
		name:     "autosave",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run processes events until ctx ends, Shutdown is called or the queue closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "autosave failed", logger.String("key", e.Key), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the loop and waits for it within ctx.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

func (w *InMemoryWorker) process(ctx context.Context, e Event) error { //nolint:gocritic // events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.saver.Put(ctx, e.Key, e.Document); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("persist %s: %w", e.Key, err)
	}
	metrics.RecordAutosave()
	return nil
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates count workers. Counts below 1 use the default.
func NewPool(count int, q Queue, s Saver) *Pool {
	if count < 1 {
		count = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		queue:   q,
		logger:  logger.Named("autosave-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, s, WithName("autosave-"+strconv.Itoa(i)))
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Shutdown closes the queue so pending events drain, then waits for every
// worker within ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var firstErr error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			w.stop()
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = fmt.Errorf("autosave pool: %w", ctx.Err())
			}
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return firstErr
}
