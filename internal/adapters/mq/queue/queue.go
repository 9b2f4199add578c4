// Package queue buffers autosave events between the service and the store workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/pkg/metrics"
)

const defaultCapacity = 1024

// Event is what flows through the queue.
type Event = model.SaveEvent

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue reports false when the event was dropped.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Event

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue is a Queue over a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue holding at most capacity events.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // events travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	case <-ctx.Done():
		q.reject("context_cancelled")
		return false
	default:
		q.reject("queue_full")
		return false
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-q.events:
				if !ok {
					return
				}
				select {
				case out <- e:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(context.Context) int {
	return len(q.events)
}

// Close stops accepting events. Buffered events are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}
