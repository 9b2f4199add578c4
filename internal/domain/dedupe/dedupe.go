// Package dedupe tracks idempotency keys so a retried mutation is applied once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen idempotency keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded, recording it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed request can be retried under it.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key scopes an idempotency key to the session it was sent for.
func Key(sessionID, idempotencyKey string) string {
	return sessionID + "/" + idempotencyKey
}

type slot struct {
	key  string
	used bool
}

// inMemoryDeduper keeps keys in a map. When bounded, a ring of insertion order
// evicts the oldest key once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> slot in ring, -1 when unbounded
	ring    []slot
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 10000}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[key] = -1
		d.size.Add(1)
		return false
	}

	if old := d.ring[d.next]; old.used {
		delete(d.seen, old.key)
		d.size.Add(-1)
	}
	d.ring[d.next] = slot{key: key, used: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if at >= 0 {
		d.ring[at] = slot{}
	}
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
