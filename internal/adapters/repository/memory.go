package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/tierlist/internal/domain/clone"
	"github.com/okian/tierlist/internal/domain/model"
)

// MemoryStore keeps documents in a map. Documents are copied on the way in
// and out so callers never share tiers with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]model.SavedRanking
	closed bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(...Option) *MemoryStore {
	return &MemoryStore{docs: make(map[string]model.SavedRanking)}
}

func (s *MemoryStore) Put(_ context.Context, key string, doc model.SavedRanking) (err error) {
	defer func(start time.Time) { observe("put", start, err) }(time.Now())
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if have, ok := s.docs[key]; ok && have.Revision > doc.Revision {
		stale(key, doc.Revision)
		return nil
	}
	s.docs[key] = clone.Of(doc)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (doc model.SavedRanking, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.SavedRanking{}, ErrClosed
	}
	stored, ok := s.docs[key]
	if !ok {
		return model.SavedRanking{}, ErrNotFound
	}
	return clone.Of(stored), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.docs, key)
	return nil
}

func (s *MemoryStore) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
