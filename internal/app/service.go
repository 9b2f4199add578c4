// Package service hosts tier-ranking sessions. It owns each session's tiers
// and undo history, validates external data and persists snapshots, and is
// the dependency the HTTP API is built on.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/tierlist/internal/adapters/mq/queue"
	workerpool "github.com/okian/tierlist/internal/adapters/mq/worker"
	"github.com/okian/tierlist/internal/adapters/repository"
	"github.com/okian/tierlist/internal/domain/dataset"
	"github.com/okian/tierlist/internal/domain/dedupe"
	"github.com/okian/tierlist/internal/domain/headtohead"
	"github.com/okian/tierlist/internal/domain/history"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// Service implements the API dependencies for tier-ranking sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// Core components
	store      repository.Store
	catalog    atomic.Pointer[dataset.Catalog]
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	historyLimit int
	autosave     bool
	queueSize    int
	workerCount  int
	dedupeSize   int
	maxSessions  int
	defaultTheme string
	newSource    func(seed *int64) rng.Source
	now          func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Sessions can be served right away; Start is only
// needed for autosave.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:     make(map[string]*session),
		historyLimit: 50,
		queueSize:    1024,
		workerCount:  2,
		dedupeSize:   10_000,
		maxSessions:  1000,
		defaultTheme: "survivor",
		newSource:    defaultSource,
		now:          time.Now,
		logger:       logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

func defaultSource(seed *int64) rng.Source {
	if seed != nil {
		return rng.NewLehmer(*seed)
	}
	return rng.System()
}

// Start launches the autosave pipeline when autosave is enabled and a store
// is configured. The workers outlive ctx; Stop ends them after draining.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.autosave && s.store != nil {
		s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
		s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store)
		s.workerPool.Start(context.WithoutCancel(ctx))
	}
	s.started = true

	s.logger.Info(ctx, "tierlist service started",
		logger.Int("history_limit", s.historyLimit),
		logger.Bool("autosave", s.workerPool != nil),
		logger.Int("workers", s.workerCount),
		logger.Int("max_sessions", s.maxSessions),
	)
	return nil
}

// Stop drains pending autosaves within ctx. The store stays open for its owner to close.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping tierlist service...")

	var err error
	if s.workerPool != nil {
		err = s.workerPool.Shutdown(ctx)
		s.workerPool, s.eventQueue = nil, nil
	}
	s.started = false
	s.logger.Info(ctx, "tierlist service stopped")
	return err
}

// SetCatalog swaps the contestant catalog. Existing sessions keep their
// contestants; new sessions use the new catalog.
func (s *Service) SetCatalog(c *dataset.Catalog) {
	if c == nil {
		return
	}
	s.catalog.Store(c)
	s.logger.Info(context.Background(), "catalog updated", logger.Int("groups", len(c.Summaries())))
}

// Groups lists the catalog's groups.
func (s *Service) Groups(context.Context) []dataset.Summary {
	c := s.catalog.Load()
	if c == nil {
		return []dataset.Summary{}
	}
	return c.Summaries()
}

// CreateRequest describes a new session. Zero values pick defaults.
type CreateRequest struct {
	Group      string           `json:"group,omitempty"`
	Theme      string           `json:"theme,omitempty"`
	Seed       *int64           `json:"seed,omitempty"`
	Buckets    []string         `json:"tiers,omitempty"`
	TierConfig model.TierConfig `json:"tierConfig,omitempty"`
}

// CreateSession starts a session with every contestant of the group unranked.
func (s *Service) CreateSession(ctx context.Context, req CreateRequest) (State, error) {
	c := s.catalog.Load()
	if c == nil {
		return State{}, fmt.Errorf("%w: no catalog loaded", ErrUnknownGroup)
	}
	group := req.Group
	if group == "" {
		group = c.First()
	}
	pool, ok := c.Group(group)
	if !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}

	theme := req.Theme
	if theme == "" {
		theme = s.defaultTheme
	}
	if _, ok := model.Themes[theme]; !ok {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}

	buckets, cfg, err := resolveBuckets(req.Buckets, req.TierConfig)
	if err != nil {
		return State{}, err
	}

	src := s.newSource(req.Seed)
	t := model.NewTiers(buckets, pool)
	sess := &session{
		id:      uuid.NewString(),
		group:   group,
		theme:   theme,
		buckets: buckets,
		config:  cfg,
		tiers:   t,
		history: history.New(t, s.historyLimit),
		h2h:     headtohead.NewSession(src),
		src:     src,
		stats:   SessionStats{StartedAt: s.now()},
	}

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return State{}, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(active)
	s.logger.Info(ctx, "session created",
		logger.String("session_id", sess.id),
		logger.String("group", group),
		logger.Int("contestants", len(pool)),
		logger.Bool("seeded", req.Seed != nil),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(false), nil
}

// resolveBuckets applies the default S..F order and fills labels for buckets
// the config does not describe.
func resolveBuckets(names []string, cfg model.TierConfig) ([]string, model.TierConfig, error) {
	if len(names) == 0 {
		names = model.DefaultTierOrder
	}
	if cfg == nil {
		cfg = model.DefaultTierConfig()
	}

	buckets := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	out := make(model.TierConfig, len(names))
	for _, name := range names {
		if name == "" || name == model.Unranked {
			return nil, nil, fmt.Errorf("%w: %q is not a valid tier name", ErrInvalidBuckets, name)
		}
		if _, dup := seen[name]; dup {
			return nil, nil, fmt.Errorf("%w: %q listed twice", ErrInvalidBuckets, name)
		}
		seen[name] = struct{}{}
		buckets = append(buckets, name)

		entry, ok := cfg[name]
		if !ok {
			entry = model.TierConfigEntry{Name: name}
		}
		out[name] = entry
	}
	return buckets, out, nil
}

// Session returns the current state of a session.
func (s *Service) Session(_ context.Context, id string) (State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(false), nil
}

// DeleteSession drops a session from memory. Saved rankings are kept.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(active)
	s.logger.Info(ctx, "session deleted", logger.String("session_id", id))
	return nil
}

// ListSessions summarises every session, oldest first.
func (s *Service) ListSessions(context.Context) []Summary {
	s.mu.RLock()
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	out := make([]Summary, 0, len(all))
	for _, sess := range all {
		sess.mu.Lock()
		out = append(out, sess.summary())
		sess.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// SeenAndRecord reports whether an idempotency key was already used for this
// session, recording it if not.
func (s *Service) SeenAndRecord(ctx context.Context, sessionID, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, dedupe.Key(sessionID, key))
	if seen {
		metrics.RecordIdempotentReplay()
	}
	return seen
}

// Unrecord forgets an idempotency key so a failed request can be retried.
func (s *Service) Unrecord(ctx context.Context, sessionID, key string) {
	s.deduper.Unrecord(ctx, dedupe.Key(sessionID, key))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":       s.started,
		"sessions":      len(s.sessions),
		"maxSessions":   s.maxSessions,
		"historyLimit":  s.historyLimit,
		"dedupeEntries": s.deduper.Size(),
		"persistence":   s.store != nil,
		"autosave":      s.workerPool != nil,
	}
	if s.workerPool != nil {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.workerPool.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	if c := s.catalog.Load(); c != nil {
		stats["groups"] = len(c.Summaries())
		stats["contestants"] = c.Size()
	}
	metrics.UpdateActiveSessions(len(s.sessions))
	return stats
}
