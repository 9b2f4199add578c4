package service

import (
	"context"
	"encoding/json"
	"fmt"

	eventqueue "github.com/okian/tierlist/internal/adapters/mq/queue"
	"github.com/okian/tierlist/internal/domain/history"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/tiers"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// Save writes the session's ranking to the store and returns what was written.
func (s *Service) Save(ctx context.Context, id string) (model.SavedRanking, error) {
	if s.store == nil {
		return model.SavedRanking{}, ErrNoStore
	}
	var doc model.SavedRanking
	err := s.withSession(id, func(sess *session) error {
		doc = sess.document(s.now())
		return nil
	})
	if err != nil {
		return model.SavedRanking{}, err
	}
	if err := s.store.Put(ctx, id, doc); err != nil {
		metrics.RecordErrorByComponent("service", "save")
		return model.SavedRanking{}, fmt.Errorf("save %s: %w", id, err)
	}
	return doc, nil
}

// Load replaces the session's ranking with the stored one and starts a fresh
// history from it.
func (s *Service) Load(ctx context.Context, id string) (State, error) {
	if s.store == nil {
		return State{}, ErrNoStore
	}
	if _, err := s.lookup(id); err != nil {
		return State{}, err
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return State{}, fmt.Errorf("load %s: %w", id, err)
	}

	// Stored documents pass through the same shape checks as imports.
	raw, err := json.Marshal(doc.Tiers)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	t, err := tiers.ValidateShape(raw)
	if err != nil {
		metrics.RecordImportRejected()
		return State{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	doc.Tiers = t
	return s.restore(ctx, id, OpLoad, doc)
}

// Export returns the session's ranking in its persisted layout.
func (s *Service) Export(_ context.Context, id string) (model.SavedRanking, error) {
	var doc model.SavedRanking
	err := s.withSession(id, func(sess *session) error {
		doc = sess.document(s.now())
		return nil
	})
	return doc, err
}

// importDocument is SavedRanking with tiers left raw for shape validation.
type importDocument struct {
	Version    int              `json:"version"`
	Group      string           `json:"group"`
	Theme      string           `json:"theme"`
	TierConfig model.TierConfig `json:"tierConfig"`
	Tiers      json.RawMessage  `json:"tiers"`
	SavedAt    int64            `json:"savedAt"`
}

// Import validates an exported document and loads it into the session,
// starting a fresh history. Invalid documents leave the session untouched.
func (s *Service) Import(ctx context.Context, id string, raw []byte) (State, error) {
	if _, err := s.lookup(id); err != nil {
		return State{}, err
	}
	doc, err := decodeImport(raw)
	if err != nil {
		metrics.RecordImportRejected()
		s.logger.Warn(ctx, "import rejected", logger.String("session_id", id), logger.Error(err))
		return State{}, err
	}
	return s.restore(ctx, id, OpImport, doc)
}

func decodeImport(raw []byte) (model.SavedRanking, error) {
	var in importDocument
	if err := json.Unmarshal(raw, &in); err != nil {
		return model.SavedRanking{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if in.Version != 0 && in.Version != model.SavedRankingVersion {
		return model.SavedRanking{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, in.Version)
	}
	if len(in.Tiers) == 0 {
		return model.SavedRanking{}, fmt.Errorf("%w: missing tiers", ErrInvalidSnapshot)
	}
	t, err := tiers.ValidateShape(in.Tiers)
	if err != nil {
		return model.SavedRanking{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return model.SavedRanking{
		Version:    model.SavedRankingVersion,
		Group:      in.Group,
		Theme:      in.Theme,
		TierConfig: in.TierConfig,
		Tiers:      t,
		SavedAt:    in.SavedAt,
	}, nil
}

// restore installs doc into the session. Unknown themes and missing config
// keep the session's own. Buckets the document adds become tiers.
func (s *Service) restore(ctx context.Context, id, op string, doc model.SavedRanking) (State, error) {
	var out State
	err := s.withSession(id, func(sess *session) error {
		if doc.Group != "" {
			sess.group = doc.Group
		}
		if _, ok := model.Themes[doc.Theme]; ok {
			sess.theme = doc.Theme
		}
		for name, entry := range doc.TierConfig {
			if sess.knows(name) && name != model.Unranked {
				sess.config[name] = entry
			}
		}
		for _, b := range sess.buckets {
			if _, ok := doc.Tiers[b]; !ok {
				doc.Tiers[b] = []model.Contestant{}
			}
		}
		sess.tiers = doc.Tiers
		for _, name := range sess.orderedBuckets() {
			if !sess.knows(name) {
				sess.buckets = append(sess.buckets, name)
				sess.config[name] = model.TierConfigEntry{Name: name}
			}
		}

		sess.history = history.New(sess.tiers, s.historyLimit)
		sess.h2h.Stop()
		sess.revision = max(sess.revision, doc.Revision) + 1
		metrics.RecordMutation(op, true)
		out = sess.view(true)
		return nil
	})
	if err != nil {
		return State{}, err
	}
	s.logger.Info(ctx, "ranking restored",
		logger.String("session_id", id),
		logger.String("op", op),
		logger.Int("contestants", doc.Tiers.Count()),
	)
	return out, nil
}

// enqueueSave hands the session's ranking to the autosave workers. A full or
// closed queue drops the save; the next mutation tries again.
func (s *Service) enqueueSave(ctx context.Context, sess *session) {
	s.mu.RLock()
	q := s.eventQueue
	s.mu.RUnlock()
	if q == nil {
		return
	}
	ev := eventqueue.Event{Key: sess.id, Document: sess.document(s.now())}
	if !q.Enqueue(ctx, ev) {
		s.logger.Warn(ctx, "autosave dropped", logger.String("session_id", sess.id))
	}
}
