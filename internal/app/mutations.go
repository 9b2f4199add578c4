package service

import (
	"context"
	"fmt"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/tiers"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// Mutation op names, used as metric labels.
const (
	OpMove      = "move"
	OpClear     = "clear"
	OpReorder   = "reorder"
	OpRandomize = "randomize"
	OpReset     = "reset"
	OpFinish    = "h2h_finish"
	OpLoad      = "load"
	OpImport    = "import"
)

// mutateFunc computes the next tiers for a session. It must not modify sess.
type mutateFunc func(sess *session) (model.Tiers, bool, error)

// mutate runs fn under the session lock and, when it changed anything,
// records history and schedules an autosave. No-ops leave history untouched.
func (s *Service) mutate(ctx context.Context, id, op string, fn mutateFunc) (State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, changed, err := fn(sess)
	if err != nil {
		return State{}, err
	}
	metrics.RecordMutation(op, changed)
	if !changed {
		sess.stats.Noops++
		return sess.view(false), nil
	}

	sess.commit(next)
	s.enqueueSave(ctx, sess)
	return sess.view(true), nil
}

// Move places a contestant at the end of tier.
func (s *Service) Move(ctx context.Context, id, contestantID, tier string) (State, error) {
	return s.mutate(ctx, id, OpMove, func(sess *session) (model.Tiers, bool, error) {
		if !sess.knows(tier) {
			return nil, false, fmt.Errorf("%w: %q", ErrUnknownBucket, tier)
		}
		next, changed := tiers.Move(sess.tiers, contestantID, tier)
		return next, changed, nil
	})
}

// Clear sends every contestant of tier back to unranked.
func (s *Service) Clear(ctx context.Context, id, tier string) (State, error) {
	return s.mutate(ctx, id, OpClear, func(sess *session) (model.Tiers, bool, error) {
		if !sess.knows(tier) {
			return nil, false, fmt.Errorf("%w: %q", ErrUnknownBucket, tier)
		}
		next, _, changed := tiers.Clear(sess.tiers, tier)
		return next, changed, nil
	})
}

// Reorder moves the entry at from to position to within tier.
func (s *Service) Reorder(ctx context.Context, id, tier string, from, to int) (State, error) {
	return s.mutate(ctx, id, OpReorder, func(sess *session) (model.Tiers, bool, error) {
		if !sess.knows(tier) {
			return nil, false, fmt.Errorf("%w: %q", ErrUnknownBucket, tier)
		}
		next, changed := tiers.Reorder(sess.tiers, tier, from, to)
		return next, changed, nil
	})
}

// Randomize shuffles every contestant of the session into its tiers.
func (s *Service) Randomize(ctx context.Context, id string) (State, error) {
	return s.mutate(ctx, id, OpRandomize, func(sess *session) (model.Tiers, bool, error) {
		pool := sess.contestants()
		if len(pool) == 0 {
			return sess.tiers, false, nil
		}
		return tiers.Randomize(pool, sess.buckets, sess.src), true, nil
	})
}

// Reset sends everyone back to unranked. Resetting is itself undoable.
func (s *Service) Reset(ctx context.Context, id string) (State, error) {
	return s.mutate(ctx, id, OpReset, func(sess *session) (model.Tiers, bool, error) {
		if sess.tiers.RankedCount() == 0 {
			return sess.tiers, false, nil
		}
		return model.NewTiers(sess.buckets, sess.contestants()), true, nil
	})
}

// Undo steps back one history entry.
func (s *Service) Undo(ctx context.Context, id string) (State, error) {
	return s.step(ctx, id, "undo")
}

// Redo steps forward one history entry.
func (s *Service) Redo(ctx context.Context, id string) (State, error) {
	return s.step(ctx, id, "redo")
}

func (s *Service) step(ctx context.Context, id, direction string) (State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	stepFn := sess.history.Undo
	if direction == "redo" {
		stepFn = sess.history.Redo
	}
	next, ok := stepFn()
	metrics.RecordHistoryStep(direction, ok)
	if !ok {
		return sess.view(false), nil
	}

	sess.history = next
	sess.tiers = next.Current()
	sess.revision++
	if direction == "undo" {
		sess.stats.Undos++
	} else {
		sess.stats.Redos++
	}
	s.enqueueSave(ctx, sess)
	s.logger.Debug(ctx, "history step",
		logger.String("session_id", id),
		logger.String("direction", direction),
		logger.Int("index", next.Index()),
	)
	return sess.view(true), nil
}
