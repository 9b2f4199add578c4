package service

import (
	"context"
	"fmt"

	"github.com/okian/tierlist/internal/domain/clone"
	"github.com/okian/tierlist/internal/domain/headtohead"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// HeadToHead is the view of a session's pairwise comparison round.
type HeadToHead struct {
	State       string           `json:"state"`
	Pair        *headtohead.Pair `json:"pair,omitempty"`
	Comparisons int              `json:"comparisons"`
	Ranking     []headtohead.Row `json:"ranking"`
	Changed     bool             `json:"changed"`
	Duplicate   bool             `json:"duplicate,omitempty"`
}

func h2hView(h *headtohead.Session, changed bool) HeadToHead {
	return HeadToHead{
		State:       h.State().String(),
		Pair:        h.Pair(),
		Comparisons: h.Comparisons(),
		Ranking:     h.Ranking(),
		Changed:     changed,
	}
}

// withSession runs fn under the session lock.
func (s *Service) withSession(id string, fn func(sess *session) error) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// StartHeadToHead begins comparing the session's unranked contestants.
// Restarting discards the previous round's tallies.
func (s *Service) StartHeadToHead(ctx context.Context, id string) (HeadToHead, error) {
	var out HeadToHead
	err := s.withSession(id, func(sess *session) error {
		pool := clone.Of(sess.tiers[model.Unranked])
		if len(pool) < 2 {
			return fmt.Errorf("%w: %d unranked", ErrNotEnoughContestants, len(pool))
		}
		sess.h2h.Start(pool)
		out = h2hView(sess.h2h, true)
		s.logger.Debug(ctx, "head-to-head started",
			logger.String("session_id", id), logger.Int("pool", len(pool)))
		return nil
	})
	return out, err
}

// HeadToHead returns the current pair, tallies and ranking.
func (s *Service) HeadToHead(_ context.Context, id string) (HeadToHead, error) {
	var out HeadToHead
	err := s.withSession(id, func(sess *session) error {
		out = h2hView(sess.h2h, false)
		return nil
	})
	return out, err
}

// ChooseWinner records a preference for winnerID over the other contestant of
// the current pair. Ids outside the pair are ignored.
func (s *Service) ChooseWinner(_ context.Context, id, winnerID string) (HeadToHead, error) {
	var out HeadToHead
	err := s.withSession(id, func(sess *session) error {
		if sess.h2h.State() != headtohead.Active {
			return ErrHeadToHeadInactive
		}
		changed := sess.h2h.ChooseWinner(winnerID)
		if changed {
			metrics.RecordHeadToHeadComparison("choose")
		}
		out = h2hView(sess.h2h, changed)
		return nil
	})
	return out, err
}

// Skip moves on to a new pair without recording a result.
func (s *Service) Skip(_ context.Context, id string) (HeadToHead, error) {
	var out HeadToHead
	err := s.withSession(id, func(sess *session) error {
		if sess.h2h.State() != headtohead.Active {
			return ErrHeadToHeadInactive
		}
		changed := sess.h2h.Skip()
		if changed {
			metrics.RecordHeadToHeadComparison("skip")
		}
		out = h2hView(sess.h2h, changed)
		return nil
	})
	return out, err
}

// StopHeadToHead ends the round without touching tiers.
func (s *Service) StopHeadToHead(_ context.Context, id string) (HeadToHead, error) {
	var out HeadToHead
	err := s.withSession(id, func(sess *session) error {
		changed := sess.h2h.State() == headtohead.Active
		sess.h2h.Stop()
		out = h2hView(sess.h2h, changed)
		return nil
	})
	return out, err
}

// FinishHeadToHead deals the ranking into the session's tiers, best first,
// and ends the round. The placement is recorded in history like any move.
func (s *Service) FinishHeadToHead(ctx context.Context, id string) (State, error) {
	st, err := s.mutate(ctx, id, OpFinish, func(sess *session) (model.Tiers, bool, error) {
		if sess.h2h.State() != headtohead.Active {
			return nil, false, ErrHeadToHeadInactive
		}
		next, changed := sess.h2h.Finish(sess.tiers, sess.buckets)
		return next, changed, nil
	})
	if err == nil {
		metrics.RecordHeadToHeadFinish()
	}
	return st, err
}
