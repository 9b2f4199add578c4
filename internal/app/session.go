package service

import (
	"sort"
	"sync"
	"time"

	"github.com/okian/tierlist/internal/domain/clone"
	"github.com/okian/tierlist/internal/domain/headtohead"
	"github.com/okian/tierlist/internal/domain/history"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
)

// session is one ranking in progress. mu serialises every operation on it.
type session struct {
	mu sync.Mutex

	id      string
	group   string
	theme   string
	buckets []string
	config  model.TierConfig
	tiers   model.Tiers
	history history.History[model.Tiers]
	h2h     *headtohead.Session
	src     rng.Source
	stats   SessionStats

	// revision counts tier changes; autosaves carry it so stale writes lose.
	revision int64
}

// SessionStats counts what happened in a session.
type SessionStats struct {
	Moves     int       `json:"moves"`
	Undos     int       `json:"undos"`
	Redos     int       `json:"redos"`
	Noops     int       `json:"noops"`
	StartedAt time.Time `json:"startedAt"`
}

// State is the externally visible view of a session.
type State struct {
	ID                string           `json:"id"`
	Group             string           `json:"group"`
	Theme             string           `json:"theme"`
	Buckets           []string         `json:"buckets"`
	TierConfig        model.TierConfig `json:"tierConfig"`
	Tiers             model.Tiers      `json:"tiers"`
	CanUndo           bool             `json:"canUndo"`
	CanRedo           bool             `json:"canRedo"`
	UnrankedRemaining int              `json:"unrankedRemaining"`
	HeadToHead        string           `json:"headToHead"`
	Stats             SessionStats     `json:"stats"`
	Changed           bool             `json:"changed"`
	Duplicate         bool             `json:"duplicate,omitempty"`
}

// Summary is a session as listed by ListSessions.
type Summary struct {
	ID        string    `json:"id"`
	Group     string    `json:"group"`
	Theme     string    `json:"theme"`
	Ranked    int       `json:"ranked"`
	Unranked  int       `json:"unranked"`
	StartedAt time.Time `json:"startedAt"`
}

func (s *session) view(changed bool) State {
	return State{
		ID:                s.id,
		Group:             s.group,
		Theme:             s.theme,
		Buckets:           append([]string(nil), s.buckets...),
		TierConfig:        clone.Of(s.config),
		Tiers:             clone.Of(s.tiers),
		CanUndo:           s.history.CanUndo(),
		CanRedo:           s.history.CanRedo(),
		UnrankedRemaining: len(s.tiers[model.Unranked]),
		HeadToHead:        s.h2h.State().String(),
		Stats:             s.stats,
		Changed:           changed,
	}
}

func (s *session) summary() Summary {
	return Summary{
		ID:        s.id,
		Group:     s.group,
		Theme:     s.theme,
		Ranked:    s.tiers.RankedCount(),
		Unranked:  len(s.tiers[model.Unranked]),
		StartedAt: s.stats.StartedAt,
	}
}

// knows reports whether bucket is one of the session's tiers or unranked.
func (s *session) knows(bucket string) bool {
	if bucket == model.Unranked {
		return true
	}
	for _, b := range s.buckets {
		if b == bucket {
			return true
		}
	}
	return false
}

// contestants lists everyone in the session in tier order, unranked last.
func (s *session) contestants() []model.Contestant {
	out := make([]model.Contestant, 0, s.tiers.Count())
	for _, b := range s.orderedBuckets() {
		out = append(out, s.tiers[b]...)
	}
	return out
}

// orderedBuckets is the session's tiers, then any extra buckets sorted, then unranked.
func (s *session) orderedBuckets() []string {
	out := append([]string(nil), s.buckets...)
	var extra []string
	for name := range s.tiers {
		if name != model.Unranked && !s.knows(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	out = append(out, extra...)
	return append(out, model.Unranked)
}

// commit installs next as the current tiers and records it in history.
func (s *session) commit(next model.Tiers) {
	s.tiers = next
	s.history = s.history.Save(next)
	s.stats.Moves++
	s.revision++
}

func (s *session) document(now time.Time) model.SavedRanking {
	return model.SavedRanking{
		Version:    model.SavedRankingVersion,
		Group:      s.group,
		Theme:      s.theme,
		TierConfig: clone.Of(s.config),
		Tiers:      clone.Of(s.tiers),
		SavedAt:    now.UnixMilli(),
		Revision:   s.revision,
	}
}
