// Package headtohead accumulates pairwise preferences over a contestant pool
// and projects them into a ranking that can be dealt into tiers.
package headtohead

import (
	"sort"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
	"github.com/okian/tierlist/internal/domain/tiers"
)

// State is the lifecycle of a comparison session.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Pair is the comparison currently on offer.
type Pair struct {
	Left  model.Contestant `json:"left"`
	Right model.Contestant `json:"right"`
}

// Stat is the win/loss tally of one contestant.
type Stat struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Score is wins over total comparisons, or 0 before any comparison.
func (s Stat) Score() float64 {
	total := s.Wins + s.Losses
	if total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(total)
}

// Row is one entry of the ranking projection.
type Row struct {
	Contestant model.Contestant `json:"contestant"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
	Score      float64          `json:"score"`
}

// Session holds the pool, tallies and current pair. Not safe for concurrent use.
type Session struct {
	src         rng.Source
	state       State
	pool        []model.Contestant
	stats       map[string]Stat
	pair        *Pair
	comparisons int
}

// NewSession creates an idle session drawing pairs from src.
func NewSession(src rng.Source) *Session {
	if src == nil {
		src = rng.System()
	}
	return &Session{src: src, stats: map[string]Stat{}}
}

// PickPair draws two distinct contestants from pool. A collision on the second
// draw is resolved by stepping to the next index. Pools smaller than two yield nil.
func PickPair(pool []model.Contestant, src rng.Source) *Pair {
	n := len(pool)
	if n < 2 {
		return nil
	}
	i := rng.Index(src, n)
	j := rng.Index(src, n)
	if j == i {
		j = (j + 1) % n
	}
	return &Pair{Left: pool[i], Right: pool[j]}
}

// Start resets tallies and the counter, then offers the first pair.
// The returned pair is nil when the pool holds fewer than two contestants.
func (s *Session) Start(pool []model.Contestant) *Pair {
	s.pool = append([]model.Contestant(nil), pool...)
	s.stats = make(map[string]Stat, len(pool))
	s.comparisons = 0
	s.state = Active
	s.next()
	return s.pair
}

// ChooseWinner records winnerID beating the other member of the current pair
// and advances. It reports false when there is no pair or the id is not in it.
func (s *Session) ChooseWinner(winnerID string) bool {
	if s.state != Active || s.pair == nil {
		return false
	}
	var loserID string
	switch winnerID {
	case s.pair.Left.ID:
		loserID = s.pair.Right.ID
	case s.pair.Right.ID:
		loserID = s.pair.Left.ID
	default:
		return false
	}

	w := s.stats[winnerID]
	w.Wins++
	s.stats[winnerID] = w
	l := s.stats[loserID]
	l.Losses++
	s.stats[loserID] = l

	s.comparisons++
	s.next()
	return true
}

// Skip advances to a fresh pair without tallying. It still counts as a comparison.
func (s *Session) Skip() bool {
	if s.state != Active {
		return false
	}
	s.comparisons++
	s.next()
	return true
}

// Stop ends the session. Tallies stay available until the next Start.
func (s *Session) Stop() {
	s.state = Idle
	s.pair = nil
}

// Ranking orders the pool by score then wins, keeping pool order for ties.
func (s *Session) Ranking() []Row {
	rows := make([]Row, len(s.pool))
	for i, c := range s.pool {
		st := s.stats[c.ID]
		rows[i] = Row{Contestant: c, Wins: st.Wins, Losses: st.Losses, Score: st.Score()}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Score != rows[b].Score {
			return rows[a].Score > rows[b].Score
		}
		return rows[a].Wins > rows[b].Wins
	})
	return rows
}

// Finish deals the ranking round-robin into bucketNames using move semantics
// and stops the session. Contestants no longer present in t are skipped.
func (s *Session) Finish(t model.Tiers, bucketNames []string) (model.Tiers, bool) {
	defer s.Stop()
	if len(bucketNames) == 0 {
		return t, false
	}

	next, changed := t, false
	for i, row := range s.Ranking() {
		var moved bool
		next, moved = tiers.Move(next, row.Contestant.ID, bucketNames[i%len(bucketNames)])
		changed = changed || moved
	}
	return next, changed
}

// State reports whether the session is idle or active.
func (s *Session) State() State { return s.state }

// Comparisons counts choices and skips since the last Start.
func (s *Session) Comparisons() int { return s.comparisons }

// Pair returns a copy of the current pair, or nil.
func (s *Session) Pair() *Pair {
	if s.pair == nil {
		return nil
	}
	p := *s.pair
	return &p
}

// Stats returns a copy of the tallies keyed by contestant id.
func (s *Session) Stats() map[string]Stat {
	out := make(map[string]Stat, len(s.stats))
	for id, st := range s.stats {
		out[id] = st
	}
	return out
}

// Pool returns the contestants the session was started with.
func (s *Session) Pool() []model.Contestant {
	return append([]model.Contestant(nil), s.pool...)
}

func (s *Session) next() {
	s.pair = PickPair(s.pool, s.src)
	if s.pair == nil {
		return
	}
	for _, id := range []string{s.pair.Left.ID, s.pair.Right.ID} {
		if _, ok := s.stats[id]; !ok {
			s.stats[id] = Stat{}
		}
	}
}
