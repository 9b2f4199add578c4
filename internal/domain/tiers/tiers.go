// Package tiers implements the pure tier mutation operations.
//
// Every operation returns a changed flag. When it is false the input tiers are
// returned as-is and callers skip recording history. When it is true the result
// is a new value; the input is never modified.
package tiers

import (
	"github.com/okian/tierlist/internal/domain/clone"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
)

// Tiers is the bucket mapping the operations work on.
type Tiers = model.Tiers

// Contestant is an entry inside a bucket.
type Contestant = model.Contestant

// Move removes contestantID from its bucket and appends it to target.
// Unknown ids, empty arguments and same-bucket moves are no-ops.
func Move(t Tiers, contestantID, target string) (Tiers, bool) {
	if contestantID == "" || target == "" || t == nil {
		return t, false
	}
	source, idx, ok := t.Locate(contestantID)
	if !ok || source == target {
		return t, false
	}

	next := clone.Of(t)
	moved := next[source][idx]
	next[source] = removeAt(next[source], idx)
	next[target] = append(next[target], moved)
	return next, true
}

// Clear moves every entry of bucket to the end of unranked, keeping order.
// It returns the moved entries. Empty or missing buckets, and unranked itself,
// are no-ops.
func Clear(t Tiers, bucket string) (Tiers, []Contestant, bool) {
	if bucket == model.Unranked || len(t[bucket]) == 0 {
		return t, []Contestant{}, false
	}

	next := clone.Of(t)
	moved := next[bucket]
	next[bucket] = []Contestant{}
	next[model.Unranked] = append(next[model.Unranked], moved...)

	out := make([]Contestant, len(moved))
	copy(out, moved)
	return next, out, true
}

// Reorder moves the entry at from to position to within one bucket.
// to is an index into the list after removal, so this is not a swap.
func Reorder(t Tiers, bucket string, from, to int) (Tiers, bool) {
	list, ok := t[bucket]
	if !ok || from == to || !inRange(from, len(list)) || !inRange(to, len(list)) {
		return t, false
	}

	next := clone.Of(t)
	next[bucket] = ReorderList(next[bucket], from, to)
	return next, true
}

// ReorderList returns a copy of list with the element at from moved to to.
// Out of range or equal indices return list unchanged.
func ReorderList[E any](list []E, from, to int) []E {
	if from == to || !inRange(from, len(list)) || !inRange(to, len(list)) {
		return list
	}
	item := list[from]
	rest := removeAt(list, from)
	out := make([]E, 0, len(list))
	out = append(out, rest[:to]...)
	out = append(out, item)
	return append(out, rest[to:]...)
}

// Randomize shuffles pool with src and deals it round-robin into bucketNames.
// Every named bucket and unranked exist in the result. With no bucket names
// the whole pool lands in unranked.
func Randomize(pool []Contestant, bucketNames []string, src rng.Source) Tiers {
	next := make(Tiers, len(bucketNames)+1)
	for _, name := range bucketNames {
		next[name] = []Contestant{}
	}
	next[model.Unranked] = []Contestant{}

	shuffled := clone.Of(append([]Contestant(nil), pool...))
	if len(bucketNames) == 0 {
		next[model.Unranked] = append(next[model.Unranked], shuffled...)
		return next
	}

	Shuffle(shuffled, src)
	for i := range shuffled {
		target := bucketNames[i%len(bucketNames)]
		next[target] = append(next[target], shuffled[i])
	}
	return next
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by src.
func Shuffle[E any](list []E, src rng.Source) {
	for i := len(list) - 1; i > 0; i-- {
		j := rng.Index(src, i+1)
		list[i], list[j] = list[j], list[i]
	}
}

func removeAt[E any](list []E, idx int) []E {
	out := make([]E, 0, len(list))
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...)
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
