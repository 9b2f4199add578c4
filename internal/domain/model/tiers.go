package model

import "sort"

// Unranked is the reserved bucket holding contestants not yet assigned.
const Unranked = "unranked"

// Tiers maps a bucket name to its ordered contestants.
// A contestant id appears in at most one bucket.
type Tiers map[string][]Contestant

// NewTiers returns tiers with every named bucket empty and pool in unranked.
func NewTiers(bucketNames []string, pool []Contestant) Tiers {
	t := make(Tiers, len(bucketNames)+1)
	for _, name := range bucketNames {
		t[name] = []Contestant{}
	}
	unranked := make([]Contestant, len(pool))
	copy(unranked, pool)
	t[Unranked] = unranked
	return t
}

// Locate returns the bucket and index holding id, or ok=false.
func (t Tiers) Locate(id string) (bucket string, index int, ok bool) {
	for name, list := range t {
		for i := range list {
			if list[i].ID == id {
				return name, i, true
			}
		}
	}
	return "", -1, false
}

// Count returns the number of contestants across all buckets.
func (t Tiers) Count() int {
	n := 0
	for _, list := range t {
		n += len(list)
	}
	return n
}

// RankedCount returns the number of contestants outside unranked.
func (t Tiers) RankedCount() int {
	return t.Count() - len(t[Unranked])
}

// IDs returns every contestant id, sorted, for multiset comparisons.
func (t Tiers) IDs() []string {
	ids := make([]string, 0, t.Count())
	for _, list := range t {
		for i := range list {
			ids = append(ids, list[i].ID)
		}
	}
	sort.Strings(ids)
	return ids
}
