package tags

import (
	"sort"

	"tagaudit/internal/posts"
)

// Pair is an unordered pair of distinct tags, A < B.
type Pair struct {
	A, B string
}

func NewPair(a, b string) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Counts maps every pair of a universe to the number of records whose tags
// contain both of its tags.
type Counts struct {
	counts map[Pair]int64
}

// Get returns the count of the pair (a, b) in any order, 0 for pairs that
// are not part of the universe.
func (c Counts) Get(a, b string) int64 {
	return c.counts[NewPair(a, b)]
}

// Has reports whether the pair belongs to the counted universe.
func (c Counts) Has(a, b string) bool {
	_, ok := c.counts[NewPair(a, b)]
	return ok
}

// Len is the number of pairs, C(N, 2) for a universe of N tags.
func (c Counts) Len() int {
	return len(c.counts)
}

// Pairs returns every pair sorted by A then B.
func (c Counts) Pairs() []Pair {
	pairs := make([]Pair, 0, len(c.counts))
	for p := range c.counts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Aggregate counts the co-occurrences of the universe's tags across records.
// All C(N, 2) pairs are present, pairs never seen together stay at 0. Tags a
// record repeats are counted once and tags outside the universe are ignored.
func Aggregate(u Universe, records []posts.Record) Counts {
	n := u.Len()
	counts := make(map[Pair]int64, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			counts[NewPair(u.At(i), u.At(j))] = 0
		}
	}

	for _, r := range records {
		known := knownTags(u, r.Tags)
		for i := 0; i < len(known); i++ {
			for j := i + 1; j < len(known); j++ {
				counts[NewPair(known[i], known[j])]++
			}
		}
	}

	return Counts{counts: counts}
}

// knownTags dedups a record's tags and keeps those in the universe.
func knownTags(u Universe, tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var known []string
	for _, t := range tags {
		if !u.Contains(t) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		known = append(known, t)
	}
	return known
}
