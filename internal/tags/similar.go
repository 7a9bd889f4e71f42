package tags

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Similarity is a pair of universe tags that look like spelling variants of
// each other.
type Similarity struct {
	Pair
	Score float64
}

func squash(tag string) string {
	tag = strings.ToLower(tag)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '#', '.':
			return -1
		}
		return r
	}, tag)
}

// SimilarTags returns every pair of distinct tags whose Jaro-Winkler
// similarity (ignoring case, spaces and punctuation) is at least threshold,
// highest score first. It only suggests, tags are never merged.
func SimilarTags(u Universe, threshold float64) []Similarity {
	normalized := make([]string, u.Len())
	for i := 0; i < u.Len(); i++ {
		normalized[i] = squash(u.At(i))
	}

	var result []Similarity
	for i := 0; i < u.Len(); i++ {
		for j := i + 1; j < u.Len(); j++ {
			score := 1.0
			if normalized[i] != normalized[j] {
				score = matchr.JaroWinkler(normalized[i], normalized[j], false)
			}
			if score < threshold {
				continue
			}
			result = append(result, Similarity{
				Pair:  NewPair(u.At(i), u.At(j)),
				Score: score,
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if result[i].A != result[j].A {
			return result[i].A < result[j].A
		}
		return result[i].B < result[j].B
	})
	return result
}
