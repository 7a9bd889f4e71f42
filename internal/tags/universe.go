// Package tags builds the tag co-occurrence graph of a set of records.
//
// Every value here is immutable once constructed: each stage takes its inputs
// explicitly and returns a new value, nothing is shared between calls.
package tags

import "tagaudit/internal/posts"

// Universe is an ordered list of distinct tags. A tag's position is its
// row/column in the adjacency matrix.
type Universe struct {
	tags  []string
	index map[string]int
}

// NewUniverse keeps the first occurrence of every tag.
func NewUniverse(tags ...string) Universe {
	u := Universe{index: make(map[string]int, len(tags))}
	for _, t := range tags {
		u.add(t)
	}
	return u
}

func (u *Universe) add(tag string) {
	if _, exists := u.index[tag]; exists {
		return
	}
	u.index[tag] = len(u.tags)
	u.tags = append(u.tags, tag)
}

func (u Universe) clone() Universe {
	out := Universe{
		tags:  make([]string, len(u.tags)),
		index: make(map[string]int, len(u.tags)),
	}
	copy(out.tags, u.tags)
	for k, v := range u.index {
		out.index[k] = v
	}
	return out
}

// Tags returns a copy of the ordered tag list.
func (u Universe) Tags() []string {
	out := make([]string, len(u.tags))
	copy(out, u.tags)
	return out
}

func (u Universe) Len() int {
	return len(u.tags)
}

func (u Universe) At(i int) string {
	return u.tags[i]
}

func (u Universe) Index(tag string) (int, bool) {
	i, ok := u.index[tag]
	return i, ok
}

func (u Universe) Contains(tag string) bool {
	_, ok := u.index[tag]
	return ok
}

// Extend returns a universe holding every tag of u followed by the tags of
// records not yet in it, in record order then tag order. u is not modified.
func Extend(u Universe, records []posts.Record) Universe {
	out := u.clone()
	for _, r := range records {
		for _, t := range r.Tags {
			out.add(t)
		}
	}
	return out
}
