package table

import (
	"slices"
	"strings"
)

// IDSet is a set of row identifiers. Sets are values: every operation that
// changes membership returns a new set, so holders of an older snapshot
// never see it move. A nil IDSet is empty.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, skipping empty strings.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Key is the canonical comparison form: sorted ids joined by commas.
func (s IDSet) Key() string {
	return strings.Join(s.Sorted(), ",")
}

// Equal compares membership.
func (s IDSet) Equal(o IDSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// With returns a copy of s that also holds ids.
func (s IDSet) With(ids ...string) IDSet {
	out := make(IDSet, len(s)+len(ids))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

// Without returns a copy of s minus ids.
func (s IDSet) Without(ids ...string) IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		delete(out, id)
	}
	return out
}
