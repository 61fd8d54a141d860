// Package dedup splits a batch of listings into those never seen before and
// those already recorded.
package dedup

import "yad2_tracker/internal/listing"

// SeenSet is the set of listing IDs already recorded. The zero value is not
// usable; use NewSeenSet.
type SeenSet struct {
	ids map[string]struct{}
}

// NewSeenSet builds a set from ids.
func NewSeenSet(ids ...string) SeenSet {
	s := SeenSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s SeenSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add records id.
func (s SeenSet) Add(id string) {
	s.ids[id] = struct{}{}
}

// Len is the number of IDs in the set.
func (s SeenSet) Len() int {
	return len(s.ids)
}

// Partition returns the listings whose ID is not in seen (fresh) and those that
// are (known). The two are disjoint, their union is batch, and input order is
// kept in both.
func Partition(batch []listing.Listing, seen SeenSet) (fresh, known []listing.Listing) {
	fresh = make([]listing.Listing, 0, len(batch))
	known = make([]listing.Listing, 0, len(batch))
	for _, l := range batch {
		if seen.Has(l.ID) {
			known = append(known, l)
		} else {
			fresh = append(fresh, l)
		}
	}
	return fresh, known
}

// Unique drops repeated IDs, keeping the first occurrence. Overlapping
// endpoints commonly return the same ad.
func Unique(batch []listing.Listing) []listing.Listing {
	seen := make(map[string]struct{}, len(batch))
	out := make([]listing.Listing, 0, len(batch))
	for _, l := range batch {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}
