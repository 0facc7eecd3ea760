package selection

import (
	"sort"

	"github.com/bakkerme/photoselector/internal/core"
)

// ItemSet is an unordered set of gallery item ids.
type ItemSet map[core.ItemID]struct{}

func NewItemSet(ids ...core.ItemID) ItemSet {
	set := make(ItemSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (s ItemSet) Has(id core.ItemID) bool {
	_, ok := s[id]
	return ok
}

func (s ItemSet) Len() int {
	return len(s)
}

// Slice returns the ids sorted, for stable output.
func (s ItemSet) Slice() []core.ItemID {
	out := make([]core.ItemID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s ItemSet) clone() ItemSet {
	out := make(ItemSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}
