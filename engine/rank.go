package engine

import (
	"sort"

	"flowtop/model"
)

// Rank returns the groups ordered by the sort column, highest first, cut
// to at most limit rows. Ties break by label then remote, both ascending,
// so identical inputs always produce identical ordering and idle rows do
// not shuffle between ticks.
func Rank(groups []model.Group, key model.SortKey, limit int) []model.Group {
	out := make([]model.Group, len(groups))
	copy(out, groups)
	sort.Slice(out, func(i, j int) bool {
		vi, vj := key.Value(out[i]), key.Value(out[j])
		if vi != vj {
			return vi > vj
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Remote < out[j].Remote
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
