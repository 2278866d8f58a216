package reqsketch

import "sort"

// auxEntry is one row of the sort-merged, weighted auxiliary view.
type auxEntry struct {
	value      float32
	cumWeight  uint64 // cumulative weight up to and including this row
	normalRank float64
}

// auxiliaryView is the one-shot sorted array built across every level,
// used to answer quantile queries by binary search. It is rebuilt
// lazily by the sketch on the first quantile query after a mutation,
// and invalidated (dropped) on every subsequent mutating call.
type auxiliaryView struct {
	entries []auxEntry
	totalN  uint64
}

// buildAuxiliaryView collects every item from every level, tags each
// with its level's weight, sorts by value, and accumulates a
// normalized-rank column.
func buildAuxiliaryView(compactors []*compactor, totalN uint64) *auxiliaryView {
	type weighted struct {
		value  float32
		weight uint64
	}
	total := 0
	for _, c := range compactors {
		total += c.buf.Len()
	}
	flat := make([]weighted, 0, total)
	for _, c := range compactors {
		w := uint64(1) << uint(c.lgWeight)
		for _, v := range c.buf.Slice() {
			flat = append(flat, weighted{value: v, weight: w})
		}
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].value < flat[j].value })

	entries := make([]auxEntry, len(flat))
	var cum uint64
	for i, f := range flat {
		cum += f.weight
		entries[i] = auxEntry{value: f.value, cumWeight: cum}
	}
	for i := range entries {
		if totalN > 0 {
			entries[i].normalRank = float64(entries[i].cumWeight) / float64(totalN)
		}
	}
	return &auxiliaryView{entries: entries, totalN: totalN}
}

// quantile returns the value whose row is the first to satisfy the
// rank predicate implied by crit: for LT/LE, the first row with
// normalRank >= r; for GT/GE, the first row with normalRank > r.
// ok is false when no row satisfies the predicate (e.g. r == 1 under
// GT/GE-style search, since no row's normalized rank exceeds 1).
func (a *auxiliaryView) quantile(r float64, crit Criterion) (float32, bool) {
	n := len(a.entries)
	if n == 0 {
		return 0, false
	}
	var idx int
	if crit == GT || crit == GE {
		idx = sort.Search(n, func(i int) bool { return a.entries[i].normalRank > r })
	} else {
		idx = sort.Search(n, func(i int) bool { return a.entries[i].normalRank >= r })
	}
	if idx == n {
		return 0, false
	}
	return a.entries[idx].value, true
}
