package main

import (
	"math"
	"sort"
)

// PruneStats counts what candidate pruning removed.
type PruneStats struct {
	Before    int `json:"before"`
	Dominated int `json:"dominated"`
	Gapped    int `json:"gapped"`
	After     int `json:"after"`
}

func (s *PruneStats) add(o PruneStats) {
	s.Before += o.Before
	s.Dominated += o.Dominated
	s.Gapped += o.Gapped
	s.After += o.After
}

// dominates reports whether b is at least a on every counted line and
// strictly more on one.
func dominates(b, a []float64) bool {
	better := false
	for k := range a {
		if b[k] < a[k] {
			return false
		}
		if b[k] > a[k] {
			better = true
		}
	}
	return better
}

// pruneSlot filters one slot's candidates group by group (same set), first
// by dominance and then by score gap, and returns the survivors sorted by
// (set id, score desc, id).
//
// Score-gap pruning is a heuristic. A disc more than gap lines below its
// group's best can still belong to the best loadout. A gap of +Inf or a
// negative gap disables it.
func pruneSlot(cands []Candidate, gap float64, enabled bool) ([]Candidate, PruneStats) {
	st := PruneStats{Before: len(cands)}
	if !enabled || len(cands) <= 1 {
		out := append([]Candidate(nil), cands...)
		sortCandidates(out)
		st.After = len(out)
		return out, st
	}

	groups := make(map[string][]int)
	var order []string
	for i := range cands {
		sid := cands[i].SetID
		if _, ok := groups[sid]; !ok {
			order = append(order, sid)
		}
		groups[sid] = append(groups[sid], i)
	}

	var out []Candidate
	for _, sid := range order {
		idxs := groups[sid]

		removed := make([]bool, len(idxs))
		for i := range idxs {
			a := &cands[idxs[i]]
			for j := range idxs {
				if i == j || removed[j] {
					continue
				}
				if dominates(cands[idxs[j]].Lines, a.Lines) {
					removed[i] = true
					st.Dominated++
					break
				}
			}
		}

		best := math.Inf(-1)
		for i, ci := range idxs {
			if !removed[i] && cands[ci].Score > best {
				best = cands[ci].Score
			}
		}
		for i, ci := range idxs {
			if removed[i] {
				continue
			}
			if gap >= 0 && best-cands[ci].Score > gap {
				st.Gapped++
				continue
			}
			out = append(out, cands[ci])
		}
	}

	sortCandidates(out)
	st.After = len(out)
	return out, st
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].SetID != c[j].SetID {
			return c[i].SetID < c[j].SetID
		}
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].ID < c[j].ID
	})
}
