package main

import (
	"math"
	"sort"
	"strings"
)

// ── Bounded top-K ───────────────────────────────────────────────────

type topEntry struct {
	damage float64
	score  float64 // effective line score of the loadout
	seq    int64   // arrival order inside the worker
	picks  [numSlots]int32
}

// less orders the heap root as the entry to evict first. On equal damage
// the later arrival is evicted, so the earlier one wins.
func (a *topEntry) less(b *topEntry) bool {
	if a.damage != b.damage {
		return a.damage < b.damage
	}
	return a.seq > b.seq
}

// topK is a fixed-capacity binary min-heap keyed by damage.
type topK struct {
	cap      int
	items    []topEntry
	seq      int64
	minScore float64
}

func newTopK(k int) *topK {
	if k < 1 {
		k = 1
	}
	return &topK{cap: k, items: make([]topEntry, 0, k), minScore: math.Inf(1)}
}

func (h *topK) full() bool { return len(h.items) >= h.cap }

// minDamage is the damage a newcomer must beat once the heap is full.
func (h *topK) minDamage() float64 {
	if len(h.items) == 0 {
		return math.Inf(-1)
	}
	return h.items[0].damage
}

// offer inserts the entry if it belongs in the top K and reports whether it
// was kept.
func (h *topK) offer(damage, score float64, picks [numSlots]int32) bool {
	h.seq++
	en := topEntry{damage: damage, score: score, seq: h.seq, picks: picks}
	if !h.full() {
		h.items = append(h.items, en)
		h.up(len(h.items) - 1)
		h.minScore = math.Min(h.minScore, score)
		return true
	}
	if !(damage > h.items[0].damage) {
		return false
	}
	evicted := h.items[0].score
	h.items[0] = en
	h.down(0)
	if evicted > h.minScore {
		h.minScore = math.Min(h.minScore, score)
	} else {
		h.rescanScore()
	}
	return true
}

// rescanScore recomputes minScore after the entry holding it was evicted.
func (h *topK) rescanScore() {
	h.minScore = math.Inf(1)
	for i := range h.items {
		h.minScore = math.Min(h.minScore, h.items[i].score)
	}
}

func (h *topK) up(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.items[i].less(&h.items[p]) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *topK) down(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		m := l
		if r := l + 1; r < n && h.items[r].less(&h.items[l]) {
			m = r
		}
		if !h.items[m].less(&h.items[i]) {
			return
		}
		h.items[i], h.items[m] = h.items[m], h.items[i]
		i = m
	}
}

// sorted returns the entries best first.
func (h *topK) sorted() []topEntry {
	out := append([]topEntry(nil), h.items...)
	sort.Slice(out, func(i, j int) bool { return out[j].less(&out[i]) })
	return out
}

// ── Merge ───────────────────────────────────────────────────────────

// mergeTopK concatenates per-worker lists and keeps the best k. Equal
// damage is ordered by disc ids so the result does not depend on the order
// workers finished in.
func mergeTopK(lists [][]Build, k int) []Build {
	var all []Build
	for _, l := range lists {
		all = append(all, l...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].raw != all[j].raw {
			return all[i].raw > all[j].raw
		}
		return strings.Join(all[i].DiscIDs[:], ",") < strings.Join(all[j].DiscIDs[:], ",")
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}
