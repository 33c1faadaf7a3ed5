package main

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ── Worker protocol ─────────────────────────────────────────────────

// WorkerRequest starts one shard of the search.
type WorkerRequest struct {
	Request          *Request
	WorkerID         int
	TotalWorkers     int
	TopN             int
	PruneThreshold   float64
	ProgressInterval int
}

// Progress is reported every ProgressInterval evaluated combinations.
type Progress struct {
	WorkerID       int
	ProcessedCount int64
	PrunedCount    int64
	ElapsedMs      int64
}

type WorkerStats struct {
	TotalProcessed int64
	PrunedCount    int64
	TimeMs         int64
}

// WorkerResult is sent once by a worker that ran its shard to completion.
type WorkerResult struct {
	WorkerID int
	Builds   []Build
	Stats    WorkerStats
}

// WorkerError reports a fault inside one worker.
type WorkerError struct {
	WorkerID int
	Message  string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %s", e.WorkerID, e.Message)
}

// workerMsg carries exactly one of its fields.
type workerMsg struct {
	Progress *Progress
	Result   *WorkerResult
	Err      *WorkerError
}

// ── Search ──────────────────────────────────────────────────────────

const (
	setPieces   = 4
	cancelCheck = 1 << 12
)

type searcher struct {
	ctx context.Context
	req *Request
	wr  WorkerRequest
	out chan<- workerMsg

	eval *Evaluator
	top  *topK

	order     [numSlots]int       // stage -> slot
	subtree   [numSlots + 1]int64 // combinations below a stage
	suffixMax [numSlots + 1]float64
	picks     [numSlots]int32 // slot -> candidate index

	hasTarget    bool
	processed    int64
	pruned       int64
	nextProgress int64
	start        time.Time
	cancelled    bool
}

// slotOrder puts the slot with the most candidates first, where the shard
// split happens, and the rest by ascending size.
func slotOrder(req *Request) [numSlots]int {
	var order [numSlots]int
	for i := range order {
		order[i] = i
	}
	size := func(s int) int { return len(req.Slots[s]) }
	outer := 0
	for s := 1; s < numSlots; s++ {
		if size(s) > size(outer) {
			outer = s
		}
	}
	order[0], order[outer] = order[outer], order[0]
	rest := order[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		if size(rest[i]) != size(rest[j]) {
			return size(rest[i]) < size(rest[j])
		}
		return rest[i] < rest[j]
	})
	return order
}

func newSearcher(ctx context.Context, wr WorkerRequest, out chan<- workerMsg) *searcher {
	req := wr.Request
	s := &searcher{
		ctx:       ctx,
		req:       req,
		wr:        wr,
		out:       out,
		eval:      NewEvaluator(req, true),
		top:       newTopK(wr.TopN),
		order:     slotOrder(req),
		hasTarget: req.TargetSetID != "",
		start:     time.Now(),
	}
	if s.wr.TotalWorkers < 1 {
		s.wr.TotalWorkers = 1
	}
	if wr.ProgressInterval > 0 {
		s.nextProgress = int64(wr.ProgressInterval)
	}

	s.subtree[numSlots] = 1
	for d := numSlots - 1; d >= 0; d-- {
		cands := req.Slots[s.order[d]]
		s.subtree[d] = s.subtree[d+1] * int64(len(cands))
		best := 0.0
		for i := range cands {
			if i == 0 || cands[i].Score > best {
				best = cands[i].Score
			}
		}
		s.suffixMax[d] = s.suffixMax[d+1] + best
	}
	return s
}

// searchWorker runs one shard and reports over out. A cancelled worker
// sends no result.
func searchWorker(ctx context.Context, wr WorkerRequest, out chan<- workerMsg) {
	s := newSearcher(ctx, wr, out)
	s.descend(0, 0)
	if s.cancelled {
		return
	}
	out <- workerMsg{Result: s.result()}
}

func (s *searcher) descend(depth int, partial float64) {
	if depth == numSlots {
		s.leaf(partial)
		return
	}
	slot := s.order[depth]
	cands := s.req.Slots[slot]
	remaining := numSlots - depth - 1

	for i := range cands {
		if depth == 0 && i%s.wr.TotalWorkers != s.wr.WorkerID {
			continue
		}
		if s.cancelled {
			return
		}
		if depth == 0 && s.ctx.Err() != nil {
			s.cancelled = true
			return
		}
		c := &cands[i]

		if s.hasTarget {
			have := s.eval.targetCount
			if c.IsTarget {
				have++
			}
			if have+remaining < setPieces {
				s.pruned += s.subtree[depth+1]
				continue
			}
		}
		if s.top.full() && partial+c.Score+s.suffixMax[depth+1] < s.top.minScore-s.wr.PruneThreshold {
			s.pruned += s.subtree[depth+1]
			continue
		}

		s.picks[slot] = int32(i)
		s.eval.Push(c)
		s.descend(depth+1, partial+c.Score)
		s.eval.Pop(c)
	}
}

func (s *searcher) leaf(partial float64) {
	s.top.offer(s.eval.Evaluate(), partial, s.picks)
	s.processed++

	if s.nextProgress > 0 && s.processed >= s.nextProgress {
		s.nextProgress += int64(s.wr.ProgressInterval)
		s.out <- workerMsg{Progress: &Progress{
			WorkerID:       s.wr.WorkerID,
			ProcessedCount: s.processed,
			PrunedCount:    s.pruned,
			ElapsedMs:      time.Since(s.start).Milliseconds(),
		}}
	}
	if s.processed%cancelCheck == 0 && s.ctx.Err() != nil {
		s.cancelled = true
	}
}

func (s *searcher) result() *WorkerResult {
	entries := s.top.sorted()
	builds := make([]Build, 0, len(entries))
	for _, en := range entries {
		var picks [numSlots]*Candidate
		for slot, idx := range en.picks {
			picks[slot] = &s.req.Slots[slot][idx]
		}
		b := renderBuild(s.req, picks)
		b.raw = en.damage
		builds = append(builds, b)
	}
	return &WorkerResult{
		WorkerID: s.wr.WorkerID,
		Builds:   builds,
		Stats: WorkerStats{
			TotalProcessed: s.processed,
			PrunedCount:    s.pruned,
			TimeMs:         time.Since(s.start).Milliseconds(),
		},
	}
}

// ── Single loadout ──────────────────────────────────────────────────

// EvaluateLoadout scores the only combination of a request whose slots
// are all pinned.
func EvaluateLoadout(req *Request) (Build, error) {
	var picks [numSlots]*Candidate
	for s := range req.Slots {
		if len(req.Slots[s]) != 1 {
			return Build{}, fmt.Errorf("slot %d has %d candidates, want 1", s+1, len(req.Slots[s]))
		}
		picks[s] = &req.Slots[s][0]
	}
	return renderBuild(req, picks), nil
}
