package main

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrWorkerFault = errors.New("worker fault")
	ErrCancelled   = errors.New("search cancelled")
)

// RunResult is the merged outcome of one optimization.
type RunResult struct {
	Builds       []Build
	Combinations int64
	Processed    int64
	Pruned       int64
	Workers      int
	Pruning      PruneStats
	Elapsed      time.Duration
}

// Run is the context of one optimization: its config, the shared request
// and the aggregated counters. Nothing about a run lives in package state.
type Run struct {
	cfg Config
	req *Request

	// work executes one shard; tests swap it to inject faults.
	work func(ctx context.Context, wr WorkerRequest, out chan<- workerMsg)

	mu       sync.Mutex
	progress map[int]Progress
}

func NewRun(req *Request, cfg Config) *Run {
	return &Run{
		cfg:      cfg,
		req:      req,
		work:     searchWorker,
		progress: make(map[int]Progress),
	}
}

// Progress returns the summed latest progress of all workers.
func (r *Run) Progress() (processed, pruned int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.progress {
		processed += p.ProcessedCount
		pruned += p.PrunedCount
	}
	return processed, pruned
}

func (r *Run) workerCount() int {
	n := r.cfg.Workers
	if n < 1 {
		n = 1
	}
	// More workers than outer candidates would leave some with empty shards.
	outer := len(r.req.Slots[slotOrder(r.req)[0]])
	if outer > 0 && n > outer {
		n = outer
	}
	return n
}

// Execute runs all shards in parallel and merges their top lists. The first
// worker error cancels the remaining workers and fails the run.
func (r *Run) Execute(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := r.workerCount()
	log.Info().
		Int("workers", n).
		Int64("combinations", r.req.Combinations()).
		Float64("pruneThreshold", r.cfg.PruneThreshold).
		Msg("[search] starting")

	msgs := make(chan workerMsg, n*2)
	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wr := WorkerRequest{
			Request:          r.req,
			WorkerID:         w,
			TotalWorkers:     n,
			TopN:             r.cfg.TopN,
			PruneThreshold:   r.cfg.PruneThreshold,
			ProgressInterval: r.cfg.ProgressInterval,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					log.Debug().Bytes("stack", debug.Stack()).Int("worker", wr.WorkerID).Msg("[search] worker panic")
					msgs <- workerMsg{Err: &WorkerError{WorkerID: wr.WorkerID, Message: fmt.Sprint(p)}}
				}
			}()
			if r.cfg.PinWorkers {
				if err := pinWorker(wr.WorkerID); err != nil {
					log.Warn().Err(err).Int("worker", wr.WorkerID).Msg("[search] cpu pinning failed")
				}
			}
			r.work(ctx, wr, msgs)
		}()
	}
	go func() {
		wg.Wait()
		close(msgs)
	}()

	res := &RunResult{
		Combinations: r.req.Combinations(),
		Workers:      n,
		Pruning:      r.req.Pruning,
	}
	var lists [][]Build
	var fault *WorkerError
	for m := range msgs {
		switch {
		case m.Err != nil:
			if fault == nil {
				fault = m.Err
				cancel()
			}
		case m.Progress != nil:
			r.mu.Lock()
			r.progress[m.Progress.WorkerID] = *m.Progress
			r.mu.Unlock()
			log.Debug().
				Int("worker", m.Progress.WorkerID).
				Int64("processed", m.Progress.ProcessedCount).
				Int64("pruned", m.Progress.PrunedCount).
				Int64("elapsedMs", m.Progress.ElapsedMs).
				Msg("[search] progress")
		case m.Result != nil:
			lists = append(lists, m.Result.Builds)
			res.Processed += m.Result.Stats.TotalProcessed
			res.Pruned += m.Result.Stats.PrunedCount
			log.Debug().
				Int("worker", m.Result.WorkerID).
				Int64("processed", m.Result.Stats.TotalProcessed).
				Int64("pruned", m.Result.Stats.PrunedCount).
				Int64("timeMs", m.Result.Stats.TimeMs).
				Msg("[search] worker done")
		}
	}
	res.Elapsed = time.Since(start)

	if fault != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkerFault, fault)
	}
	if len(lists) < n {
		return nil, fmt.Errorf("%w: %d of %d workers finished", ErrCancelled, len(lists), n)
	}

	res.Builds = mergeTopK(lists, r.cfg.TopN)
	log.Info().
		Int("builds", len(res.Builds)).
		Int64("processed", res.Processed).
		Int64("pruned", res.Pruned).
		Dur("elapsed", res.Elapsed).
		Msg("[done] search finished")
	return res, nil
}
