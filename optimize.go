package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// optimize builds the request for in and runs the full search.
func optimize(ctx context.Context, in *Input, cfg Config) (*Request, *RunResult, error) {
	req, err := BuildRequest(in, cfg)
	if err != nil {
		return nil, nil, err
	}
	logRequest(req, cfg)
	res, err := NewRun(req, cfg).Execute(ctx)
	if err != nil {
		return req, nil, err
	}
	if len(res.Builds) == 0 {
		log.Warn().Str("targetSet", req.TargetSetID).Msg("[done] no loadout satisfies the constraints")
	}
	return req, res, nil
}

// evaluateIDs scores one explicit loadout through the same evaluator.
func evaluateIDs(in *Input, ids []string, cfg Config) (Build, error) {
	if err := pinLoadout(in, ids); err != nil {
		return Build{}, err
	}
	cfg.PinnedSlots = nil
	cfg.EffectiveStatPruning.Enabled = false
	req, err := BuildRequest(in, cfg)
	if err != nil {
		return Build{}, err
	}
	b, err := EvaluateLoadout(req)
	if err != nil {
		return Build{}, fmt.Errorf("evaluate: %w", err)
	}
	return b, nil
}

func logRequest(req *Request, cfg Config) {
	sizes := make([]int, numSlots)
	for s := range req.Slots {
		sizes[s] = len(req.Slots[s])
	}
	log.Info().
		Str("character", req.CharacterID).
		Str("weapon", req.WeaponID).
		Str("targetSet", req.TargetSetID).
		Ints("slotSizes", sizes).
		Int("skills", len(req.Skills)).
		Int("conversions", len(req.Conversions)).
		Msg("[init] request built")
	if cfg.EffectiveStatPruning.Enabled {
		log.Info().
			Int("before", req.Pruning.Before).
			Int("dominated", req.Pruning.Dominated).
			Int("gapped", req.Pruning.Gapped).
			Int("after", req.Pruning.After).
			Float64("scoreGapThreshold", cfg.ScoreGapThreshold).
			Msg("[prune] score-gap pruning is approximate and may drop the best loadout")
	}
}
