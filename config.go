package main

import (
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EffectiveStatPruning configures line-count scoring of discs.
type EffectiveStatPruning struct {
	// Enabled turns dominance and score-gap pruning on.
	Enabled bool `yaml:"enabled"`
	// EffectiveStats lists the property names that count as useful lines.
	EffectiveStats []string `yaml:"effectiveStats"`
	// MainStatScore is how many lines an effective main stat is worth.
	MainStatScore float64 `yaml:"mainStatScore"`
}

// Config holds the search tuning parameters. Adjust these to trade speed for
// completeness.
type Config struct {
	// TopN is how many builds are returned.
	TopN int `yaml:"topN"`
	// PruneThreshold is the slack of the running score bound. +Inf never prunes.
	PruneThreshold float64 `yaml:"pruneThreshold"`
	// ScoreGapThreshold drops discs more than this many lines below the best
	// disc of their set and slot. Negative disables it.
	ScoreGapThreshold float64 `yaml:"scoreGapThreshold"`
	// Workers is the number of search goroutines.
	Workers int `yaml:"workers"`
	// ProgressInterval is the number of evaluated combinations between
	// progress reports. 0 disables progress.
	ProgressInterval int `yaml:"progressInterval"`

	EffectiveStatPruning EffectiveStatPruning `yaml:"effectiveStatPruning"`

	PinnedSlots map[int]string `yaml:"pinnedSlots"`
	TargetSetID string         `yaml:"targetSetId"`

	// PinWorkers binds each worker to one CPU (Linux only).
	PinWorkers bool   `yaml:"pinWorkers"`
	LogLevel   string `yaml:"logLevel"`
	LogJSON    bool   `yaml:"logJson"`
}

func DefaultConfig() Config {
	return Config{
		TopN:              10,
		PruneThreshold:    math.Inf(1),
		ScoreGapThreshold: 5,
		Workers:           runtime.GOMAXPROCS(0),
		ProgressInterval:  100000,
		EffectiveStatPruning: EffectiveStatPruning{
			Enabled:       true,
			MainStatScore: 10,
		},
		LogLevel: "info",
	}
}

// LoadConfig overlays the YAML file at path on cfg. Keys missing from the
// file keep their current value.
func LoadConfig(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.TopN < 1:
		return fmt.Errorf("topN must be at least 1, got %d", c.TopN)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case math.IsNaN(c.PruneThreshold) || c.PruneThreshold < 0:
		return fmt.Errorf("pruneThreshold must be >= 0, got %v", c.PruneThreshold)
	case math.IsNaN(c.ScoreGapThreshold):
		return fmt.Errorf("scoreGapThreshold is NaN")
	case c.ProgressInterval < 0:
		return fmt.Errorf("progressInterval must be >= 0, got %d", c.ProgressInterval)
	case c.EffectiveStatPruning.MainStatScore < 0:
		return fmt.Errorf("mainStatScore must be >= 0, got %v", c.EffectiveStatPruning.MainStatScore)
	}
	for slot := range c.PinnedSlots {
		if slot < 1 || slot > numSlots {
			return fmt.Errorf("pinned slot %d out of range", slot)
		}
	}
	_, err := c.effectiveProps()
	return err
}

// withConstraints applies the request document's own settings on top of the
// file config. Pinned slots merge per slot.
func (c Config) withConstraints(cons Constraints) Config {
	if cons.TargetSetID != "" {
		c.TargetSetID = cons.TargetSetID
	}
	if cons.Pruning != nil {
		c.EffectiveStatPruning = *cons.Pruning
		if c.EffectiveStatPruning.MainStatScore == 0 {
			c.EffectiveStatPruning.MainStatScore = DefaultConfig().EffectiveStatPruning.MainStatScore
		}
	}
	c.PinnedSlots = c.pinnedSlots(cons)
	return c
}

// pinnedSlots merges config and request pins. The request wins per slot.
func (c Config) pinnedSlots(cons Constraints) map[int]string {
	out := make(map[int]string, len(c.PinnedSlots)+len(cons.PinnedSlots))
	for s, id := range c.PinnedSlots {
		out[s] = id
	}
	for s, id := range cons.PinnedSlots {
		out[s] = id
	}
	return out
}

func (c Config) effectiveProps() ([]PropID, error) {
	props := make([]PropID, 0, len(c.EffectiveStatPruning.EffectiveStats))
	for _, name := range c.EffectiveStatPruning.EffectiveStats {
		p, ok := parsePropID(name)
		if !ok {
			return nil, fmt.Errorf("effective stat %q: %w", name, ErrUnknownProperty)
		}
		props = append(props, p)
	}
	return props, nil
}
