package main

import (
	"math"
	"strings"
)

// Anomaly kinds key the disorder formula table. Regular elements use their
// element name; character mechanics add their own kinds.
const (
	kindLieshuang = "lieshuang"
)

// disorderFormulas maps an anomaly kind to its disorder ratio as a function
// of the anomaly time remaining when disorder triggers.
var disorderFormulas = map[string]func(t float64) float64{
	"fire": func(t float64) float64 {
		return disorderBaseRatio + math.Floor(t/0.5)*0.5
	},
	"electric": func(t float64) float64 {
		return disorderBaseRatio + math.Floor(t)*1.25
	},
	"ether": func(t float64) float64 {
		return disorderBaseRatio + math.Floor(t/0.5)*0.625
	},
	"ice": func(t float64) float64 {
		return disorderBaseRatio + math.Floor(t)*0.075
	},
	"physical": func(t float64) float64 {
		return disorderBaseRatio + math.Floor(t)*0.075
	},
	kindLieshuang: func(t float64) float64 {
		return 6.0 + math.Floor(t)*0.75
	},
}

// disorderRatio returns the disorder multiplier for kind with t seconds of
// anomaly remaining. Unknown kinds fall back to the base ratio.
func disorderRatio(kind string, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if f, ok := disorderFormulas[strings.ToLower(kind)]; ok {
		return f(t)
	}
	return disorderBaseRatio
}

// CharacterRule overrides parts of the zone pipeline for one character.
type CharacterRule struct {
	ForceStunned         bool
	StunVulnerabilityCap float64
	AnomalyKind          string  // replaces the element kind in the disorder table
	SpecialRatio         float64 // default ratio of the character's special anomaly
	SpecialThreshold     float64
}

// characterRules is keyed by character id.
var characterRules = map[string]CharacterRule{
	"yeshunguang": {ForceStunned: true, StunVulnerabilityCap: 2.1},
	"miyabi":      {AnomalyKind: kindLieshuang, SpecialThreshold: lieshuangBuildupThreshold},
}

// ruleFor merges the table entry for a character with the document's own
// special-anomaly fields. Document values win.
func ruleFor(c *Character) CharacterRule {
	r := characterRules[strings.ToLower(c.ID)]
	if c.Special.Kind != "" {
		r.AnomalyKind = strings.ToLower(c.Special.Kind)
	}
	if c.Special.Ratio != 0 {
		r.SpecialRatio = c.Special.Ratio
	}
	if r.AnomalyKind == kindLieshuang && r.SpecialThreshold == 0 {
		r.SpecialThreshold = lieshuangBuildupThreshold
	}
	return r
}
