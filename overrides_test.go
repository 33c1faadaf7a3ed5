package main

import (
	"math"
	"testing"
)

func TestDisorderRatio(t *testing.T) {
	const remaining = anomalyDefaultDuration - anomalyWindowT1
	tests := []struct {
		kind string
		want float64
	}{
		{"fire", 4.5 + 14*0.5},
		{"electric", 4.5 + 7*1.25},
		{"ether", 4.5 + 14*0.625},
		{"ice", 4.5 + 7*0.075},
		{"physical", 4.5 + 7*0.075},
		{"LieShuang", 6.0 + 7*0.75},
		{"unknown", disorderBaseRatio},
	}
	for _, tt := range tests {
		if got := disorderRatio(tt.kind, remaining); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("disorderRatio(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
	if got := disorderRatio("fire", -3); got != disorderBaseRatio {
		t.Errorf("negative time = %v", got)
	}
}

func TestRuleFor(t *testing.T) {
	r := ruleFor(&Character{ID: "YeShunGuang"})
	if !r.ForceStunned || r.StunVulnerabilityCap != 2.1 {
		t.Errorf("yeshunguang rule = %+v", r)
	}

	r = ruleFor(&Character{ID: "miyabi", Special: SpecialAnomaly{Ratio: 12}})
	if r.AnomalyKind != kindLieshuang || r.SpecialRatio != 12 || r.SpecialThreshold != lieshuangBuildupThreshold {
		t.Errorf("miyabi rule = %+v", r)
	}

	r = ruleFor(&Character{ID: "someone", Special: SpecialAnomaly{Kind: "Lieshuang", Ratio: 3}})
	if r.AnomalyKind != kindLieshuang || r.SpecialThreshold != lieshuangBuildupThreshold {
		t.Errorf("document special kind not applied: %+v", r)
	}

	if r := ruleFor(&Character{ID: "nobody"}); r != (CharacterRule{}) {
		t.Errorf("unknown character got rule %+v", r)
	}
}
