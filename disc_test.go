package main

import (
	"math"
	"testing"
)

func TestMainStatValue(t *testing.T) {
	tests := []struct {
		r     Rarity
		p     PropID
		level int
		want  float64
	}{
		{RarityS, PropATKPct, 15, 0.30},
		{RarityS, PropATKPct, 0, 0.075},
		{RarityS, PropATK, 15, 316},
		{RarityA, PropCrit, 12, 0.16},
		{RarityB, PropHP, 9, 734},
		{RarityS, PropATKPct, 99, 0.30}, // clamped to max level
	}
	for _, tt := range tests {
		got, err := mainStatValue(tt.r, tt.p, tt.level)
		if err != nil {
			t.Fatalf("mainStatValue(%s, %s, %d): %v", tt.r, tt.p, tt.level, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("mainStatValue(%s, %s, %d) = %v, want %v", tt.r, tt.p, tt.level, got, tt.want)
		}
	}
	if _, err := mainStatValue(RarityS, PropSheerDmg, 15); err == nil {
		t.Error("expected error for a property that is never a main stat")
	}
}

func TestResolveValues(t *testing.T) {
	d := Disc{
		ID: "d", Rarity: RarityS, Level: 15, Main: PropCritDmg,
		Subs: []SubStat{{Prop: PropCrit, Rolls: 3}, {Prop: PropATK, Rolls: 1, Value: 42}},
	}
	if err := d.resolveValues(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.MainValue-0.48) > 1e-9 {
		t.Errorf("main value = %v", d.MainValue)
	}
	if math.Abs(d.Subs[0].Value-0.072) > 1e-9 {
		t.Errorf("crit sub = %v, want 0.072", d.Subs[0].Value)
	}
	if d.Subs[1].Value != 42 {
		t.Errorf("explicit sub value overwritten: %v", d.Subs[1].Value)
	}
	stats := d.Stats()
	if stats[PropATK] != 42 || math.Abs(stats[PropCritDmg]-0.48) > 1e-9 {
		t.Errorf("Stats = ATK %v CRIT_DMG %v", stats[PropATK], stats[PropCritDmg])
	}

	bad := Disc{ID: "bad", Rarity: RarityS, Main: PropATK, Subs: []SubStat{{Prop: PropSheerForce, Rolls: 1}}}
	if err := bad.resolveValues(); err == nil {
		t.Error("expected error for unknown sub stat")
	}
}

func TestLineCounts(t *testing.T) {
	d := Disc{
		Main: PropATKPct,
		Subs: []SubStat{
			{Prop: PropATK, Rolls: 3},
			{Prop: PropCrit, Rolls: 2},
			{Prop: PropHP, Rolls: 4},
		},
	}

	t.Run("flat counts toward percent", func(t *testing.T) {
		got := d.lineCounts([]PropID{PropATKPct, PropCrit}, 10)
		want := []float64{10 + 1, 2}
		for k := range want {
			if math.Abs(got[k]-want[k]) > 1e-9 {
				t.Errorf("line %d = %v, want %v", k, got[k], want[k])
			}
		}
	})

	t.Run("effective flat is not double counted", func(t *testing.T) {
		got := d.lineCounts([]PropID{PropATKPct, PropATK}, 10)
		if got[0] != 10 || got[1] != 3 {
			t.Errorf("lines = %v, want [10 3]", got)
		}
	})
}
