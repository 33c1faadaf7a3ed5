package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"
)

// flatInput is the plain-attack scenario: ATK 1000, one physical skill at
// ratio 2, no crit, no defense, one inert disc per slot.
func flatInput() *Input {
	in := &Input{
		Character: Character{ID: "tester", Level: 60},
		Weapon:    Weapon{ID: "w-none"},
		Skills:    []Skill{{Name: "basic", Ratio: 2.0, Element: ElemPhysical}},
	}
	in.Character.Stats[PropATKBase] = 1000
	for slot := 1; slot <= numSlots; slot++ {
		in.Discs = append(in.Discs, Disc{
			ID:     fmt.Sprintf("d%d", slot),
			SetID:  "inert",
			Slot:   slot,
			Rarity: RarityS,
			Level:  15,
			Main:   PropHP,
		})
	}
	return in
}

var (
	slotMains = [numSlots][]PropID{
		{PropHP},
		{PropATK},
		{PropDEF},
		{PropATKPct, PropCrit, PropCritDmg, PropAnomProf},
		{PropATKPct, PropPENPct, PropFireDmg, PropPhysicalDmg},
		{PropATKPct, PropAnomMasPct, PropImpactPct},
	}
	randomSubs = []PropID{PropATKPct, PropCrit, PropCritDmg, PropPEN, PropAnomProf, PropHP, PropDEF, PropHPPct}
)

// randomInput builds a deterministic pool of perSlot discs per slot spread
// over nSets sets. Every disc carries a flat ATK sub with a continuous value
// so that no two loadouts tie on damage.
func randomInput(seed int64, perSlot, nSets int) *Input {
	rng := rand.New(rand.NewSource(seed))
	in := &Input{
		Character: Character{ID: "random", Level: 60},
		Weapon:    Weapon{ID: "w1"},
		Enemy: Enemy{
			Level:       70,
			Defense:     953,
			Resistances: map[Element]float64{ElemFire: 0.2},
		},
		Skills: []Skill{
			{Name: "slash", Ratio: 3.5, Element: ElemPhysical, Buildup: 40, Tags: []SkillTag{TagNormal}},
			{Name: "burst", Ratio: 8.0, Element: ElemFire, Buildup: 60, Tags: []SkillTag{TagUltimate}},
		},
	}
	in.Character.Stats[PropATKBase] = 900
	in.Character.Stats[PropHPBase] = 7600
	in.Character.Stats[PropDEFBase] = 600
	in.Character.Stats[PropCrit] = 0.05
	in.Character.Stats[PropCritDmg] = 0.5
	in.Character.Stats[PropAnomMasBase] = 110
	in.Character.Stats[PropAnomProf] = 90
	in.Weapon.Stats[PropATKBase] = 680
	in.Weapon.Stats[PropCrit] = 0.24

	for s := 0; s < nSets; s++ {
		set := SetBonus{ID: fmt.Sprintf("set%d", s)}
		switch s % 3 {
		case 0:
			set.TwoPiece[PropATKPct] = 0.10
			set.FourPiece[PropCrit] = 0.08
			set.FourPieceBuff[PropDmg] = 0.20
		case 1:
			set.TwoPiece[PropFireDmg] = 0.10
			set.FourPieceBuff[PropATKPct] = 0.09
		case 2:
			set.TwoPiece[PropCritDmg] = 0.16
		}
		in.Sets = append(in.Sets, set)
	}

	for slot := 1; slot <= numSlots; slot++ {
		mains := slotMains[slot-1]
		for i := 0; i < perSlot; i++ {
			d := Disc{
				ID:     fmt.Sprintf("s%d-%02d", slot, i),
				SetID:  fmt.Sprintf("set%d", rng.Intn(nSets)),
				Slot:   slot,
				Rarity: RarityS,
				Level:  15,
				Main:   mains[rng.Intn(len(mains))],
			}
			d.Subs = append(d.Subs, SubStat{Prop: PropATK, Rolls: 1, Value: 1 + rng.Float64()*60})
			perm := rng.Perm(len(randomSubs))
			for _, k := range perm[:3] {
				d.Subs = append(d.Subs, SubStat{Prop: randomSubs[k], Rolls: 1 + rng.Intn(3)})
			}
			in.Discs = append(in.Discs, d)
		}
	}
	return in
}

// exactConfig disables every heuristic so that results equal brute force.
func exactConfig() Config {
	cfg := DefaultConfig()
	cfg.ScoreGapThreshold = -1
	cfg.PruneThreshold = math.Inf(1)
	cfg.EffectiveStatPruning.Enabled = false
	cfg.ProgressInterval = 0
	cfg.Workers = 3
	return cfg
}

func mustBuildRequest(t *testing.T, in *Input, cfg Config) *Request {
	t.Helper()
	req, err := BuildRequest(in, cfg)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	return req
}

type scored struct {
	key    string
	damage float64
}

// bruteForce evaluates every combination of the request's candidate lists
// and returns the best k, best first.
func bruteForce(req *Request, k int) []scored {
	var all []scored
	var idx [numSlots]int
	var walk func(slot int)
	walk = func(slot int) {
		if slot == numSlots {
			var picks [numSlots]*Candidate
			targets := 0
			for s := range picks {
				picks[s] = &req.Slots[s][idx[s]]
				if picks[s].IsTarget {
					targets++
				}
			}
			if req.TargetSetID != "" && targets < setPieces {
				return
			}
			e := NewEvaluator(req, true)
			ids := make([]string, numSlots)
			for s, c := range picks {
				e.Push(c)
				ids[s] = c.ID
			}
			all = append(all, scored{strings.Join(ids, ","), e.Evaluate()})
			return
		}
		for i := range req.Slots[slot] {
			idx[slot] = i
			walk(slot + 1)
		}
	}
	walk(0)
	sort.Slice(all, func(i, j int) bool { return all[i].damage > all[j].damage })
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func buildKey(b *Build) string {
	return strings.Join(b.DiscIDs[:], ",")
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

const fixtureDoc = `{
  "character": {
    "id": "miyabi", "name": "Miyabi", "level": 60,
    "stats": {"ATK_BASE": 880, "HP_BASE": 7673, "DEF_BASE": 606, "CRIT_": 0.194, "CRIT_DMG_": 0.5, "ANOM_MAS_BASE": 116, "ANOM_PROF": 92},
    "combatStats": {"ICE_DMG_": 0.3},
    "specialAnomaly": {"kind": "lieshuang", "ratio": 15}
  },
  "weapon": {"id": "hailstorm", "name": "Hailstorm Shrine", "stats": {"ATK_BASE": 743, "CRIT_": 0.24}, "combatStats": {"ICE_DMG_": 0.2}},
  "modifiers": [
    {"id": "m1", "source": "teammate", "phase": "combat", "stats": {"ATK": 1000, "DMG_": 0.2}},
    {"id": "m2", "source": "core", "phase": "static", "stats": {"ATK_": 0.1}},
    {"id": "m3", "kind": "conversion", "from": "ANOM_PROF", "to": "ATK", "ratio": 2, "threshold": 100, "cap": 600}
  ],
  "sets": [
    {"id": "branch", "name": "Branch & Blade Song", "twoPiece": {"CRIT_DMG_": 0.16}, "fourPiece": {"CRIT_DMG_": 0.3}, "fourPieceBuff": {"CRIT_": 0.12}},
    {"id": "polar", "name": "Polar Metal", "twoPiece": {"ICE_DMG_": 0.1}},
    {"id": "woodpecker", "twoPiece": {"CRIT_": 0.08}}
  ],
  "discs": [
    {"id": "b1", "setId": "branch", "slot": 1, "rarity": "S", "level": 15, "main": "HP", "subs": {"CRIT_": 2, "ATK_": 1, "PEN": 1, "CRIT_DMG_": 1}},
    {"id": "b2", "setId": "branch", "slot": 2, "rarity": "S", "level": 15, "main": "ATK", "subs": {"CRIT_": 1, "CRIT_DMG_": 3}},
    {"id": "b3", "setId": "branch", "slot": 3, "rarity": "S", "level": 15, "main": "DEF", "subs": {"ATK_": 2, "CRIT_": {"rolls": 1, "value": 0.03}}},
    {"id": "b4", "setId": "branch", "slot": 4, "rarity": "S", "level": 15, "main": "CRIT_DMG_", "subs": {"ATK": 2, "CRIT_": 2}},
    {"id": "p5", "setId": "polar", "slot": 5, "rarity": "S", "level": 15, "main": "ICE_DMG_", "subs": {"ATK_": 3}},
    {"id": "p6", "setId": "polar", "slot": 6, "rarity": "A", "level": 12, "main": "ATK_", "mainValue": 0.2, "subs": {"CRIT_DMG_": 2}},
    {"id": "w5", "setId": "woodpecker", "slot": 5, "rarity": "S", "level": 15, "main": "ATK_", "subs": {"CRIT_": 1}},
    {"id": "w6", "setId": "woodpecker", "slot": 6, "rarity": "S", "level": 15, "main": "ATK_", "subs": {"CRIT_": 2}}
  ],
  "enemy": {"level": 70, "defense": 953, "resistances": {"ice": -0.2, "fire": 0.2}, "stunned": false,
            "stunVulnerability": 1.5, "corruptionShield": false, "thresholds": {"202": 600}, "distance": 10, "decay": "default"},
  "skills": [
    {"name": "ex special", "ratio": 12.5, "element": "ice", "buildup": 450, "tags": ["special", "enhanced"]},
    {"name": "ultimate", "ratio": 40, "element": 202, "buildup": 900, "tags": ["ultimate"]}
  ],
  "constraints": {
    "targetSetId": "branch",
    "mainStatFilters": {"4": ["CRIT_", "CRIT_DMG_"]},
    "pinnedSlots": {},
    "excludedDiscIds": ["x9"],
    "effectiveStatPruning": {"enabled": true, "effectiveStats": ["ATK_", "CRIT_", "CRIT_DMG_"], "mainStatScore": 10}
  }
}`
