package main

import "fmt"

// ── Disc value tables ───────────────────────────────────────────────

// mainStatMax is the fully upgraded main stat value, indexed by Rarity.
var mainStatMax = [3]map[PropID]float64{
	RarityB: {
		PropATKPct: 0.10, PropHPPct: 0.10, PropDEFPct: 0.16,
		PropCrit: 0.08, PropCritDmg: 0.16, PropPENPct: 0.08,
		PropATK: 104, PropHP: 734, PropDEF: 60, PropAnomProf: 32,
		PropFireDmg: 0.10, PropIceDmg: 0.10, PropElectricDmg: 0.10,
		PropPhysicalDmg: 0.10, PropEtherDmg: 0.10,
		PropAnomMasPct: 0.10, PropImpactPct: 0.06, PropEnerRegenPct: 0.20,
		PropImpact: 33,
	},
	RarityA: {
		PropATKPct: 0.20, PropHPPct: 0.20, PropDEFPct: 0.32,
		PropCrit: 0.16, PropCritDmg: 0.32, PropPENPct: 0.16,
		PropATK: 212, PropHP: 1468, PropDEF: 124, PropAnomProf: 60,
		PropFireDmg: 0.20, PropIceDmg: 0.20, PropElectricDmg: 0.20,
		PropPhysicalDmg: 0.20, PropEtherDmg: 0.20,
		PropAnomMasPct: 0.20, PropImpactPct: 0.12, PropEnerRegenPct: 0.40,
		PropImpact: 66,
	},
	RarityS: {
		PropATKPct: 0.30, PropHPPct: 0.30, PropDEFPct: 0.48,
		PropCrit: 0.24, PropCritDmg: 0.48, PropPENPct: 0.24,
		PropATK: 316, PropHP: 2200, PropDEF: 184, PropAnomProf: 92,
		PropFireDmg: 0.30, PropIceDmg: 0.30, PropElectricDmg: 0.30,
		PropPhysicalDmg: 0.30, PropEtherDmg: 0.30,
		PropAnomMasPct: 0.30, PropImpactPct: 0.18, PropEnerRegenPct: 0.60,
		PropImpact: 100,
	},
}

// subStatRoll is the value of one sub stat roll, indexed by Rarity.
var subStatRoll = [3]map[PropID]float64{
	RarityB: {
		PropATK: 7, PropHP: 39, PropDEF: 5, PropPEN: 3, PropAnomProf: 3,
		PropATKPct: 0.01, PropHPPct: 0.01, PropDEFPct: 0.016,
		PropCrit: 0.008, PropCritDmg: 0.016,
	},
	RarityA: {
		PropATK: 15, PropHP: 79, PropDEF: 10, PropPEN: 6, PropAnomProf: 6,
		PropATKPct: 0.02, PropHPPct: 0.02, PropDEFPct: 0.032,
		PropCrit: 0.016, PropCritDmg: 0.032,
	},
	RarityS: {
		PropATK: 19, PropHP: 112, PropDEF: 15, PropPEN: 9, PropAnomProf: 9,
		PropATKPct: 0.03, PropHPPct: 0.03, PropDEFPct: 0.048,
		PropCrit: 0.024, PropCritDmg: 0.048,
	},
}

var maxDiscLevel = [3]int{RarityB: 9, RarityA: 12, RarityS: 15}

// mainStatValue scales the max main stat linearly from 25% at level 0 to
// 100% at max level.
func mainStatValue(r Rarity, p PropID, level int) (float64, error) {
	maxVal, ok := mainStatMax[r][p]
	if !ok {
		return 0, fmt.Errorf("%s is not a %s-rank main stat", p, r)
	}
	maxLevel := maxDiscLevel[r]
	if level < 0 {
		level = 0
	}
	if level > maxLevel {
		level = maxLevel
	}
	return maxVal * (0.25 + 0.75*float64(level)/float64(maxLevel)), nil
}

func subStatValue(r Rarity, p PropID, rolls int) (float64, error) {
	base, ok := subStatRoll[r][p]
	if !ok {
		return 0, fmt.Errorf("%s is not a %s-rank sub stat", p, r)
	}
	return base * float64(rolls), nil
}

// resolveValues fills MainValue and sub values that the document left at zero.
func (d *Disc) resolveValues() error {
	if d.MainValue == 0 {
		v, err := mainStatValue(d.Rarity, d.Main, d.Level)
		if err != nil {
			return fmt.Errorf("disc %s: %w", d.ID, err)
		}
		d.MainValue = v
	}
	for i := range d.Subs {
		s := &d.Subs[i]
		if s.Value != 0 {
			continue
		}
		v, err := subStatValue(d.Rarity, s.Prop, s.Rolls)
		if err != nil {
			return fmt.Errorf("disc %s: %w", d.ID, err)
		}
		s.Value = v
	}
	return nil
}

// Stats returns the disc's own main and sub contribution, without set bonuses.
func (d *Disc) Stats() PropVector {
	var v PropVector
	v[d.Main] += d.MainValue
	for _, s := range d.Subs {
		v[s.Prop] += s.Value
	}
	return v
}

// ── Effective line counts ───────────────────────────────────────────

// lineCounts returns, per effective stat, how many upgrade lines the disc
// carries toward it. The main stat counts as mainScore lines, each sub roll as
// one line, and a flat stat that is not itself effective counts 1/3 toward
// its percent counterpart.
func (d *Disc) lineCounts(effective []PropID, mainScore float64) []float64 {
	var isEffective [NumProps]bool
	for _, e := range effective {
		isEffective[e] = true
	}
	weight := func(have, want PropID) float64 {
		if have == want {
			return 1
		}
		if pct, ok := flatToPercent(have); ok && pct == want && !isEffective[have] {
			return 1.0 / 3
		}
		return 0
	}
	counts := make([]float64, len(effective))
	for k, e := range effective {
		counts[k] = weight(d.Main, e) * mainScore
		for _, s := range d.Subs {
			counts[k] += weight(s.Prop, e) * float64(s.Rolls)
		}
	}
	return counts
}
