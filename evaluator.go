package main

import "math"

// Breakdown splits a build's expected damage into its parts.
type Breakdown struct {
	Direct   float64 `json:"direct"`
	Anomaly  float64 `json:"anomaly"`
	Disorder float64 `json:"disorder"`
	Special  float64 `json:"special"`
}

func (b Breakdown) Total() float64 {
	return b.Direct + b.Anomaly + b.Disorder + b.Special
}

// Panel holds the resolved in-combat stats of a build.
type Panel struct {
	ATK        float64 `json:"atk"`
	HP         float64 `json:"hp"`
	DEF        float64 `json:"def"`
	Impact     float64 `json:"impact"`
	AnomMas    float64 `json:"anomalyMastery"`
	SheerForce float64 `json:"sheerForce,omitempty"`
}

// Build is one ranked loadout.
type Build struct {
	DiscIDs      [numSlots]string
	WeaponID     string
	Damage       float64
	Breakdown    Breakdown
	Panel        Panel
	Stats        PropVector
	TwoPieceSets []string
	FourPieceSet string

	raw float64 // unrounded damage, used for ranking
}

func toFixed2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundUp is the display rounding of every damage figure.
func roundUp(v float64) float64 {
	return math.Ceil(toFixed2(v))
}

// ── Evaluator ───────────────────────────────────────────────────────

// Evaluator owns the mutable buffers of one worker. The accumulator is
// maintained incrementally with Push and Pop while the search descends.
type Evaluator struct {
	req    *Request
	acc    PropVector // static stats: base, target set bonus, pushed discs
	combat PropVector // combat-phase aggregate
	buf    PropVector // evalBuffer scratch
	conv   []float64  // conversion results, one per rule

	setCount    []int
	targetCount int
	withTarget  bool
	fullStats   bool
}

// NewEvaluator returns an evaluator positioned at the empty loadout. With
// withTarget set, the target set's 2-piece and 4-piece bonuses are part of
// the baseline; the search guarantees four target discs on every leaf.
func NewEvaluator(req *Request, withTarget bool) *Evaluator {
	e := &Evaluator{
		req:        req,
		conv:       make([]float64, len(req.Conversions)),
		setCount:   make([]int, len(req.SetIDs)),
		withTarget: withTarget && req.TargetSetID != "",
	}
	e.acc = req.Base
	e.combat = req.Combat
	if e.withTarget {
		e.acc.Add(&req.TargetTwoPiece)
		e.acc.Add(&req.TargetFourPiece)
		e.combat.Add(&req.TargetBuff)
	}
	return e
}

func (e *Evaluator) delta(c *Candidate) SparseDelta {
	if e.fullStats {
		return c.Full
	}
	return c.Delta
}

// Push adds a disc to the accumulator. A set reaching two pieces adds its
// 2-piece bonus, except the target set when its bonus is in the baseline.
func (e *Evaluator) Push(c *Candidate) {
	e.acc.Apply(e.delta(c))
	if c.IsTarget {
		e.targetCount++
	}
	e.setCount[c.SetIdx]++
	if e.setCount[c.SetIdx] == 2 && !(c.IsTarget && e.withTarget) {
		e.acc.Apply(e.req.OtherTwoPiece[c.SetIdx])
	}
}

// Pop undoes the matching Push.
func (e *Evaluator) Pop(c *Candidate) {
	if e.setCount[c.SetIdx] == 2 && !(c.IsTarget && e.withTarget) {
		e.acc.Revert(e.req.OtherTwoPiece[c.SetIdx])
	}
	e.setCount[c.SetIdx]--
	if c.IsTarget {
		e.targetCount--
	}
	e.acc.Revert(e.delta(c))
}

// Evaluate returns the unrounded expected damage of the current loadout.
func (e *Evaluator) Evaluate() float64 {
	b, _ := e.evaluate()
	return b.Total()
}

// panelStat resolves base*(1+pct)+flat from the static accumulator and then
// applies the in-combat percent and flat parts found in buf.
func panelStat(acc, buf *PropVector, base, flat, pct PropID) float64 {
	s1 := acc[base]*(1+acc[pct]) + acc[flat]
	return s1*(1+buf[pct]-acc[pct]) + buf[flat] - acc[flat]
}

func impactStat(acc, buf *PropVector) float64 {
	s1 := acc[PropImpact] * (1 + acc[PropImpactPct])
	return s1*(1+buf[PropImpactPct]-acc[PropImpactPct]) + buf[PropImpact] - acc[PropImpact]
}

func (e *Evaluator) conversionSource(from PropID) float64 {
	switch from {
	case PropATKBase:
		return panelStat(&e.acc, &e.buf, PropATKBase, PropATK, PropATKPct)
	case PropHPBase:
		return panelStat(&e.acc, &e.buf, PropHPBase, PropHP, PropHPPct)
	case PropDEFBase:
		return panelStat(&e.acc, &e.buf, PropDEFBase, PropDEF, PropDEFPct)
	case PropAnomMasBase:
		return panelStat(&e.acc, &e.buf, PropAnomMasBase, PropAnomMas, PropAnomMasPct)
	case PropImpact:
		return impactStat(&e.acc, &e.buf)
	}
	return e.acc[from]
}

// resolve fills buf with the leaf's stats and returns its panel.
func (e *Evaluator) resolve() Panel {
	for i := range e.buf {
		e.buf[i] = e.acc[i] + e.combat[i]
	}

	// All sources are read before any result lands, so rules never chain.
	for k, rule := range e.req.Conversions {
		e.conv[k] = rule.convert(e.conversionSource(rule.From))
	}
	var sheer float64
	if e.req.Penetration {
		sheer = panelStat(&e.acc, &e.buf, PropHPBase, PropHP, PropHPPct)*sheerFromHP +
			panelStat(&e.acc, &e.buf, PropATKBase, PropATK, PropATKPct)*sheerFromATK
	}
	for k, rule := range e.req.Conversions {
		e.buf[rule.To] += e.conv[k]
	}

	p := Panel{
		ATK:     panelStat(&e.acc, &e.buf, PropATKBase, PropATK, PropATKPct),
		HP:      panelStat(&e.acc, &e.buf, PropHPBase, PropHP, PropHPPct),
		DEF:     panelStat(&e.acc, &e.buf, PropDEFBase, PropDEF, PropDEFPct),
		Impact:  impactStat(&e.acc, &e.buf),
		AnomMas: panelStat(&e.acc, &e.buf, PropAnomMasBase, PropAnomMas, PropAnomMasPct),
	}
	if e.req.Penetration {
		p.SheerForce = e.buf[PropSheerForce] + sheer
		e.buf[PropPEN], e.buf[PropPENPct] = 0, 0
	}
	return p
}

func (e *Evaluator) evaluate() (Breakdown, Panel) {
	p := e.resolve()
	buf := &e.buf
	fx := &e.req.Fixed
	rule := &e.req.Rule

	crit := critZone(buf[PropCrit], buf[PropCritDmg])
	def := defenseZone(fx.LevelBase, fx.EnemyDef, buf[PropDefRed], buf[PropDefIgn], buf[PropPENPct], buf[PropPEN])
	stun := stunZone(fx.Stunned, fx.StunVulnerability, buf[PropEnemyDazeVuln], fx.StunCap)
	taken := damageTakenZone(buf[PropDmgInc], buf[PropDamageTakenRed])
	anomProf := anomalyProfZone(buf[PropAnomProf])
	anomDmg := anomalyDmgZone(buf[PropAnomalyDmg])
	anomCrit := anomalyCritZone(buf[PropAnomCrit], buf[PropAnomCritDmg])

	var b Breakdown
	for i := range e.req.Skills {
		sk := &e.req.Skills[i]
		ep := sk.Props

		tag := 0.0
		for _, t := range sk.TagProps {
			tag += buf[t]
		}
		bonus := dmgBonusZone(buf[PropDmg], buf[ep.Dmg], tag)
		res := resistanceZone(sk.EnemyRes, buf[PropEnemyResRed], buf[ep.ResRed], buf[PropResIgn], buf[ep.ResIgn])
		universal := res * taken * stun

		if e.req.Penetration {
			b.Direct += p.SheerForce * sk.Ratio * bonus * crit * (1 + buf[PropSheerDmg]) * universal * fx.Distance
		} else {
			b.Direct += p.ATK * sk.Ratio * bonus * crit * def * universal * fx.Distance
		}

		if sk.Buildup <= 0 {
			continue
		}
		zone := buildupZone(p.AnomMas,
			buf[PropAnomBuildup]+buf[ep.Buildup],
			buf[PropAnomBuildupRes]+buf[ep.BuildupRes],
			fx.Distance)
		procs := anomalyProcs(sk.Buildup, zone, sk.Threshold)

		anomBonus := dmgBonusZone(buf[PropDmg], buf[ep.Dmg], 0)
		perProc := p.ATK * anomBonus * anomProf * anomDmg * anomCrit * fx.LevelZone * def * universal
		b.Anomaly += procs * sk.AnomalyRatio * perProc
		b.Disorder += math.Min(procs, maxDisorderProcs) * sk.DisorderRatio * perProc
	}

	// Lieshuang triggers once per rotation off the first skill's buildup.
	if rule.AnomalyKind == kindLieshuang && rule.SpecialRatio > 0 && len(e.req.Skills) > 0 {
		sp := e.req.Skills[0].Buildup * (1 + buf[PropAnomBuildup] + buf[PropIceBuildup]) / rule.SpecialThreshold
		iceBonus := 1 + buf[PropDmg] + buf[PropIceDmg]
		b.Special = p.ATK * rule.SpecialRatio * iceBonus * crit * def * sp
	}
	return b, p
}

// Build evaluates the current loadout and renders it for output. picks is
// indexed by slot.
func (e *Evaluator) Build(picks [numSlots]*Candidate) Build {
	b, p := e.evaluate()
	out := Build{
		WeaponID: e.req.WeaponID,
		Damage:   roundUp(b.Total()),
		Breakdown: Breakdown{
			Direct:   roundUp(b.Direct),
			Anomaly:  roundUp(b.Anomaly),
			Disorder: roundUp(b.Disorder),
			Special:  roundUp(b.Special),
		},
		Panel: Panel{
			ATK:        toFixed2(p.ATK),
			HP:         toFixed2(p.HP),
			DEF:        toFixed2(p.DEF),
			Impact:     toFixed2(p.Impact),
			AnomMas:    toFixed2(p.AnomMas),
			SheerForce: toFixed2(p.SheerForce),
		},
		Stats: e.buf,
		raw:   b.Total(),
	}
	for s, c := range picks {
		if c != nil {
			out.DiscIDs[s] = c.ID
		}
	}
	for idx, n := range e.setCount {
		if n < 2 {
			continue
		}
		if e.withTarget && idx == e.req.TargetSetIdx {
			out.FourPieceSet = e.req.SetIDs[idx]
			continue
		}
		out.TwoPieceSets = append(out.TwoPieceSets, e.req.SetIDs[idx])
	}
	return out
}

// renderBuild replays picks on a fresh evaluator using each disc's full
// stats, so that the output carries properties the search dropped.
func renderBuild(req *Request, picks [numSlots]*Candidate) Build {
	targets := 0
	for _, c := range picks {
		if c != nil && c.IsTarget {
			targets++
		}
	}
	e := NewEvaluator(req, targets >= 4)
	e.fullStats = true
	for _, c := range picks {
		if c != nil {
			e.Push(c)
		}
	}
	return e.Build(picks)
}
