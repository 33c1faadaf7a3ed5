package main

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoCandidates    = errors.New("no candidates")
	ErrUnknownProperty = errors.New("unknown property")
	ErrUnknownSet      = errors.New("unknown set")
	ErrNoSkills        = errors.New("no skills")
)

const numSlots = 6

// Candidate is one disc prepared for the search loop.
type Candidate struct {
	ID       string
	Slot     int
	SetID    string
	SetIdx   int
	Main     PropID
	Delta    SparseDelta // main + sub stats, ineffective properties dropped
	Full     SparseDelta // main + sub stats as listed, for output
	Score    float64     // effective line score used for pruning
	Lines    []float64   // per effective stat line counts
	IsTarget bool
}

// FixedMultipliers are the inputs that no disc choice can change.
type FixedMultipliers struct {
	AttackerLevel     int
	LevelBase         float64
	LevelZone         float64
	EnemyDef          float64 // already doubled by a corruption shield
	Stunned           bool
	StunVulnerability float64
	StunCap           float64
	Distance          float64 // distance decay zone
}

// SkillParams is a Skill with its lookups resolved.
type SkillParams struct {
	Skill
	Props         elemProps
	TagProps      []PropID
	EnemyRes      float64
	Threshold     float64
	AnomalyRatio  float64
	DisorderRatio float64
}

// Request is the read-only input shared by every worker of one run.
type Request struct {
	CharacterID string
	WeaponID    string

	Base        PropVector // character, weapon and static modifiers
	Combat      PropVector // combat-phase modifiers
	Conversions []ConversionRule

	TargetSetID     string
	TargetSetIdx    int // -1 without a target set
	TargetTwoPiece  PropVector
	TargetFourPiece PropVector
	TargetBuff      PropVector // 4-piece in-combat buff

	SetIDs        []string      // set index -> set id
	OtherTwoPiece []SparseDelta // set index -> 2-piece stats

	Slots [numSlots][]Candidate

	Fixed       FixedMultipliers
	Skills      []SkillParams
	Rule        CharacterRule
	Penetration bool
	Ineffective [NumProps]bool
	Pruning     PruneStats
}

// Combinations is the size of the full search space.
func (r *Request) Combinations() int64 {
	total := int64(1)
	for s := range r.Slots {
		total *= int64(len(r.Slots[s]))
	}
	return total
}

// BuildRequest flattens the input into a Request. It fails when a slot has
// no candidate left after filtering.
func BuildRequest(in *Input, cfg Config) (*Request, error) {
	if len(in.Skills) == 0 {
		return nil, ErrNoSkills
	}
	effective, err := cfg.effectiveProps()
	if err != nil {
		return nil, err
	}

	static, combat, convs := splitModifiers(in.Modifiers)
	req := &Request{
		CharacterID: in.Character.ID,
		WeaponID:    in.Weapon.ID,
		Conversions: convs,
		Penetration: in.Character.Penetration,
		Rule:        ruleFor(&in.Character),
	}
	if t := in.Enemy.Thresholds[ElemIce]; t > 0 && req.Rule.AnomalyKind == kindLieshuang {
		req.Rule.SpecialThreshold = t
	}
	req.Base = in.Character.Stats
	req.Base.Add(&in.Weapon.Stats)
	req.Base.Add(&static)
	req.Combat = in.Character.CombatStats
	req.Combat.Add(&in.Weapon.CombatStats)
	req.Combat.Add(&combat)

	req.TargetSetID = cfg.TargetSetID
	if req.TargetSetID == "" {
		req.TargetSetID = in.Constraints.TargetSetID
	}
	if req.TargetSetID != "" {
		set := FindSet(in, req.TargetSetID)
		if set == nil {
			return nil, fmt.Errorf("target set %q: %w", req.TargetSetID, ErrUnknownSet)
		}
		req.TargetTwoPiece = set.TwoPiece
		req.TargetFourPiece = set.FourPiece
		req.TargetBuff = set.FourPieceBuff
	}

	pools, err := filterDiscs(in, cfg)
	if err != nil {
		return nil, err
	}

	req.SetIDs = setIndex(pools)
	req.TargetSetIdx = -1
	setIdx := make(map[string]int, len(req.SetIDs))
	req.OtherTwoPiece = make([]SparseDelta, len(req.SetIDs))
	for i, sid := range req.SetIDs {
		setIdx[sid] = i
		if sid == req.TargetSetID {
			req.TargetSetIdx = i
		}
		if set := FindSet(in, sid); set != nil {
			req.OtherTwoPiece[i] = Sparsify(&set.TwoPiece)
		}
	}

	req.Ineffective = ineffectiveProps(convs, req.Penetration)

	pinned := cfg.pinnedSlots(in.Constraints)
	pruneOn := cfg.EffectiveStatPruning.Enabled && len(effective) > 0
	for s := 0; s < numSlots; s++ {
		cands := make([]Candidate, 0, len(pools[s]))
		for _, d := range pools[s] {
			stats := d.Stats()
			c := Candidate{
				ID:       d.ID,
				Slot:     d.Slot,
				SetID:    d.SetID,
				SetIdx:   setIdx[d.SetID],
				Main:     d.Main,
				Full:     Sparsify(&stats),
				IsTarget: req.TargetSetID != "" && d.SetID == req.TargetSetID,
			}
			c.Delta = c.Full.without(&req.Ineffective)
			if pruneOn {
				c.Lines = d.lineCounts(effective, cfg.EffectiveStatPruning.MainStatScore)
				for _, l := range c.Lines {
					c.Score += l
				}
			}
			cands = append(cands, c)
		}
		_, isPinned := pinned[s+1]
		kept, st := pruneSlot(cands, cfg.ScoreGapThreshold, pruneOn && !isPinned)
		req.Pruning.add(st)
		req.Slots[s] = kept
	}

	req.Fixed = fixedMultipliers(in, req.Rule)
	req.Skills = skillParams(in, req.Rule)
	return req, nil
}

// filterDiscs groups the pool by slot after the exclusion, main-stat and
// pinned-slot constraints, and resolves each disc's stat values.
func filterDiscs(in *Input, cfg Config) ([numSlots][]*Disc, error) {
	var pools [numSlots][]*Disc

	excluded := make(map[string]bool, len(in.Constraints.ExcludedDiscIDs))
	for _, id := range in.Constraints.ExcludedDiscIDs {
		excluded[id] = true
	}
	pinned := cfg.pinnedSlots(in.Constraints)

	for i := range in.Discs {
		d := &in.Discs[i]
		if d.Slot < 1 || d.Slot > numSlots {
			return pools, fmt.Errorf("disc %s: slot %d out of range", d.ID, d.Slot)
		}
		if excluded[d.ID] {
			continue
		}
		if id, ok := pinned[d.Slot]; ok && id != d.ID {
			continue
		}
		if allowed := in.Constraints.MainStatFilters[d.Slot]; len(allowed) > 0 && !containsProp(allowed, d.Main) {
			continue
		}
		if err := d.resolveValues(); err != nil {
			return pools, err
		}
		pools[d.Slot-1] = append(pools[d.Slot-1], d)
	}

	for s := range pools {
		if len(pools[s]) == 0 {
			return pools, fmt.Errorf("%w for slot %d", ErrNoCandidates, s+1)
		}
	}
	return pools, nil
}

// setIndex assigns dense indices to the set ids present in the pool.
func setIndex(pools [numSlots][]*Disc) []string {
	seen := make(map[string]bool)
	var ids []string
	for s := range pools {
		for _, d := range pools[s] {
			if !seen[d.SetID] {
				seen[d.SetID] = true
				ids = append(ids, d.SetID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// ineffectiveProps marks the properties the damage objective never reads.
// They are dropped from disc deltas before the search starts.
func ineffectiveProps(convs []ConversionRule, penetration bool) [NumProps]bool {
	var read [NumProps]bool
	for _, p := range damageReads {
		read[p] = true
	}
	if penetration {
		read[PropHP], read[PropHPPct] = true, true
		read[PropPEN], read[PropPENPct] = false, false
	}
	for _, c := range convs {
		for _, p := range conversionReads(c.From) {
			read[p] = true
		}
	}
	var drop [NumProps]bool
	for i := range read {
		drop[i] = !read[i]
	}
	return drop
}

// damageReads lists every property the evaluator reads from a leaf.
var damageReads = []PropID{
	PropATKBase, PropATK, PropATKPct,
	PropSheerForce, PropSheerDmg,
	PropDmg, PropPhysicalDmg, PropFireDmg, PropIceDmg, PropElectricDmg, PropEtherDmg,
	PropNormalAtkDmg, PropSpecialAtkDmg, PropChainAtkDmg, PropUltimateAtkDmg, PropDashAtkDmg,
	PropDodgeCounterDmg, PropAssistAtkDmg, PropEnhancedSpecialDmg, PropAddlAtkDmg,
	PropCrit, PropCritDmg,
	PropDefRed, PropDefIgn, PropPEN, PropPENPct,
	PropResIgn, PropEnemyResRed,
	PropPhysicalResRed, PropFireResRed, PropIceResRed, PropElectricResRed, PropEtherResRed,
	PropPhysicalResIgn, PropFireResIgn, PropIceResIgn, PropElectricResIgn, PropEtherResIgn,
	PropEnemyDazeVuln, PropDmgInc, PropDamageTakenRed,
	PropAnomMasBase, PropAnomMas, PropAnomMasPct,
	PropAnomBuildup, PropPhysicalBuildup, PropFireBuildup, PropIceBuildup, PropElectricBuildup, PropEtherBuildup,
	PropAnomBuildupRes, PropPhysicalBuildupRes, PropFireBuildupRes, PropIceBuildupRes,
	PropElectricBuildupRes, PropEtherBuildupRes,
	PropAnomProf, PropAnomalyDmg, PropAnomCrit, PropAnomCritDmg,
}

// conversionReads expands a conversion source into the properties it is
// resolved from. Panel sources are named by their base property.
func conversionReads(from PropID) []PropID {
	switch from {
	case PropATKBase:
		return []PropID{PropATKBase, PropATK, PropATKPct}
	case PropHPBase:
		return []PropID{PropHPBase, PropHP, PropHPPct}
	case PropDEFBase:
		return []PropID{PropDEFBase, PropDEF, PropDEFPct}
	case PropImpact:
		return []PropID{PropImpact, PropImpactPct}
	case PropAnomMasBase:
		return []PropID{PropAnomMasBase, PropAnomMas, PropAnomMasPct}
	}
	return []PropID{from}
}

func fixedMultipliers(in *Input, rule CharacterRule) FixedMultipliers {
	lvl := in.Character.Level
	if lvl <= 0 {
		lvl = 60
	}
	def := in.Enemy.Defense
	if in.Enemy.CorruptionShield {
		def *= 2
	}
	return FixedMultipliers{
		AttackerLevel:     lvl,
		LevelBase:         levelBase(lvl),
		LevelZone:         levelZone(lvl),
		EnemyDef:          def,
		Stunned:           in.Enemy.Stunned || rule.ForceStunned,
		StunVulnerability: in.Enemy.StunVulnerability,
		StunCap:           rule.StunVulnerabilityCap,
		Distance:          distanceZone(in.Enemy.Distance, in.Enemy.Decay),
	}
}

func skillParams(in *Input, rule CharacterRule) []SkillParams {
	out := make([]SkillParams, len(in.Skills))
	for i, sk := range in.Skills {
		p := SkillParams{
			Skill:        sk,
			Props:        propsForElement(sk.Element),
			EnemyRes:     in.Enemy.Resistances[sk.Element],
			Threshold:    in.Enemy.Thresholds[sk.Element],
			AnomalyRatio: anomalyTotalRatio(sk.Element),
		}
		if p.Threshold <= 0 {
			p.Threshold = standardBuildupThreshold
		}
		for _, t := range sk.Tags {
			if prop, ok := tagDmgProp(t); ok {
				p.TagProps = append(p.TagProps, prop)
			}
		}
		kind := sk.Element.String()
		if rule.AnomalyKind != "" {
			kind = rule.AnomalyKind
		}
		p.DisorderRatio = disorderRatio(kind, anomalyDefaultDuration-anomalyWindowT1)
		out[i] = p
	}
	return out
}

func containsProp(list []PropID, p PropID) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// pinLoadout pins every slot to the given disc ids so that the request holds
// exactly one combination.
func pinLoadout(in *Input, ids []string) error {
	if len(ids) != numSlots {
		return fmt.Errorf("loadout needs %d disc ids, got %d", numSlots, len(ids))
	}
	pinned := make(map[int]string, numSlots)
	for _, id := range ids {
		var found *Disc
		for i := range in.Discs {
			if in.Discs[i].ID == id {
				found = &in.Discs[i]
				break
			}
		}
		if found == nil {
			return fmt.Errorf("disc %q not in pool", id)
		}
		if prev, ok := pinned[found.Slot]; ok {
			return fmt.Errorf("discs %q and %q both use slot %d", prev, id, found.Slot)
		}
		pinned[found.Slot] = id
	}
	in.Constraints.PinnedSlots = pinned
	in.Constraints.ExcludedDiscIDs = nil
	in.Constraints.MainStatFilters = nil
	return nil
}
