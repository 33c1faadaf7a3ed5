package main

import "strings"

// Element is the game's numeric element id.
type Element int

const (
	ElemPhysical Element = 200
	ElemFire     Element = 201
	ElemIce      Element = 202
	ElemElectric Element = 203
	ElemEther    Element = 205
)

func parseElement(s string) (Element, bool) {
	switch strings.ToLower(s) {
	case "physical", "200":
		return ElemPhysical, true
	case "fire", "201":
		return ElemFire, true
	case "ice", "202":
		return ElemIce, true
	case "electric", "203":
		return ElemElectric, true
	case "ether", "205":
		return ElemEther, true
	}
	return ElemPhysical, false
}

func (e Element) String() string {
	switch e {
	case ElemFire:
		return "fire"
	case ElemIce:
		return "ice"
	case ElemElectric:
		return "electric"
	case ElemEther:
		return "ether"
	}
	return "physical"
}

// SkillTag selects the skill-type damage bonus that applies to a hit.
type SkillTag int

const (
	TagNone SkillTag = iota
	TagNormal
	TagSpecial
	TagChain
	TagUltimate
	TagDash
	TagDodge
	TagAssist
	TagEnhanced
	TagAdditional
)

func parseSkillTag(s string) SkillTag {
	switch strings.ToLower(s) {
	case "normal":
		return TagNormal
	case "special":
		return TagSpecial
	case "chain":
		return TagChain
	case "ultimate":
		return TagUltimate
	case "dash":
		return TagDash
	case "dodge":
		return TagDodge
	case "assist":
		return TagAssist
	case "enhanced":
		return TagEnhanced
	case "additional":
		return TagAdditional
	}
	return TagNone
}

type Rarity int

const (
	RarityB Rarity = iota
	RarityA
	RarityS
)

func parseRarity(s string) Rarity {
	switch strings.ToUpper(s) {
	case "S":
		return RarityS
	case "A":
		return RarityA
	}
	return RarityB
}

func (r Rarity) String() string {
	switch r {
	case RarityS:
		return "S"
	case RarityA:
		return "A"
	}
	return "B"
}

// Phase says whether a modifier applies out of combat (panel) or in combat.
type Phase int

const (
	PhaseStatic Phase = iota
	PhaseCombat
)

func parsePhase(s string) Phase {
	switch strings.ToLower(s) {
	case "combat", "in_combat":
		return PhaseCombat
	}
	return PhaseStatic
}

type DecayType int

const (
	DecayDefault DecayType = iota
	DecayGrace
)

func parseDecayType(s string) DecayType {
	if strings.ToLower(s) == "grace" {
		return DecayGrace
	}
	return DecayDefault
}

// ── Collaborator inputs ─────────────────────────────────────────────

// Character is the resolved character the loadout is built for.
type Character struct {
	ID          string
	Name        string
	Level       int
	Penetration bool // damage scales from sheer force instead of attack
	Stats       PropVector
	CombatStats PropVector
	Special     SpecialAnomaly
}

// SpecialAnomaly describes a character-specific anomaly term such as lieshuang.
type SpecialAnomaly struct {
	Kind  string
	Ratio float64
}

type Weapon struct {
	ID          string
	Name        string
	Stats       PropVector
	CombatStats PropVector
}

// SetBonus holds the 2-piece and 4-piece grants of one disc set.
type SetBonus struct {
	ID            string
	Name          string
	TwoPiece      PropVector
	FourPiece     PropVector
	FourPieceBuff PropVector
}

// SubStat is one disc sub attribute with its roll count.
type SubStat struct {
	Prop  PropID
	Rolls int
	Value float64
}

// Disc is one drive disc from the player's pool.
type Disc struct {
	ID        string
	SetID     string
	Slot      int // 1..6
	Rarity    Rarity
	Level     int
	Main      PropID
	MainValue float64
	Subs      []SubStat
}

// Enemy is the combat-context input.
type Enemy struct {
	Level             int
	Defense           float64
	Resistances       map[Element]float64
	Stunned           bool
	StunVulnerability float64
	CorruptionShield  bool
	Thresholds        map[Element]float64
	Distance          float64
	Decay             DecayType
}

type Skill struct {
	Name    string
	Ratio   float64
	Element Element
	Buildup float64
	Tags    []SkillTag
}

// Constraints narrows the disc pool for one run.
type Constraints struct {
	TargetSetID     string
	MainStatFilters map[int][]PropID
	PinnedSlots     map[int]string
	ExcludedDiscIDs []string
	Pruning         *EffectiveStatPruning // nil keeps the config's setting
}

// Input is the root structure of a request document.
type Input struct {
	Character   Character
	Weapon      Weapon
	Modifiers   []Modifier
	Sets        []SetBonus
	Discs       []Disc
	Enemy       Enemy
	Skills      []Skill
	Constraints Constraints
}

// FindSet returns the set with the given id, or nil if not found.
func FindSet(in *Input, id string) *SetBonus {
	for i := range in.Sets {
		if in.Sets[i].ID == id {
			return &in.Sets[i]
		}
	}
	return nil
}
