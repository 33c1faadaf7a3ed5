package main

import "strings"

// PropID is a dense index into a PropVector.
type PropID uint8

const (
	PropHPBase PropID = iota
	PropATKBase
	PropDEFBase
	PropAnomMasBase
	PropHP
	PropHPPct
	PropATK
	PropATKPct
	PropDEF
	PropDEFPct
	PropPEN
	PropPENPct
	PropSheerForce
	PropSheerDmg
	PropResIgn
	PropDefIgn
	PropCrit
	PropCritDmg
	PropEnerRegenPct
	PropEnerRegen
	PropBaseEnerRegen
	PropEnerEff
	PropImpactPct
	PropImpact
	PropDazeInc
	PropFeverGain
	PropShield
	PropAnomMas
	PropAnomMasPct
	PropAnomProf
	PropAnomBuildup
	PropPhysicalBuildup
	PropFireBuildup
	PropIceBuildup
	PropElectricBuildup
	PropEtherBuildup
	PropAnomCrit
	PropAnomCritDmg
	PropAnomMVMult
	PropAddlDisorder
	PropAnomBase
	PropAnomFlatDmg
	PropBurnDmg
	PropShockDmg
	PropCorruptionDmg
	PropShatterDmg
	PropAssaultDmg
	PropCommonDmg
	PropDmg
	PropFlatDmg
	PropNormalAtkDmg
	PropEnhancedSpecialDmg
	PropChainAtkDmg
	PropUltimateAtkDmg
	PropDashAtkDmg
	PropDodgeCounterDmg
	PropAssistAtkDmg
	PropAddlAtkDmg
	PropSpecialAtkDmg
	PropPhysicalDmg
	PropEtherDmg
	PropElectricDmg
	PropIceDmg
	PropFireDmg
	PropImpactDmg
	PropFreezeDmg
	PropPenetrationDmg
	PropDisorderDmg
	PropAnomalyDmg
	PropDefRed
	PropEnemyRes
	PropEnemyResRed
	PropPhysicalResRed
	PropFireResRed
	PropIceResRed
	PropElectricResRed
	PropEtherResRed
	PropEnemyResIgn
	PropPhysicalResIgn
	PropFireResIgn
	PropIceResIgn
	PropElectricResIgn
	PropEtherResIgn
	PropAnomBuildupRes
	PropPhysicalBuildupRes
	PropFireBuildupRes
	PropIceBuildupRes
	PropElectricBuildupRes
	PropEtherBuildupRes
	PropDazeRes
	PropDazeRed
	PropDmgInc
	PropDamageTakenRed
	PropEnemyDazeVuln

	NumProps = int(iota)
)

// propNames is indexed by PropID. Names are the canonical upper-case keys
// accepted in request documents.
var propNames = [NumProps]string{
	"HP_BASE", "ATK_BASE", "DEF_BASE", "ANOM_MAS_BASE",
	"HP", "HP_", "ATK", "ATK_", "DEF", "DEF_", "PEN", "PEN_",
	"SHEER_FORCE", "SHEER_DMG_", "RES_IGN_", "DEF_IGN_",
	"CRIT_", "CRIT_DMG_",
	"ENER_REGEN_", "ENER_REGEN", "BASE_ENER_REGEN", "ENER_EFF_",
	"IMPACT_", "IMPACT", "DAZE_INC_", "FEVER_GAIN_", "SHIELD_",
	"ANOM_MAS", "ANOM_MAS_", "ANOM_PROF",
	"ANOM_BUILDUP_", "PHYSICAL_ANOMALY_BUILDUP_", "FIRE_ANOMALY_BUILDUP_",
	"ICE_ANOMALY_BUILDUP_", "ELECTRIC_ANOMALY_BUILDUP_", "ETHER_ANOMALY_BUILDUP_",
	"ANOM_CRIT_", "ANOM_CRIT_DMG_", "ANOM_MV_MULT_", "ADDL_DISORDER_", "ANOM_BASE_", "ANOM_FLAT_DMG",
	"BURN_DMG_", "SHOCK_DMG_", "CORRUPTION_DMG_", "SHATTER_DMG_", "ASSAULT_DMG_",
	"COMMON_DMG_", "DMG_", "FLAT_DMG",
	"NORMAL_ATK_DMG_", "ENHANCED_SPECIAL_DMG_", "CHAIN_ATK_DMG_", "ULTIMATE_ATK_DMG_",
	"DASH_ATK_DMG_", "DODGE_COUNTER_DMG_", "ASSIST_ATK_DMG_", "ADDL_ATK_DMG_", "SPECIAL_ATK_DMG_",
	"PHYSICAL_DMG_", "ETHER_DMG_", "ELECTRIC_DMG_", "ICE_DMG_", "FIRE_DMG_",
	"IMPACT_DMG_", "FREEZE_DMG_", "PENETRATION_DMG_", "DISORDER_DMG_", "ANOMALY_DMG_",
	"DEF_RED_", "ENEMY_RES_", "ENEMY_RES_RED_",
	"PHYSICAL_RES_RED_", "FIRE_RES_RED_", "ICE_RES_RED_", "ELECTRIC_RES_RED_", "ETHER_RES_RED_",
	"ENEMY_RES_IGN_",
	"PHYSICAL_RES_IGN_", "FIRE_RES_IGN_", "ICE_RES_IGN_", "ELECTRIC_RES_IGN_", "ETHER_RES_IGN_",
	"ANOM_BUILDUP_RES_",
	"PHYSICAL_ANOM_BUILDUP_RES_", "FIRE_ANOM_BUILDUP_RES_", "ICE_ANOM_BUILDUP_RES_",
	"ELECTRIC_ANOM_BUILDUP_RES_", "ETHER_ANOM_BUILDUP_RES_",
	"DAZE_RES_", "DAZE_RED_", "DMG_INC_", "DAMAGE_TAKEN_RED_", "ENEMY_DAZE_VULNERABILITY_",
}

var propByName = func() map[string]PropID {
	m := make(map[string]PropID, NumProps)
	for i, name := range propNames {
		m[name] = PropID(i)
	}
	return m
}()

func (p PropID) String() string {
	if int(p) < NumProps {
		return propNames[p]
	}
	return "UNKNOWN"
}

// parsePropID resolves a property name from a request document. Matching is
// case-insensitive. This is the only string-keyed lookup and it never runs in
// the search loop.
func parsePropID(s string) (PropID, bool) {
	p, ok := propByName[strings.ToUpper(strings.TrimSpace(s))]
	return p, ok
}

// ── Vectors ─────────────────────────────────────────────────────────

// PropVector holds one additive value per PropID. The zero value is empty.
type PropVector [NumProps]float64

// Add merges o into v elementwise.
func (v *PropVector) Add(o *PropVector) {
	for i := range v {
		v[i] += o[i]
	}
}

// Sub removes o from v elementwise.
func (v *PropVector) Sub(o *PropVector) {
	for i := range v {
		v[i] -= o[i]
	}
}

func (v *PropVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// NonZero returns the named non-zero entries, for output only.
func (v *PropVector) NonZero() map[string]float64 {
	out := make(map[string]float64)
	for i, x := range v {
		if x != 0 {
			out[propNames[i]] = x
		}
	}
	return out
}

// SparseDelta lists the non-zero entries of a PropVector as parallel arrays.
type SparseDelta struct {
	Idx []PropID
	Val []float64
}

func (d SparseDelta) Len() int { return len(d.Idx) }

// Sparsify keeps the non-zero entries of v in index order.
func Sparsify(v *PropVector) SparseDelta {
	var d SparseDelta
	for i, x := range v {
		if x != 0 {
			d.Idx = append(d.Idx, PropID(i))
			d.Val = append(d.Val, x)
		}
	}
	return d
}

// Densify scatters d back into a full vector.
func (d SparseDelta) Densify() PropVector {
	var v PropVector
	for k, i := range d.Idx {
		v[i] = d.Val[k]
	}
	return v
}

// Apply adds d into v.
func (v *PropVector) Apply(d SparseDelta) {
	for k, i := range d.Idx {
		v[i] += d.Val[k]
	}
}

// Revert subtracts d from v.
func (v *PropVector) Revert(d SparseDelta) {
	for k, i := range d.Idx {
		v[i] -= d.Val[k]
	}
}

// without returns a copy of d minus the entries whose index is set in drop.
func (d SparseDelta) without(drop *[NumProps]bool) SparseDelta {
	var out SparseDelta
	for k, i := range d.Idx {
		if drop[i] {
			continue
		}
		out.Idx = append(out.Idx, i)
		out.Val = append(out.Val, d.Val[k])
	}
	return out
}

// ── Element and skill tag lookups ───────────────────────────────────

// elemProps groups the per-element property ids read by the evaluator.
type elemProps struct {
	Dmg        PropID
	Buildup    PropID
	ResRed     PropID
	ResIgn     PropID
	BuildupRes PropID
}

func propsForElement(e Element) elemProps {
	switch e {
	case ElemFire:
		return elemProps{PropFireDmg, PropFireBuildup, PropFireResRed, PropFireResIgn, PropFireBuildupRes}
	case ElemIce:
		return elemProps{PropIceDmg, PropIceBuildup, PropIceResRed, PropIceResIgn, PropIceBuildupRes}
	case ElemElectric:
		return elemProps{PropElectricDmg, PropElectricBuildup, PropElectricResRed, PropElectricResIgn, PropElectricBuildupRes}
	case ElemEther:
		return elemProps{PropEtherDmg, PropEtherBuildup, PropEtherResRed, PropEtherResIgn, PropEtherBuildupRes}
	}
	return elemProps{PropPhysicalDmg, PropPhysicalBuildup, PropPhysicalResRed, PropPhysicalResIgn, PropPhysicalBuildupRes}
}

// tagDmgProp maps a skill tag to its damage-bonus property.
func tagDmgProp(t SkillTag) (PropID, bool) {
	switch t {
	case TagNormal:
		return PropNormalAtkDmg, true
	case TagSpecial:
		return PropSpecialAtkDmg, true
	case TagChain:
		return PropChainAtkDmg, true
	case TagUltimate:
		return PropUltimateAtkDmg, true
	case TagDash:
		return PropDashAtkDmg, true
	case TagDodge:
		return PropDodgeCounterDmg, true
	case TagAssist:
		return PropAssistAtkDmg, true
	case TagEnhanced:
		return PropEnhancedSpecialDmg, true
	case TagAdditional:
		return PropAddlAtkDmg, true
	}
	return 0, false
}

// flatToPercent maps flat stats to the percent stat they count toward when
// scoring disc lines.
func flatToPercent(p PropID) (PropID, bool) {
	switch p {
	case PropATK:
		return PropATKPct, true
	case PropHP:
		return PropHPPct, true
	case PropDEF:
		return PropDEFPct, true
	case PropPEN:
		return PropPENPct, true
	}
	return 0, false
}
