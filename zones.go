package main

import "math"

// Zone ranges and game constants. Every zone is clamped to its range.
const (
	dmgBonusMin, dmgBonusMax   = 0.0, 6.0
	critRateMin, critRateMax   = 0.0, 1.0
	critDmgMin, critDmgMax     = 0.0, 5.0
	resMin, resMax             = 0.0, 2.0
	stunnedMin, stunnedMax     = 0.2, 5.0
	unstunnedMin, unstunnedMax = 1.0, 3.0
	dmgTakenMin, dmgTakenMax   = 0.2, 2.0
	anomProfMin, anomProfMax   = 0.0, 10.0
	anomDmgMin, anomDmgMax     = 0.0, 3.0
	anomCritMin, anomCritMax   = 1.0, 3.0
	procsMin, procsMax         = 0.0, 1.0
	standardBuildupThreshold   = 100.0
	lieshuangBuildupThreshold  = 600.0
	maxDisorderProcs           = 5.0
	distanceFreeRange          = 15.0
	distanceStep               = 5.0
	distanceDecayDefault       = 0.75
	distanceDecayGrace         = 0.7
	anomalyWindowT1            = 3.0
	anomalyDefaultDuration     = 10.0
	disorderBaseRatio          = 4.5
	sheerFromHP, sheerFromATK  = 0.1, 0.3
	levelZoneScale             = 10000.0
)

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// levelBase is the attacker-level constant of the defense formula.
func levelBase(level int) float64 {
	return float64(level)*10 + 100
}

func dmgBonusZone(dmg, elemDmg, tagDmg float64) float64 {
	return clamp(1+dmg+elemDmg+tagDmg, dmgBonusMin, dmgBonusMax)
}

// critZone is the expected crit multiplier.
func critZone(rate, dmg float64) float64 {
	return 1 + clamp(rate, critRateMin, critRateMax)*clamp(dmg, critDmgMin, critDmgMax)
}

// defenseZone = levelBase / (effectiveDef + levelBase), with effectiveDef
// floored at 0.
func defenseZone(lvlBase, enemyDef, defRed, defIgn, penRate, penFlat float64) float64 {
	eff := enemyDef*(1-defRed-defIgn)*(1-penRate) - penFlat
	if !(eff > 0) {
		eff = 0
	}
	if lvlBase <= 0 {
		return 1
	}
	return lvlBase / (eff + lvlBase)
}

func resistanceZone(enemyRes, resRed, elemResRed, resIgn, elemResIgn float64) float64 {
	return clamp(1-enemyRes+resRed+elemResRed+resIgn+elemResIgn, resMin, resMax)
}

// stunZone models stun vulnerability. A non-zero capOverride replaces the
// stunned upper bound.
func stunZone(stunned bool, enemyVuln, buffVuln, capOverride float64) float64 {
	if stunned {
		hi := stunnedMax
		if capOverride > 0 {
			hi = capOverride
		}
		return clamp(1+enemyVuln+buffVuln, stunnedMin, hi)
	}
	return clamp(1+buffVuln, unstunnedMin, unstunnedMax)
}

func damageTakenZone(inc, red float64) float64 {
	return clamp(1+inc-red, dmgTakenMin, dmgTakenMax)
}

func distanceZone(distance float64, decay DecayType) float64 {
	if !(distance > distanceFreeRange) {
		return 1
	}
	if decay == DecayGrace {
		return distanceDecayGrace
	}
	steps := 1 + math.Floor((distance-distanceFreeRange)/distanceStep)
	return math.Pow(distanceDecayDefault, steps)
}

// buildupZone scales a skill's raw anomaly buildup. Mastery of 0 means the
// mastery factor does not apply.
func buildupZone(mastery, efficiency, resistance, distance float64) float64 {
	m := 1.0
	if mastery > 0 {
		m = mastery / 100
	}
	z := m * (1 + efficiency) * (1 - resistance) * distance
	if !(z > 0) {
		return 0
	}
	return z
}

// anomalyProcs is the expected number of anomaly triggers per skill use.
func anomalyProcs(buildup, zone, threshold float64) float64 {
	if threshold <= 0 {
		threshold = standardBuildupThreshold
	}
	return clamp(buildup*zone/threshold, procsMin, procsMax)
}

func anomalyProfZone(prof float64) float64 {
	return clamp(prof/100, anomProfMin, anomProfMax)
}

func anomalyDmgZone(bonus float64) float64 {
	return clamp(1+bonus, anomDmgMin, anomDmgMax)
}

func anomalyCritZone(rate, dmg float64) float64 {
	return clamp(1+clamp(rate, critRateMin, critRateMax)*dmg, anomCritMin, anomCritMax)
}

func levelZone(level int) float64 {
	return math.Trunc((1+float64(level-1)/59)*levelZoneScale) / levelZoneScale
}

// anomalyTotalRatio is the summed anomaly multiplier over the first window.
func anomalyTotalRatio(e Element) float64 {
	switch e {
	case ElemFire:
		return math.Floor(anomalyWindowT1/0.5) * 0.5
	case ElemElectric:
		return math.Floor(anomalyWindowT1) * 1.25
	case ElemEther:
		return math.Floor(anomalyWindowT1/0.5) * 0.625
	case ElemIce:
		return 5.0
	}
	return 7.13
}
