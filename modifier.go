package main

import "math"

// ModKind discriminates the Modifier variants.
type ModKind int

const (
	ModPlain ModKind = iota
	ModConversion
)

// ConversionRule turns part of one resolved stat into another.
// The source is read from the pre-conversion snapshot, so rules never chain.
type ConversionRule struct {
	From      PropID
	To        PropID
	Ratio     float64
	Threshold float64 // subtracted from the source before conversion
	Cap       float64
	HasCap    bool
}

func (c ConversionRule) convert(source float64) float64 {
	v := math.Max(0, source-c.Threshold) * c.Ratio
	if c.HasCap && v > c.Cap {
		v = c.Cap
	}
	return v
}

// Modifier is one enabled stat contribution. Plain modifiers carry Stats;
// conversion modifiers carry Conv.
type Modifier struct {
	ID     string
	Source string
	Kind   ModKind
	Phase  Phase
	Stats  PropVector
	Conv   ConversionRule
}

// splitModifiers sums plain modifiers by phase and collects conversion rules.
func splitModifiers(mods []Modifier) (static, combat PropVector, convs []ConversionRule) {
	for i := range mods {
		m := &mods[i]
		switch m.Kind {
		case ModConversion:
			convs = append(convs, m.Conv)
		case ModPlain:
			if m.Phase == PhaseCombat {
				combat.Add(&m.Stats)
			} else {
				static.Add(&m.Stats)
			}
		}
	}
	return static, combat, convs
}
