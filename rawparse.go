package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is returned for a request body that is not JSON.
var ErrInvalidDocument = errors.New("invalid request document")

// docParser collects the first error while walking a request document with
// gjson. Later errors are dropped.
type docParser struct {
	err error
}

func (p *docParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// readProps reads a {PROP: value} object into a vector.
func (p *docParser) readProps(v gjson.Result, where string) PropVector {
	var out PropVector
	v.ForEach(func(key, val gjson.Result) bool {
		id, ok := parsePropID(key.String())
		if !ok {
			p.fail(fmt.Errorf("%s: %q: %w", where, key.String(), ErrUnknownProperty))
			return false
		}
		out[id] += val.Float()
		return true
	})
	return out
}

func (p *docParser) readProp(v gjson.Result, where string) PropID {
	id, ok := parsePropID(v.String())
	if !ok {
		p.fail(fmt.Errorf("%s: %q: %w", where, v.String(), ErrUnknownProperty))
	}
	return id
}

func (p *docParser) readElement(v gjson.Result, where string) Element {
	e, ok := parseElement(v.String())
	if !ok && v.Exists() {
		p.fail(fmt.Errorf("%s: unknown element %q", where, v.String()))
	}
	return e
}

func (p *docParser) character(v gjson.Result) Character {
	return Character{
		ID:          v.Get("id").String(),
		Name:        v.Get("name").String(),
		Level:       int(v.Get("level").Int()),
		Penetration: v.Get("penetration").Bool(),
		Stats:       p.readProps(v.Get("stats"), "character.stats"),
		CombatStats: p.readProps(v.Get("combatStats"), "character.combatStats"),
		Special: SpecialAnomaly{
			Kind:  v.Get("specialAnomaly.kind").String(),
			Ratio: v.Get("specialAnomaly.ratio").Float(),
		},
	}
}

func (p *docParser) weapon(v gjson.Result) Weapon {
	return Weapon{
		ID:          v.Get("id").String(),
		Name:        v.Get("name").String(),
		Stats:       p.readProps(v.Get("stats"), "weapon.stats"),
		CombatStats: p.readProps(v.Get("combatStats"), "weapon.combatStats"),
	}
}

func (p *docParser) modifier(v gjson.Result) Modifier {
	m := Modifier{
		ID:     v.Get("id").String(),
		Source: v.Get("source").String(),
		Phase:  parsePhase(v.Get("phase").String()),
	}
	where := "modifier " + m.ID
	if v.Get("kind").String() == "conversion" || v.Get("from").Exists() {
		m.Kind = ModConversion
		m.Conv = ConversionRule{
			From:      p.readProp(v.Get("from"), where),
			To:        p.readProp(v.Get("to"), where),
			Ratio:     v.Get("ratio").Float(),
			Threshold: v.Get("threshold").Float(),
		}
		if c := v.Get("cap"); c.Exists() {
			m.Conv.Cap, m.Conv.HasCap = c.Float(), true
		}
		return m
	}
	m.Kind = ModPlain
	m.Stats = p.readProps(v.Get("stats"), where)
	return m
}

func (p *docParser) set(v gjson.Result) SetBonus {
	id := v.Get("id").String()
	return SetBonus{
		ID:            id,
		Name:          v.Get("name").String(),
		TwoPiece:      p.readProps(v.Get("twoPiece"), "set "+id),
		FourPiece:     p.readProps(v.Get("fourPiece"), "set "+id),
		FourPieceBuff: p.readProps(v.Get("fourPieceBuff"), "set "+id),
	}
}

// disc reads one disc. Sub stats are {PROP: rolls} or {PROP: {rolls, value}}.
func (p *docParser) disc(v gjson.Result) Disc {
	d := Disc{
		ID:        v.Get("id").String(),
		SetID:     v.Get("setId").String(),
		Slot:      int(v.Get("slot").Int()),
		Rarity:    parseRarity(v.Get("rarity").String()),
		Level:     int(v.Get("level").Int()),
		MainValue: v.Get("mainValue").Float(),
	}
	where := "disc " + d.ID
	d.Main = p.readProp(v.Get("main"), where)
	v.Get("subs").ForEach(func(key, val gjson.Result) bool {
		id, ok := parsePropID(key.String())
		if !ok {
			p.fail(fmt.Errorf("%s: %q: %w", where, key.String(), ErrUnknownProperty))
			return false
		}
		s := SubStat{Prop: id}
		if val.IsObject() {
			s.Rolls = int(val.Get("rolls").Int())
			s.Value = val.Get("value").Float()
		} else {
			s.Rolls = int(val.Int())
		}
		d.Subs = append(d.Subs, s)
		return true
	})
	// Object iteration follows document order; keep subs stable by property.
	sort.Slice(d.Subs, func(i, j int) bool { return d.Subs[i].Prop < d.Subs[j].Prop })
	return d
}

func (p *docParser) readElementMap(v gjson.Result, where string) map[Element]float64 {
	if !v.IsObject() {
		return nil
	}
	m := make(map[Element]float64)
	v.ForEach(func(key, val gjson.Result) bool {
		m[p.readElement(key, where)] = val.Float()
		return true
	})
	return m
}

func (p *docParser) enemy(v gjson.Result) Enemy {
	return Enemy{
		Level:             int(v.Get("level").Int()),
		Defense:           v.Get("defense").Float(),
		Resistances:       p.readElementMap(v.Get("resistances"), "enemy.resistances"),
		Stunned:           toBool(v.Get("stunned")),
		StunVulnerability: v.Get("stunVulnerability").Float(),
		CorruptionShield:  toBool(v.Get("corruptionShield")),
		Thresholds:        p.readElementMap(v.Get("thresholds"), "enemy.thresholds"),
		Distance:          v.Get("distance").Float(),
		Decay:             parseDecayType(v.Get("decay").String()),
	}
}

func (p *docParser) skill(v gjson.Result) Skill {
	s := Skill{
		Name:    v.Get("name").String(),
		Ratio:   v.Get("ratio").Float(),
		Element: p.readElement(v.Get("element"), "skill "+v.Get("name").String()),
		Buildup: v.Get("buildup").Float(),
	}
	v.Get("tags").ForEach(func(_, t gjson.Result) bool {
		if tag := parseSkillTag(t.String()); tag != TagNone {
			s.Tags = append(s.Tags, tag)
		}
		return true
	})
	return s
}

func (p *docParser) constraints(v gjson.Result) Constraints {
	c := Constraints{TargetSetID: v.Get("targetSetId").String()}
	v.Get("mainStatFilters").ForEach(func(key, list gjson.Result) bool {
		slot := int(key.Int())
		if c.MainStatFilters == nil {
			c.MainStatFilters = make(map[int][]PropID)
		}
		list.ForEach(func(_, name gjson.Result) bool {
			c.MainStatFilters[slot] = append(c.MainStatFilters[slot], p.readProp(name, "mainStatFilters"))
			return true
		})
		return true
	})
	v.Get("pinnedSlots").ForEach(func(key, id gjson.Result) bool {
		if c.PinnedSlots == nil {
			c.PinnedSlots = make(map[int]string)
		}
		c.PinnedSlots[int(key.Int())] = id.String()
		return true
	})
	v.Get("excludedDiscIds").ForEach(func(_, id gjson.Result) bool {
		c.ExcludedDiscIDs = append(c.ExcludedDiscIDs, id.String())
		return true
	})
	if pr := v.Get("effectiveStatPruning"); pr.IsObject() {
		esp := &EffectiveStatPruning{
			Enabled:       pr.Get("enabled").Bool(),
			MainStatScore: pr.Get("mainStatScore").Float(),
		}
		pr.Get("effectiveStats").ForEach(func(_, name gjson.Result) bool {
			esp.EffectiveStats = append(esp.EffectiveStats, name.String())
			return true
		})
		c.Pruning = esp
	}
	return c
}

// parseInput builds an Input from a request document.
func parseInput(doc string) (*Input, error) {
	if !gjson.Valid(doc) {
		return nil, ErrInvalidDocument
	}
	root := gjson.Parse(doc)
	p := &docParser{}

	in := &Input{
		Character:   p.character(root.Get("character")),
		Weapon:      p.weapon(root.Get("weapon")),
		Enemy:       p.enemy(root.Get("enemy")),
		Constraints: p.constraints(root.Get("constraints")),
	}
	root.Get("modifiers").ForEach(func(_, v gjson.Result) bool {
		in.Modifiers = append(in.Modifiers, p.modifier(v))
		return p.err == nil
	})
	root.Get("sets").ForEach(func(_, v gjson.Result) bool {
		in.Sets = append(in.Sets, p.set(v))
		return p.err == nil
	})
	root.Get("discs").ForEach(func(_, v gjson.Result) bool {
		in.Discs = append(in.Discs, p.disc(v))
		return p.err == nil
	})
	root.Get("skills").ForEach(func(_, v gjson.Result) bool {
		in.Skills = append(in.Skills, p.skill(v))
		return p.err == nil
	})
	if p.err != nil {
		return nil, p.err
	}
	return in, nil
}

// LoadRequest reads and parses a request document from disk.
func LoadRequest(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	in, err := parseInput(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func toBool(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Float() != 0
	case gjson.String:
		b, _ := strconv.ParseBool(v.String())
		return b
	}
	return false
}
