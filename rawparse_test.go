package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFixture(t *testing.T) {
	in, err := parseInput(fixtureDoc)
	if err != nil {
		t.Fatal(err)
	}

	if in.Character.ID != "miyabi" || in.Character.Level != 60 {
		t.Errorf("character = %s level %d", in.Character.ID, in.Character.Level)
	}
	if in.Character.Stats[PropATKBase] != 880 || in.Character.CombatStats[PropIceDmg] != 0.3 {
		t.Errorf("character stats not read")
	}
	if in.Character.Special.Kind != "lieshuang" || in.Character.Special.Ratio != 15 {
		t.Errorf("special = %+v", in.Character.Special)
	}
	if in.Weapon.Stats[PropCrit] != 0.24 {
		t.Errorf("weapon crit = %v", in.Weapon.Stats[PropCrit])
	}

	if len(in.Modifiers) != 3 {
		t.Fatalf("got %d modifiers", len(in.Modifiers))
	}
	if m := in.Modifiers[0]; m.Kind != ModPlain || m.Phase != PhaseCombat || m.Stats[PropATK] != 1000 || m.Stats[PropDmg] != 0.2 {
		t.Errorf("modifier m1 = %+v", m)
	}
	if m := in.Modifiers[1]; m.Phase != PhaseStatic || m.Stats[PropATKPct] != 0.1 {
		t.Errorf("modifier m2 = %+v", m)
	}
	conv := in.Modifiers[2]
	want := ConversionRule{From: PropAnomProf, To: PropATK, Ratio: 2, Threshold: 100, Cap: 600, HasCap: true}
	if conv.Kind != ModConversion || conv.Conv != want {
		t.Errorf("conversion = %+v, want %+v", conv.Conv, want)
	}

	if len(in.Sets) != 3 || in.Sets[0].FourPieceBuff[PropCrit] != 0.12 {
		t.Errorf("sets = %+v", in.Sets)
	}
	if len(in.Discs) != 8 {
		t.Fatalf("got %d discs", len(in.Discs))
	}
	b3 := in.Discs[2]
	if b3.ID != "b3" || b3.Slot != 3 || b3.Main != PropDEF || len(b3.Subs) != 2 {
		t.Fatalf("b3 = %+v", b3)
	}
	for _, s := range b3.Subs {
		switch s.Prop {
		case PropATKPct:
			if s.Rolls != 2 || s.Value != 0 {
				t.Errorf("b3 ATK_ = %+v", s)
			}
		case PropCrit:
			if s.Rolls != 1 || s.Value != 0.03 {
				t.Errorf("b3 CRIT_ = %+v", s)
			}
		default:
			t.Errorf("b3 unexpected sub %v", s.Prop)
		}
	}
	for _, d := range in.Discs {
		for i := 1; i < len(d.Subs); i++ {
			if d.Subs[i].Prop < d.Subs[i-1].Prop {
				t.Errorf("disc %s subs not sorted", d.ID)
			}
		}
	}
	if p6 := in.Discs[5]; p6.Rarity != RarityA || p6.Level != 12 || p6.MainValue != 0.2 {
		t.Errorf("p6 = %+v", p6)
	}

	e := in.Enemy
	if e.Resistances[ElemIce] != -0.2 || e.Thresholds[ElemIce] != 600 || e.StunVulnerability != 1.5 || e.Stunned {
		t.Errorf("enemy = %+v", e)
	}
	if len(in.Skills) != 2 || in.Skills[1].Element != ElemIce {
		t.Fatalf("skills = %+v", in.Skills)
	}
	if tags := in.Skills[0].Tags; len(tags) != 2 || tags[0] != TagSpecial || tags[1] != TagEnhanced {
		t.Errorf("tags = %v", tags)
	}

	c := in.Constraints
	if c.TargetSetID != "branch" || len(c.MainStatFilters[4]) != 2 || len(c.ExcludedDiscIDs) != 1 {
		t.Errorf("constraints = %+v", c)
	}
	if c.Pruning == nil || !c.Pruning.Enabled || len(c.Pruning.EffectiveStats) != 3 {
		t.Errorf("pruning = %+v", c.Pruning)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := parseInput(`{"character": `); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("truncated: err = %v, want ErrInvalidDocument", err)
	}

	doc := strings.Replace(fixtureDoc, `"ANOM_PROF": 92`, `"LUCK": 92`, 1)
	if _, err := parseInput(doc); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("unknown stat: err = %v, want ErrUnknownProperty", err)
	}

	doc = strings.Replace(fixtureDoc, `"main": "ICE_DMG_"`, `"main": "ICE"`, 1)
	if _, err := parseInput(doc); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("unknown main: err = %v, want ErrUnknownProperty", err)
	}

	doc = strings.Replace(fixtureDoc, `"element": "ice"`, `"element": "wind"`, 1)
	if _, err := parseInput(doc); err == nil {
		t.Error("expected an error for an unknown element")
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	if err := os.WriteFile(path, []byte(fixtureDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err := LoadRequest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Discs) != 8 {
		t.Errorf("got %d discs", len(in.Discs))
	}

	if _, err := LoadRequest(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestToBool(t *testing.T) {
	in, err := parseInput(`{"enemy": {"stunned": 1, "corruptionShield": "true"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Enemy.Stunned || !in.Enemy.CorruptionShield {
		t.Errorf("enemy = %+v", in.Enemy)
	}
}
