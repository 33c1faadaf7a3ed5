package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

// BuildJSON is the serialized form of a Build.
type BuildJSON struct {
	Rank         int                `json:"rank"`
	DiscIDs      []string           `json:"discIds"`
	WeaponID     string             `json:"weaponId"`
	Damage       float64            `json:"damage"`
	Breakdown    Breakdown          `json:"breakdown"`
	Panel        Panel              `json:"panel"`
	Stats        map[string]float64 `json:"stats"`
	TwoPieceSets []string           `json:"twoPieceSets"`
	FourPieceSet string             `json:"fourPieceSet,omitempty"`
}

// RunOutput is the JSON document printed for a search.
type RunOutput struct {
	CharacterID  string      `json:"characterId"`
	Builds       []BuildJSON `json:"builds"`
	Combinations int64       `json:"combinations"`
	Processed    int64       `json:"processed"`
	Pruned       int64       `json:"pruned"`
	Workers      int         `json:"workers"`
	Pruning      PruneStats  `json:"pruning"`
	TimeMs       int64       `json:"timeMs"`
}

func buildJSON(rank int, b *Build) BuildJSON {
	stats := make(map[string]float64)
	for k, v := range b.Stats.NonZero() {
		stats[k] = toFixed2(v)
	}
	two := b.TwoPieceSets
	if two == nil {
		two = []string{}
	}
	return BuildJSON{
		Rank:         rank,
		DiscIDs:      append([]string(nil), b.DiscIDs[:]...),
		WeaponID:     b.WeaponID,
		Damage:       b.Damage,
		Breakdown:    b.Breakdown,
		Panel:        b.Panel,
		Stats:        stats,
		TwoPieceSets: two,
		FourPieceSet: b.FourPieceSet,
	}
}

func newRunOutput(req *Request, res *RunResult) RunOutput {
	out := RunOutput{
		CharacterID:  req.CharacterID,
		Builds:       make([]BuildJSON, len(res.Builds)),
		Combinations: res.Combinations,
		Processed:    res.Processed,
		Pruned:       res.Pruned,
		Workers:      res.Workers,
		Pruning:      res.Pruning,
		TimeMs:       res.Elapsed.Milliseconds(),
	}
	for i := range res.Builds {
		out.Builds[i] = buildJSON(i+1, &res.Builds[i])
	}
	return out
}

// writeJSON encodes v with two-space indentation.
func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// FormatBuilds renders a ranked table, one block per build.
func FormatBuilds(builds []Build) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %12s %12s %12s %12s %12s\n", "Rank", "Damage", "Direct", "Anomaly", "Disorder", "Special")
	fmt.Fprintf(&b, "%-4s %12s %12s %12s %12s %12s\n", "----", "------------", "------------", "------------", "------------", "------------")
	for i := range builds {
		bd := &builds[i]
		fmt.Fprintf(&b, "%-4d %12.0f %12.0f %12.0f %12.0f %12.0f\n", i+1,
			bd.Damage, bd.Breakdown.Direct, bd.Breakdown.Anomaly, bd.Breakdown.Disorder, bd.Breakdown.Special)
		fmt.Fprintf(&b, "     discs: %s\n", strings.Join(bd.DiscIDs[:], " "))
		sets := append([]string(nil), bd.TwoPieceSets...)
		if bd.FourPieceSet != "" {
			sets = append([]string{bd.FourPieceSet + "(4)"}, sets...)
		}
		if len(sets) > 0 {
			fmt.Fprintf(&b, "     sets:  %s\n", strings.Join(sets, " "))
		}
		fmt.Fprintf(&b, "     panel: ATK %.0f  HP %.0f  DEF %.0f  AM %.0f",
			bd.Panel.ATK, bd.Panel.HP, bd.Panel.DEF, bd.Panel.AnomMas)
		if bd.Panel.SheerForce > 0 {
			fmt.Fprintf(&b, "  SHEER %.0f", bd.Panel.SheerForce)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSummary is the one-line footer of a search.
func FormatSummary(res *RunResult) string {
	return fmt.Sprintf("%d combinations, %d evaluated, %d pruned, %d workers in %.1fs",
		res.Combinations, res.Processed, res.Pruned, res.Workers, res.Elapsed.Seconds())
}
