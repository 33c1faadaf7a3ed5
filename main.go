//go:build !lambda

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
)

const usage = `Usage: loadout-optimizer [flags] <request.json>

Positional arguments:
  request.json    Request document: character, weapon, modifiers, sets,
                  discs, enemy, skills and constraints

Finds the disc loadouts with the highest expected damage. Score-gap pruning
(-score-gap, on by default when effective stats are configured) is a
heuristic and can drop the best loadout; pass -score-gap -1 for an exact
search.

Flags:
`

// cliFlags are applied over the file config and the request constraints,
// but only for flags given on the command line.
type cliFlags struct {
	configPath string
	jsonOut    bool
	eval       string
	top        int
	workers    int
	prune      string
	scoreGap   float64
	progress   int
	targetSet  string
	effective  string
	pin        bool
	logLevel   string
	logJSON    bool
}

func (f *cliFlags) register(fs *flag.FlagSet) {
	def := DefaultConfig()
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.BoolVar(&f.jsonOut, "json", false, "Output results as JSON")
	fs.StringVar(&f.eval, "eval", "", "Evaluate one loadout given as 6 comma-separated disc ids")
	fs.IntVar(&f.top, "top", def.TopN, "Number of builds to return")
	fs.IntVar(&f.workers, "workers", def.Workers, "Number of search workers")
	fs.StringVar(&f.prune, "prune-threshold", "inf", "Slack of the running score bound (inf never prunes)")
	fs.Float64Var(&f.scoreGap, "score-gap", def.ScoreGapThreshold, "Drop discs this many lines below their group's best (heuristic, -1 disables)")
	fs.IntVar(&f.progress, "progress", def.ProgressInterval, "Combinations between progress reports (0 disables)")
	fs.StringVar(&f.targetSet, "target-set", "", "Set id that must appear as a 4-piece")
	fs.StringVar(&f.effective, "effective", "", "Comma-separated effective stats for disc pruning")
	fs.BoolVar(&f.pin, "pin-workers", false, "Pin each worker to one CPU (Linux)")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&f.logJSON, "log-json", false, "Log JSON lines instead of console text")
}

// apply copies the flags that were set on fs into cfg.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg Config) (Config, error) {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "top":
			cfg.TopN = f.top
		case "workers":
			cfg.Workers = f.workers
		case "prune-threshold":
			v, perr := strconv.ParseFloat(f.prune, 64)
			if perr != nil {
				err = fmt.Errorf("invalid -prune-threshold %q", f.prune)
				return
			}
			cfg.PruneThreshold = v
		case "score-gap":
			cfg.ScoreGapThreshold = f.scoreGap
		case "progress":
			cfg.ProgressInterval = f.progress
		case "target-set":
			cfg.TargetSetID = f.targetSet
		case "effective":
			cfg.EffectiveStatPruning.Enabled = true
			cfg.EffectiveStatPruning.EffectiveStats = splitList(f.effective)
		case "pin-workers":
			cfg.PinWorkers = f.pin
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "log-json":
			cfg.LogJSON = f.logJSON
		}
	})
	return cfg, err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runSearch(ctx context.Context, in *Input, cfg Config, jsonOut bool) error {
	req, res, err := optimize(ctx, in, cfg)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(os.Stdout, newRunOutput(req, res))
	}
	fmt.Print(FormatBuilds(res.Builds))
	fmt.Println(FormatSummary(res))
	return nil
}

func runEval(in *Input, ids []string, cfg Config, jsonOut bool) error {
	b, err := evaluateIDs(in, ids, cfg)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(os.Stdout, buildJSON(1, &b))
	}
	fmt.Print(FormatBuilds([]Build{b}))
	return nil
}

func main() {
	var f cliFlags
	f.register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := DefaultConfig()
	var err error
	if f.configPath != "" {
		if cfg, err = LoadConfig(f.configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	in, err := LoadRequest(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg = cfg.withConstraints(in.Constraints)
	if cfg, err = f.apply(flag.CommandLine, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := initLogger(cfg.LogLevel, cfg.LogJSON); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Str("character", in.Character.ID).
		Int("discs", len(in.Discs)).
		Int("modifiers", len(in.Modifiers)).
		Int("skills", len(in.Skills)).
		Msg("[init] loaded request")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.eval != "" {
		err = runEval(in, splitList(f.eval), cfg, f.jsonOut)
	} else {
		err = runSearch(ctx, in, cfg, f.jsonOut)
	}
	if err != nil {
		stop()
		log.Fatal().Err(err).Msg("optimization failed")
	}
}
