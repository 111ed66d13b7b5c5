package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/deidtools/deideval/internal/config"
	"github.com/deidtools/deideval/internal/corpus"
	"github.com/deidtools/deideval/internal/filter"
	vlog "github.com/deidtools/deideval/internal/log"
	"github.com/deidtools/deideval/internal/match"
	"github.com/deidtools/deideval/internal/output"
	"github.com/deidtools/deideval/internal/score"
	"github.com/deidtools/deideval/internal/standoff"
)

// runSpans implements the "spans" subcommand: span-level P/R/F1.
func runSpans(args []string) int {
	fs := flag.NewFlagSet("spans", flag.ContinueOnError)
	var (
		filterArg   string
		conjunctive bool
		invert      bool
		verbose     bool
		fuzzy       int
		format      string
		configPath  string
	)
	fs.StringVar(&filterArg, "filter", "", "Comma-separated category or TYPE values to score")
	fs.BoolVar(&conjunctive, "conjunctive", false, "Combine filter values with AND instead of OR")
	fs.BoolVar(&invert, "invert", false, "Score the tags the filter does not match")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Report per-document scores in addition to the aggregate")
	fs.IntVar(&fuzzy, "fuzzy-end", 0, "Match spans whose end offsets differ by up to N characters (0 = strict)")
	fs.StringVarP(&format, "format", "f", "", "Output format: text, json")
	fs.StringVarP(&configPath, "config", "c", "", "Override config file path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deideval spans [flags] GOLD SYSTEM\n\n"+
			"Score system span annotations against a gold standard.\n\n"+
			"GOLD and SYSTEM are either two annotation files or two directories of\n"+
			"annotation files paired by PATIENT-DOC[SYSTEM].xml file names.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	paths := fs.Args()
	if len(paths) != 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fatal(err)
	}

	values := splitList(filterArg)
	if !fs.Changed("filter") {
		values = cfg.Filter
	}
	if !fs.Changed("conjunctive") {
		conjunctive = cfg.Conjunctive
	}
	if !fs.Changed("invert") {
		invert = cfg.Invert
	}
	if !fs.Changed("format") {
		format = cfg.Format
	}
	policy := match.Strict()
	if cfg.Policy == config.PolicyFuzzyEnd {
		policy = match.FuzzyEnd(cfg.Tolerance)
	}
	if fs.Changed("fuzzy-end") {
		policy = match.Strict()
		if fuzzy > 0 {
			policy = match.FuzzyEnd(fuzzy)
		}
	}

	formatter, err := output.New(format)
	if err != nil {
		return fatal(err)
	}

	logger := &vlog.Logger{Verbose: verbose, W: os.Stderr}
	logger.Printf("matching policy: %s", policy)

	pred, unresolved := filter.Build(values, conjunctive, invert)
	for _, v := range unresolved {
		logger.Warnf("could not resolve filter value %q, keeping all tags", v)
	}

	goldPath, systemPath := paths[0], paths[1]
	if err := sameKind(goldPath, systemPath); err != nil {
		return fatal(err)
	}

	opts := corpus.Options{Pattern: cfg.Pattern, Ignore: cfg.Ignore}
	goldDocs, err := corpus.Load(goldPath, opts)
	if err != nil {
		return fatal(err)
	}
	systemDocs, err := corpus.Load(systemPath, opts)
	if err != nil {
		return fatal(err)
	}
	warnDocs(logger, goldDocs)
	warnDocs(logger, systemDocs)
	logger.Printf("gold: %d documents, system: %d documents",
		len(goldDocs), len(systemDocs))

	gold := corpus.ByID(goldDocs)
	groups := corpus.BySystem(systemDocs)
	systemIDs := make([]string, 0, len(groups))
	for id := range groups {
		systemIDs = append(systemIDs, id)
	}
	sort.Strings(systemIDs)

	// Align every system's outputs before printing anything: a pairing
	// failure must not leave partial metrics behind.
	tracks := make([]score.Track, 0, len(systemIDs))
	for _, id := range systemIDs {
		pairs, err := corpus.Align(gold, groups[id])
		if err != nil {
			if id != "" {
				err = fmt.Errorf("system %q: %w", id, err)
			}
			return fatal(err)
		}
		tracks = append(tracks, score.NewTrack(pairs, pred, policy))
	}

	for i, id := range systemIDs {
		if len(systemIDs) > 1 {
			if i > 0 {
				fmt.Println()
			}
			name := id
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("SYSTEM %s\n", name)
		}
		if err := formatter.Format(os.Stdout, tracks[i], verbose); err != nil {
			return fatal(err)
		}
	}
	return 0
}

// sameKind rejects mixing a file with a directory: pairing semantics
// differ between the two.
func sameKind(gold, system string) error {
	gi, err := os.Stat(gold)
	if err != nil {
		return fmt.Errorf("gold path: %w", err)
	}
	si, err := os.Stat(system)
	if err != nil {
		return fmt.Errorf("system path: %w", err)
	}
	if gi.IsDir() != si.IsDir() {
		return fmt.Errorf("GOLD and SYSTEM must both be files or both be directories")
	}
	return nil
}

func warnDocs(logger *vlog.Logger, docs []*standoff.Document) {
	for _, d := range docs {
		logger.WarnAll(d.Warnings)
	}
}

// splitList splits a comma-separated flag value, trimming whitespace
// and dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
