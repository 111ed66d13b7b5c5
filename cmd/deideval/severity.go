package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/deidtools/deideval/internal/output"
	"github.com/deidtools/deideval/internal/severity"
)

// runSeverity implements the "severity" subcommand: the ordinal
// positive-valence track.
func runSeverity(args []string) int {
	fs := flag.NewFlagSet("severity", flag.ContinueOnError)
	var verbose bool
	fs.BoolVarP(&verbose, "verbose", "v", false, "Report per-record rows and the signed-rank p-value")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: deideval severity [flags] GOLD_DIR SYSTEM_DIR\n\n"+
			"Score ordinal positive-valence severity labels. Both directories must\n"+
			"contain the same set of XML record files, each carrying one\n"+
			"POSITIVE_VALENCE element with a score of ABSENT, MILD, MODERATE or\n"+
			"SEVERE.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	dirs := fs.Args()
	if len(dirs) != 2 {
		fs.Usage()
		return 2
	}

	report, err := severity.Evaluate(dirs[0], dirs[1])
	if err != nil {
		return fatal(err)
	}
	if err := output.WriteSeverity(os.Stdout, report, verbose); err != nil {
		return fatal(err)
	}
	return 0
}
