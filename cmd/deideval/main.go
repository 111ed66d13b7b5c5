// Command deideval scores automated de-identification output against a
// gold standard: span-level precision/recall/F1 on PHI annotations and
// an ordinal positive-valence severity track.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	os.Exit(run())
}

const usageText = `Usage: deideval <command> [flags] GOLD SYSTEM

Commands:
  spans     Score span annotations (precision/recall/F1)
  severity  Score ordinal positive-valence severity labels
  version   Print version and exit

Global flags:
  -h, --help      Show this help

Run 'deideval <command> --help' for more information on a command.
`

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	first := os.Args[1]
	switch first {
	case "--help", "-h":
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	switch first {
	case "spans":
		return runSpans(os.Args[2:])
	case "severity":
		return runSeverity(os.Args[2:])
	case "version":
		printVersion()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "deideval: unknown command %q\n\n%s", first, usageText)
		return 2
	}
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("deideval %s\n", version)
}

// fatal reports a runtime failure. Nothing is printed to stdout before
// a fatal error, so a failed run never emits partial metrics.
func fatal(err error) int {
	fmt.Fprintf(os.Stderr, "deideval: %v\n", err)
	return 1
}
