package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/deidtools/deideval/internal/severity"
)

// WriteSeverity renders the ordinal-track report: per-class support
// and score rows, the overall macro-averaged score, and in verbose
// mode per-record rows plus the signed-rank p-value.
func WriteSeverity(w io.Writer, r *severity.Report, verbose bool) error {
	if _, err := fmt.Fprintf(w, "CLASSES    ( support )\n           (gold|syst):\n%s\n",
		severitySeparator); err != nil {
		return err
	}
	for _, c := range r.Classes {
		if _, err := fmt.Fprintf(w, "%-10s (%4d|%4d): %07.4f%%\n",
			strings.ToLower(c.Label.String()), c.GoldSupport, c.SystemCount, c.Score); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s\nSCORE      (%4d|%4d): %07.4f%%\n",
		severitySeparator, len(r.Gold), len(r.System), r.Overall); err != nil {
		return err
	}
	if !verbose {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n%-16s %6s %6s   %s\n",
		"RECORD NAME", "GOLD", "SYSTEM", "ERROR"); err != nil {
		return err
	}
	for i, name := range r.Names {
		diff := int(r.Gold[i]) - int(r.System[i])
		if diff < 0 {
			diff = -diff
		}
		if _, err := fmt.Fprintf(w, "%-16s %6d %6d   %s\n",
			name, int(r.Gold[i]), int(r.System[i]), strings.Repeat("*", diff)); err != nil {
			return err
		}
	}
	if math.IsNaN(r.PValue) {
		return nil
	}
	_, err := fmt.Fprintf(w, "Wilcoxon Signed-Rank test p-value: %09.7f\n", r.PValue)
	return err
}

const severitySeparator = "--------------------------------"
