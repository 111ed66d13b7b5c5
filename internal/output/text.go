package output

import (
	"fmt"
	"io"

	"github.com/deidtools/deideval/internal/score"
)

// TextFormatter renders the spans report as a fixed-width table: one
// row per category, a separator, and the micro-averaged total. Verbose
// mode prepends per-document rows for the pooled pass.
type TextFormatter struct{}

// Format writes the report.
func (f *TextFormatter) Format(w io.Writer, t score.Track, verbose bool) error {
	if verbose {
		if err := f.perDoc(w, t.Overall); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%-12s %6s %6s %6s   %9s %9s %9s\n",
		"CATEGORY", "TP", "FP", "FN", "PRECISION", "RECALL", "F1"); err != nil {
		return err
	}
	for _, ev := range t.Categories {
		if err := row(w, ev.Label, ev.Total); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, separator); err != nil {
		return err
	}
	return row(w, t.Overall.Label, t.Overall.Total)
}

const separator = "----------------------------------------------------------------"

func row(w io.Writer, label string, c score.Counts) error {
	_, err := fmt.Fprintf(w, "%-12s %6d %6d %6d   %9.4f %9.4f %9.4f\n",
		label, c.TP, c.FP, c.FN, c.Precision(), c.Recall(), c.F1())
	return err
}

func (f *TextFormatter) perDoc(w io.Writer, ev score.Evaluation) error {
	if _, err := fmt.Fprintf(w, "%-12s %6s %6s %6s   %9s %9s %9s\n",
		"DOCUMENT", "TP", "FP", "FN", "PRECISION", "RECALL", "F1"); err != nil {
		return err
	}
	for _, d := range ev.PerDoc {
		if err := row(w, d.ID, d.Counts); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
