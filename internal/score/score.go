// Package score aggregates per-document match results into
// micro-averaged precision, recall, and F1, and composes the combined
// per-category report for the spans track.
package score

import (
	"strings"

	"github.com/deidtools/deideval/internal/corpus"
	"github.com/deidtools/deideval/internal/filter"
	"github.com/deidtools/deideval/internal/match"
	"github.com/deidtools/deideval/internal/tags"
)

// Counts accumulates match outcomes. All ratios are zero-guarded: a
// zero denominator yields 0, never an error.
type Counts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Precision is TP / (TP + FP).
func (c Counts) Precision() float64 { return ratio(c.TP, c.TP+c.FP) }

// Recall is TP / (TP + FN).
func (c Counts) Recall() float64 { return ratio(c.TP, c.TP+c.FN) }

// F1 is the harmonic mean of precision and recall.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Add returns the element-wise sum. Summing counts before computing
// ratios is what makes the aggregate micro-averaged.
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// DocCounts is the match triple for one document.
type DocCounts struct {
	ID string
	Counts
}

// Evaluation is one scoring pass over a paired corpus: per-document
// triples plus their micro-averaged total.
type Evaluation struct {
	Label  string
	PerDoc []DocCounts
	Total  Counts
}

// Run scores every pair under the predicate and policy. The
// accumulation is a commutative sum, so pair order only affects report
// layout, never the metrics.
func Run(label string, pairs []corpus.Pair, keep filter.Predicate, p match.Policy) Evaluation {
	ev := Evaluation{Label: label}
	for _, pr := range pairs {
		res := match.Match(
			restrict(pr.System.AllTags(), keep),
			restrict(pr.Gold.AllTags(), keep),
			p,
		)
		c := Counts{TP: len(res.TP), FP: len(res.FP), FN: len(res.FN)}
		ev.PerDoc = append(ev.PerDoc, DocCounts{ID: pr.ID, Counts: c})
		ev.Total = ev.Total.Add(c)
	}
	return ev
}

// restrict keeps the tags selected by the predicate. A nil predicate
// keeps everything.
func restrict(items []tags.Tag, keep filter.Predicate) []tags.Tag {
	if keep == nil {
		return items
	}
	out := make([]tags.Tag, 0, len(items))
	for _, t := range items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// category keeps tags of one category only, independent of any TYPE
// vocabulary overlap with the category name.
func category(name string) filter.Predicate {
	return func(t tags.Tag) bool { return strings.EqualFold(t.Name(), name) }
}

// Track is the combined spans-track report: one pooled pass plus one
// pass per registered category, all computed from the same parsed
// documents. A user predicate, when present, intersects every pass.
type Track struct {
	Overall    Evaluation
	Categories []Evaluation
}

// NewTrack runs the pooled pass and the per-category passes.
func NewTrack(pairs []corpus.Pair, keep filter.Predicate, p match.Policy) Track {
	t := Track{Overall: Run("TOTAL", pairs, keep, p)}
	for _, c := range tags.Categories() {
		pred := category(c)
		if keep != nil {
			pred = filter.All(keep, pred)
		}
		t.Categories = append(t.Categories, Run(c, pairs, pred, p))
	}
	return t
}
