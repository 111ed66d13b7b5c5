// Package severity implements the ordinal evaluation track: per-record
// positive-valence severity labels compared with a class-normalized
// mean-absolute-error score and a paired signed-rank significance
// test.
package severity

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Label is an ordinal severity value on the 0..3 scale.
type Label int

// The severity scale. Absent and Severe sit at the extremes, so the
// worst attainable error against them is 3; against the interior
// labels it is 2.
const (
	Absent Label = iota
	Mild
	Moderate
	Severe
)

var labelNames = [...]string{"ABSENT", "MILD", "MODERATE", "SEVERE"}

func (l Label) String() string {
	if l < Absent || l > Severe {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// worstError is the largest deviation attainable against this gold
// label on the 0..3 scale.
func (l Label) worstError() float64 {
	if l == Absent || l == Severe {
		return 3
	}
	return 2
}

// ParseLabel maps a score attribute value to its ordinal label. An
// unrecognized value is an error: the scoring algorithm has no defined
// behavior for an unknown class.
func ParseLabel(s string) (Label, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ABSENT":
		return Absent, nil
	case "MILD":
		return Mild, nil
	case "MODERATE":
		return Moderate, nil
	case "SEVERE":
		return Severe, nil
	}
	return 0, fmt.Errorf("unrecognized severity value %q", s)
}

// readLabel extracts the score attribute of the POSITIVE_VALENCE
// element from one record.
func readLabel(r io.Reader) (Label, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return 0, fmt.Errorf("no POSITIVE_VALENCE element")
		}
		if err != nil {
			return 0, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "POSITIVE_VALENCE" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "score" {
				return ParseLabel(a.Value)
			}
		}
		return 0, fmt.Errorf("POSITIVE_VALENCE element has no score attribute")
	}
}

func readLabelFile(path string) (Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	l, err := readLabel(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// listRecords returns the xml base names of a corpus directory,
// sorted.
func listRecords(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("severity corpus: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ClassStat is one gold class's row in the report.
type ClassStat struct {
	Label       Label
	GoldSupport int
	SystemCount int
	Score       float64
}

// Report is the outcome of one ordinal evaluation: per-class scores in
// ascending label order, their macro-averaged overall score, the
// paired label sequences for verbose output, and the signed-rank
// p-value (NaN when every pair is tied).
type Report struct {
	Classes []ClassStat
	Overall float64
	Names   []string
	Gold    []Label
	System  []Label
	PValue  float64
}

// Evaluate reads both corpora and scores the system labels against the
// gold ones. The directories must contain identical sets of xml file
// names; a mismatch is fatal, as is any unparseable severity label.
func Evaluate(goldDir, systemDir string) (*Report, error) {
	goldNames, err := listRecords(goldDir)
	if err != nil {
		return nil, err
	}
	systemNames, err := listRecords(systemDir)
	if err != nil {
		return nil, err
	}
	if !equalNames(goldNames, systemNames) {
		return nil, fmt.Errorf(
			"gold and system directories must contain the same XML files")
	}
	if len(goldNames) == 0 {
		return nil, fmt.Errorf("no XML records found in %s", goldDir)
	}

	gold := make([]Label, len(goldNames))
	system := make([]Label, len(goldNames))
	for i, name := range goldNames {
		if gold[i], err = readLabelFile(filepath.Join(goldDir, name)); err != nil {
			return nil, err
		}
		if system[i], err = readLabelFile(filepath.Join(systemDir, name)); err != nil {
			return nil, err
		}
	}

	classes, overall := Score(gold, system)
	return &Report{
		Classes: classes,
		Overall: overall,
		Names:   goldNames,
		Gold:    gold,
		System:  system,
		PValue:  Wilcoxon(gold, system),
	}, nil
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Score computes the per-class normalized MAE percentages and their
// unweighted mean. Only classes present in the gold sequence get a
// row; the macro average deliberately ignores class support, so rare
// classes count as much as common ones.
func Score(gold, system []Label) ([]ClassStat, float64) {
	present := make(map[Label]bool)
	for _, g := range gold {
		present[g] = true
	}

	var (
		classes []ClassStat
		sum     float64
	)
	for class := Absent; class <= Severe; class++ {
		if !present[class] {
			continue
		}
		var errs []float64
		for i, g := range gold {
			if g != class {
				continue
			}
			errs = append(errs, math.Abs(float64(system[i]-g)))
		}
		mae := stat.Mean(errs, nil)
		pct := 100 * (1 - mae/class.worstError())
		systemCount := 0
		for _, s := range system {
			if s == class {
				systemCount++
			}
		}
		classes = append(classes, ClassStat{
			Label:       class,
			GoldSupport: len(errs),
			SystemCount: systemCount,
			Score:       pct,
		})
		sum += pct
	}
	return classes, sum / float64(len(classes))
}
