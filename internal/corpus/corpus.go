// Package corpus discovers annotation files on disk and pairs gold and
// system documents for scoring.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/deidtools/deideval/internal/standoff"
)

// DefaultPattern matches the annotation files of a flat corpus
// directory. Deeper layouts configure a doublestar pattern such as
// "**/*.xml".
const DefaultPattern = "*.xml"

// Options controls corpus discovery.
type Options struct {
	// Pattern is the doublestar glob matched against slash-separated
	// paths relative to the corpus directory. Empty means
	// DefaultPattern.
	Pattern string

	// Ignore drops files whose relative path or base name matches any
	// of these glob patterns.
	Ignore []string
}

// Load reads annotation documents from path: a single parsed document
// for a file, every discovered document for a directory. A missing
// path is a configuration error. Parse warnings stay on the documents;
// unparseable XML fails the load.
func Load(path string, opts Options) ([]*standoff.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("corpus path: %w", err)
	}
	if !info.IsDir() {
		d, err := standoff.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return []*standoff.Document{d}, nil
	}

	files, err := scan(path, opts)
	if err != nil {
		return nil, err
	}
	docs := make([]*standoff.Document, 0, len(files))
	for _, f := range files {
		d, err := standoff.ParseFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// scan walks dir and returns the files matching the pattern, ignore
// globs applied, in sorted order.
func scan(dir string, opts Options) ([]string, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid corpus pattern %q", pattern)
	}
	ignores := make([]glob.Glob, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		ignores = append(ignores, g)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		matched, err := doublestar.Match(pattern, rel)
		if err != nil || !matched {
			return nil
		}
		if isIgnored(ignores, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// isIgnored reports whether rel matches any ignore glob, by relative
// path or by base name.
func isIgnored(ignores []glob.Glob, rel string) bool {
	base := filepath.Base(rel)
	for _, g := range ignores {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// BySystem groups documents by the system id embedded in their file
// names, then by document id within each system. One directory may
// carry the outputs of several systems; each is scored separately.
func BySystem(docs []*standoff.Document) map[string]map[string]*standoff.Document {
	out := make(map[string]map[string]*standoff.Document)
	for _, d := range docs {
		byID := out[d.SystemID]
		if byID == nil {
			byID = make(map[string]*standoff.Document)
			out[d.SystemID] = byID
		}
		byID[d.ID()] = d
	}
	return out
}

// ByID indexes documents by document id.
func ByID(docs []*standoff.Document) map[string]*standoff.Document {
	out := make(map[string]*standoff.Document, len(docs))
	for _, d := range docs {
		out[d.ID()] = d
	}
	return out
}

// Pair is one gold/system document pairing.
type Pair struct {
	ID     string
	Gold   *standoff.Document
	System *standoff.Document
}

// Align pairs gold and system documents by document id, in sorted id
// order. Ids present on only one side make the alignment fail: scoring
// an incomplete pairing would produce misleading metrics. The error
// names every unmatched id on each side.
func Align(gold, system map[string]*standoff.Document) ([]Pair, error) {
	var missingFromSystem, missingFromGold []string
	for id := range gold {
		if _, ok := system[id]; !ok {
			missingFromSystem = append(missingFromSystem, id)
		}
	}
	for id := range system {
		if _, ok := gold[id]; !ok {
			missingFromGold = append(missingFromGold, id)
		}
	}
	if len(missingFromSystem) > 0 || len(missingFromGold) > 0 {
		sort.Strings(missingFromSystem)
		sort.Strings(missingFromGold)
		return nil, fmt.Errorf(
			"gold and system document sets differ: missing from system %v, missing from gold %v",
			missingFromSystem, missingFromGold)
	}

	ids := make([]string, 0, len(gold))
	for id := range gold {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	pairs := make([]Pair, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, Pair{ID: id, Gold: gold[id], System: system[id]})
	}
	return pairs, nil
}
