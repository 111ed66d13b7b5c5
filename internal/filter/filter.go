// Package filter resolves user-supplied attribute values to the tag
// attributes that legitimately take them and builds composable
// inclusion predicates from the result.
package filter

import (
	"strings"

	"github.com/deidtools/deideval/internal/tags"
)

// Predicate reports whether a tag is kept by a filter.
type Predicate func(tags.Tag) bool

// keepAll matches every tag. Unresolvable filter values degrade to it
// so a typo never silently excludes an entire corpus.
func keepAll(tags.Tag) bool { return true }

// resolution maps an upper-cased value to the attributes that can take
// it, built once from the variant registry. Resolution is exclusive: a
// value matching a category name resolves to the element name only;
// the TYPE vocabularies are consulted for the rest. "DATE" therefore
// selects DATE tags, not every tag whose TYPE happens to be DATE.
var resolution = buildResolution()

func buildResolution() map[string][]string {
	m := make(map[string][]string)
	for _, v := range tags.Variants() {
		m[strings.ToUpper(v.Name)] = []string{"name"}
	}
	for _, v := range tags.Variants() {
		for _, t := range v.Types {
			upper := strings.ToUpper(t)
			if _, ok := m[upper]; ok {
				continue
			}
			m[upper] = []string{"TYPE"}
		}
	}
	return m
}

// Resolve builds the predicate for one filter value: true when the
// attribute the value resolves to carries it on the tag,
// case-insensitively. resolved is false when the value matches no
// registered category or vocabulary; the returned predicate then keeps
// every tag and the caller should warn the operator.
func Resolve(value string) (pred Predicate, resolved bool) {
	want := strings.ToUpper(strings.TrimSpace(value))
	attrs, ok := resolution[want]
	if !ok {
		return keepAll, false
	}
	return func(t tags.Tag) bool {
		for _, attr := range attrs {
			if attr == "name" {
				if strings.ToUpper(t.Name()) == want {
					return true
				}
				continue
			}
			if v, ok := t.Attr(attr); ok && strings.ToUpper(v) == want {
				return true
			}
		}
		return false
	}, true
}

// Any combines predicates by logical OR.
func Any(preds ...Predicate) Predicate {
	return func(t tags.Tag) bool {
		for _, p := range preds {
			if p(t) {
				return true
			}
		}
		return false
	}
}

// All combines predicates by logical AND.
func All(preds ...Predicate) Predicate {
	return func(t tags.Tag) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(t tags.Tag) bool { return !p(t) }
}

// Build assembles the composite predicate for a list of filter values:
// disjunctive by default, conjunctive on request, optionally inverted
// as a whole. It returns the values that resolved to no attribute; the
// caller warns about them (they contribute keep-all predicates, never
// an abort). An empty value list yields a keep-all predicate.
func Build(values []string, conjunctive, invert bool) (Predicate, []string) {
	if len(values) == 0 {
		return keepAll, nil
	}
	var (
		preds      []Predicate
		unresolved []string
	)
	for _, v := range values {
		p, ok := Resolve(v)
		if !ok {
			unresolved = append(unresolved, v)
		}
		preds = append(preds, p)
	}
	composite := Any(preds...)
	if conjunctive {
		composite = All(preds...)
	}
	if invert {
		composite = Not(composite)
	}
	return composite, unresolved
}
