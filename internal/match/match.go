// Package match computes true-positive, false-positive, and
// false-negative sets for one document's annotations under a
// configurable equality policy.
package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deidtools/deideval/internal/tags"
)

// Policy selects how two tag identities compare. The zero value is the
// strict policy: every key component must match exactly. One policy is
// chosen per evaluation run and shared by every set built during it;
// mixing policies across sets of the same run is a caller bug.
type Policy struct {
	fuzzyEnd  bool
	tolerance int
}

// Strict returns the exact-match policy.
func Strict() Policy { return Policy{} }

// FuzzyEnd returns a boundary-tolerant policy: identities are equal
// when every key component except end matches exactly and the end
// offsets differ by at most tolerance characters.
func FuzzyEnd(tolerance int) Policy {
	if tolerance < 0 {
		tolerance = 0
	}
	return Policy{fuzzyEnd: true, tolerance: tolerance}
}

// Tolerant reports whether the policy relaxes the end boundary.
func (p Policy) Tolerant() bool { return p.fuzzyEnd }

// Tolerance returns the permitted end-offset discrepancy.
func (p Policy) Tolerance() int { return p.tolerance }

func (p Policy) String() string {
	if p.fuzzyEnd {
		return fmt.Sprintf("fuzzy-end(%d)", p.tolerance)
	}
	return "strict"
}

// Equal reports whether two identities match under the policy.
func (p Policy) Equal(a, b tags.Key) bool {
	if len(a.Names) != len(b.Names) {
		return false
	}
	var endA, endB string
	for i := range a.Names {
		if a.Names[i] != b.Names[i] {
			return false
		}
		if p.fuzzyEnd && a.Names[i] == "end" {
			endA, endB = a.Values[i], b.Values[i]
			continue
		}
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	if !p.fuzzyEnd {
		return true
	}
	return p.endsWithin(endA, endB)
}

// endsWithin compares end components under the tolerance. Offsets that
// fail to parse fall back to exact comparison.
func (p Policy) endsWithin(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a == b
	}
	d := na - nb
	if d < 0 {
		d = -d
	}
	return d <= p.tolerance
}

// Bucket derives the hash key for an identity. Under fuzzy-end the end
// component is replaced by a placeholder so that any two identities the
// policy may consider equal land in the same bucket: Equal(a, b)
// implies Bucket(a) == Bucket(b), which keeps set operations linear.
func (p Policy) Bucket(k tags.Key) string {
	var b strings.Builder
	for i, n := range k.Names {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if p.fuzzyEnd && n == "end" {
			b.WriteByte('*')
			continue
		}
		b.WriteString(k.Values[i])
	}
	return b.String()
}

// Set is a tag set keyed by the active policy. Insertion order is
// preserved; adding a tag whose identity is already present is a no-op.
type Set struct {
	policy  Policy
	buckets map[string][]int
	items   []tags.Tag
}

// NewSet builds a policy-keyed set from the given tags.
func NewSet(p Policy, items []tags.Tag) *Set {
	s := &Set{policy: p, buckets: make(map[string][]int, len(items))}
	for _, t := range items {
		s.Add(t)
	}
	return s
}

// Add inserts a tag unless an equal identity is already present. It
// reports whether the tag was inserted.
func (s *Set) Add(t tags.Tag) bool {
	key := t.Key()
	bucket := s.policy.Bucket(key)
	for _, idx := range s.buckets[bucket] {
		if s.policy.Equal(s.items[idx].Key(), key) {
			return false
		}
	}
	s.buckets[bucket] = append(s.buckets[bucket], len(s.items))
	s.items = append(s.items, t)
	return true
}

// Contains reports whether an identity equal to t's is in the set.
func (s *Set) Contains(t tags.Tag) bool {
	key := t.Key()
	for _, idx := range s.buckets[s.policy.Bucket(key)] {
		if s.policy.Equal(s.items[idx].Key(), key) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct identities in the set.
func (s *Set) Len() int { return len(s.items) }

// Items returns the set members in insertion order.
func (s *Set) Items() []tags.Tag {
	out := make([]tags.Tag, len(s.items))
	copy(out, s.items)
	return out
}

// Intersect returns the members of s whose identity is also in other.
func (s *Set) Intersect(other *Set) []tags.Tag {
	var out []tags.Tag
	for _, t := range s.items {
		if other.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// Diff returns the members of s whose identity is absent from other.
func (s *Set) Diff(other *Set) []tags.Tag {
	var out []tags.Tag
	for _, t := range s.items {
		if !other.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// Result holds the outcome of matching one document's tag sets.
type Result struct {
	TP []tags.Tag // gold identities the system also produced
	FP []tags.Tag // system identities absent from the gold standard
	FN []tags.Tag // gold identities the system missed
}

// Match compares system output against the gold standard for one
// document: TP = gold∩system, FP = system−gold, FN = gold−system.
// Membership uses key identity only, so auxiliary attributes such as
// comments or the marked source text never affect the outcome. Empty
// inputs on either side are fine; the ratio guards live with the
// metric computation, not here.
func Match(system, gold []tags.Tag, p Policy) Result {
	sys := NewSet(p, system)
	ref := NewSet(p, gold)
	return Result{
		TP: ref.Intersect(sys),
		FP: sys.Diff(ref),
		FN: ref.Diff(sys),
	}
}
