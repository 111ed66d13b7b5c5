// Package tags defines the typed annotation records the evaluator
// scores: the variant registry with per-attribute validation rules, the
// identity keys used for matching, and conversion to and from
// exchange-format elements.
package tags

// Attr is one named attribute of an exchange element.
type Attr struct {
	Name  string
	Value string
}

// Element is the exchange-boundary form of a tag: the element name and
// its attributes in document order. Attribute order is preserved so
// serialized output stays deterministic.
type Element struct {
	Name  string
	Attrs []Attr
}

// Get returns the value of the named attribute and whether it is set.
func (e Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
