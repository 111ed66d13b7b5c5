package tags

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a tag's ordered comparison identity: the attribute names that
// define it and their case-normalized values.
type Key struct {
	Names  []string
	Values []string
}

// Tag is implemented by every annotation record that can be scored.
type Tag interface {
	// Name returns the category label, the exchange element name.
	Name() string
	// TagID returns the annotation id, empty when the source had none.
	TagID() string
	// Key returns the ordered identity tuple used for matching.
	Key() Key
	// Attr looks up a declared attribute; ok is false when unset.
	Attr(name string) (string, bool)
}

// PHITag is one annotated span. Attribute values are held exactly as
// they arrived: a value that fails validation stays on the record (and
// is reported) so a malformed tag still serializes and still matches on
// whatever value it has.
type PHITag struct {
	variant Variant
	name    string
	attrs   map[string]string
}

// New builds a tag of the given variant from an exchange element.
// Construction never fails: invalid attribute values are kept and
// reported as warnings, and key attributes missing from the element are
// set to "" and reported.
func New(v Variant, el Element) (*PHITag, []string) {
	t := &PHITag{
		variant: v,
		name:    el.Name,
		attrs:   make(map[string]string, len(v.Attributes)),
	}
	var warns []string
	for _, rule := range v.Attributes {
		value, ok := el.Get(rule.Name)
		switch {
		case ok:
			t.attrs[rule.Name] = value
			if !rule.Valid(value) {
				warns = append(warns, fmt.Sprintf(
					"element <%s (%s)>: attribute %q has invalid value %q",
					el.Name, t.TagID(), rule.Name, value))
			}
		case keyAttr(v.Key, rule.Name):
			t.attrs[rule.Name] = ""
			warns = append(warns, fmt.Sprintf(
				"element <%s (%s)>: key attribute %q missing, set to empty",
				el.Name, t.TagID(), rule.Name))
		}
	}
	return t, warns
}

// Name returns the exchange element name this tag was read from.
func (t *PHITag) Name() string { return t.name }

// TagID returns the id attribute, empty when the source had none.
func (t *PHITag) TagID() string { return t.attrs["id"] }

// Attr looks up a declared attribute; ok is false when unset.
func (t *PHITag) Attr(name string) (string, bool) {
	v, ok := t.attrs[name]
	return v, ok
}

// Variant returns the registry entry this tag was built from.
func (t *PHITag) Variant() Variant { return t.variant }

// Key returns the identity tuple. Values are upper-cased so matching is
// case-insensitive.
func (t *PHITag) Key() Key {
	values := make([]string, len(t.variant.Key))
	for i, n := range t.variant.Key {
		values[i] = strings.ToUpper(t.keyComponent(n))
	}
	return Key{Names: t.variant.Key, Values: values}
}

// keyComponent resolves one key entry: "name" is the element name, the
// rest are attributes. Unset attributes resolve to "".
func (t *PHITag) keyComponent(name string) string {
	if name == "name" {
		return t.name
	}
	return t.attrs[name]
}

// Valid reports whether every declared attribute passes its validator.
// An unset attribute fails only when it is part of the key.
func (t *PHITag) Valid() bool {
	for _, rule := range t.variant.Attributes {
		value, ok := t.attrs[rule.Name]
		if !ok {
			if keyAttr(t.variant.Key, rule.Name) {
				return false
			}
			continue
		}
		if !rule.Valid(value) {
			return false
		}
	}
	return true
}

// Element serializes the tag back to its exchange form, re-emitting
// every declared attribute. Invalid values are emitted anyway and
// reported; an unset key attribute is emitted as "" and reported; unset
// non-key attributes are omitted.
func (t *PHITag) Element() (Element, []string) {
	el := Element{Name: t.name}
	var warns []string
	for _, rule := range t.variant.Attributes {
		value, ok := t.attrs[rule.Name]
		switch {
		case ok:
			el.Attrs = append(el.Attrs, Attr{Name: rule.Name, Value: value})
			if !rule.Valid(value) {
				warns = append(warns, fmt.Sprintf(
					"tag <%s (%s)>: attribute %q has invalid value %q",
					t.name, t.TagID(), rule.Name, value))
			}
		case keyAttr(t.variant.Key, rule.Name):
			el.Attrs = append(el.Attrs, Attr{Name: rule.Name, Value: ""})
			warns = append(warns, fmt.Sprintf(
				"tag <%s (%s)>: key attribute %q unset, emitted empty",
				t.name, t.TagID(), rule.Name))
		}
	}
	return el, warns
}

// StartOffset returns the span start as an integer; ok is false when
// the attribute is unset or not numeric.
func (t *PHITag) StartOffset() (int, bool) { return t.intAttr("start") }

// EndOffset returns the span end as an integer; ok is false when the
// attribute is unset or not numeric.
func (t *PHITag) EndOffset() (int, bool) { return t.intAttr("end") }

func (t *PHITag) intAttr(name string) (int, bool) {
	v, ok := t.attrs[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AttrMap exports the record as a plain attribute map, including the
// element name under "name". Unset attributes are omitted.
func (t *PHITag) AttrMap() map[string]string {
	m := make(map[string]string, len(t.attrs)+1)
	m["name"] = t.name
	for k, v := range t.attrs {
		m[k] = v
	}
	return m
}

// Fact collapses the span to a document-level fact: the identity
// attributes with the positional components dropped, so the fact
// compares independent of exact offsets.
func (t *PHITag) Fact() *DocTag {
	k := t.Key()
	f := &DocTag{name: t.name}
	for i, n := range k.Names {
		if positional(n) {
			continue
		}
		f.names = append(f.names, n)
		f.values = append(f.values, k.Values[i])
	}
	return f
}

// DocTag is a document-level annotation fact: a tag reduced to its
// non-positional identity attributes.
type DocTag struct {
	name   string
	names  []string
	values []string
}

// Name returns the category label the fact was collapsed from.
func (t *DocTag) Name() string { return t.name }

// TagID returns "": document-level facts carry no annotation id.
func (t *DocTag) TagID() string { return "" }

// Key returns the reduced identity tuple.
func (t *DocTag) Key() Key {
	return Key{Names: t.names, Values: t.values}
}

// Attr looks up one of the retained identity attributes.
func (t *DocTag) Attr(name string) (string, bool) {
	for i, n := range t.names {
		if n == name {
			return t.values[i], true
		}
	}
	return "", false
}

func keyAttr(key []string, name string) bool {
	for _, k := range key {
		if k == name {
			return true
		}
	}
	return false
}
