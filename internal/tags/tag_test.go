package tags

import (
	"reflect"
	"strings"
	"testing"
)

// el builds an Element from name/value pairs.
func el(name string, pairs ...string) Element {
	e := Element{Name: name}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Attrs = append(e.Attrs, Attr{Name: pairs[i], Value: pairs[i+1]})
	}
	return e
}

func mustVariant(t *testing.T, name string) Variant {
	t.Helper()
	v, ok := Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q): variant not registered", name)
	}
	return v
}

func TestNew_ValidTag(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "DATE")
	tag, warns := New(v, el("DATE",
		"id", "P3",
		"start", "120",
		"end", "130",
		"text", "2066-04-07",
		"TYPE", "DATE",
	))
	if len(warns) != 0 {
		t.Fatalf("warnings = %v, want none", warns)
	}
	if !tag.Valid() {
		t.Fatal("Valid() = false for a fully valid tag")
	}
	if tag.TagID() != "P3" {
		t.Fatalf("TagID = %q, want P3", tag.TagID())
	}

	key := tag.Key()
	wantNames := []string{"name", "start", "end", "TYPE"}
	wantValues := []string{"DATE", "120", "130", "DATE"}
	if !reflect.DeepEqual(key.Names, wantNames) {
		t.Fatalf("key names = %v, want %v", key.Names, wantNames)
	}
	if !reflect.DeepEqual(key.Values, wantValues) {
		t.Fatalf("key values = %v, want %v", key.Values, wantValues)
	}
}

func TestNew_KeyIsCaseNormalized(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "NAME")
	lower, _ := New(v, el("NAME", "start", "5", "end", "9", "TYPE", "doctor"))
	upper, _ := New(v, el("NAME", "start", "5", "end", "9", "TYPE", "DOCTOR"))
	if !reflect.DeepEqual(lower.Key().Values, upper.Key().Values) {
		t.Fatalf("case-insensitive keys differ: %v vs %v",
			lower.Key().Values, upper.Key().Values)
	}
}

func TestNew_InvalidValueKeptAndReported(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "AGE")
	tag, warns := New(v, el("AGE",
		"id", "P9",
		"start", "40",
		"end", "42",
		"TYPE", "DOCTOR", // not legal for AGE
	))
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warns)
	}
	if !strings.Contains(warns[0], `"TYPE"`) || !strings.Contains(warns[0], "P9") {
		t.Fatalf("warning %q should name the attribute and the tag id", warns[0])
	}
	if tag.Valid() {
		t.Fatal("Valid() = true despite invalid TYPE")
	}
	// The invalid value still participates in the identity.
	if got := tag.Key().Values[3]; got != "DOCTOR" {
		t.Fatalf("key TYPE = %q, want the preserved invalid value DOCTOR", got)
	}
}

func TestNew_MissingKeyAttributeSetEmpty(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "CONTACT")
	tag, warns := New(v, el("CONTACT", "id", "P1", "start", "7", "TYPE", "PHONE"))
	if len(warns) != 1 || !strings.Contains(warns[0], `"end"`) {
		t.Fatalf("warnings = %v, want one naming end", warns)
	}
	end, ok := tag.Attr("end")
	if !ok || end != "" {
		t.Fatalf("end = (%q, %v), want set to empty", end, ok)
	}
	if tag.Valid() {
		t.Fatal("Valid() = true despite empty key attribute")
	}
}

func TestNew_MissingNonKeyAttributeIsFine(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "ID")
	tag, warns := New(v, el("ID", "start", "3", "end", "11", "TYPE", "SSN"))
	if len(warns) != 0 {
		t.Fatalf("warnings = %v, want none", warns)
	}
	if !tag.Valid() {
		t.Fatal("Valid() = false despite only non-key attributes missing")
	}
	if _, ok := tag.Attr("comment"); ok {
		t.Fatal("comment should be unset, not defaulted")
	}
}

func TestElement_RoundTrip(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "LOCATION")
	src := el("LOCATION",
		"id", "P5",
		"start", "200",
		"end", "208",
		"text", "Mercy Hospital",
		"TYPE", "HOSPITAL",
		"comment", "ward name nearby",
	)
	tag, _ := New(v, src)
	out, warns := tag.Element()
	if len(warns) != 0 {
		t.Fatalf("serialize warnings = %v, want none", warns)
	}
	if out.Name != "LOCATION" {
		t.Fatalf("element name = %q", out.Name)
	}
	// docid was never set and is not a key attribute: omitted.
	if _, ok := out.Get("docid"); ok {
		t.Fatal("unset non-key attribute docid should be omitted")
	}
	for _, attr := range []string{"id", "start", "end", "text", "TYPE", "comment"} {
		got, ok := out.Get(attr)
		want, _ := src.Get(attr)
		if !ok || got != want {
			t.Fatalf("attribute %s = (%q, %v), want %q", attr, got, ok, want)
		}
	}
}

func TestElement_InvalidValueEmittedWithWarning(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "DATE")
	tag, _ := New(v, el("DATE", "start", "ten", "end", "20", "TYPE", "DATE"))
	out, warns := tag.Element()
	if got, _ := out.Get("start"); got != "ten" {
		t.Fatalf("start = %q, want the preserved invalid value", got)
	}
	if len(warns) != 1 || !strings.Contains(warns[0], `"start"`) {
		t.Fatalf("warnings = %v, want one naming start", warns)
	}
}

func TestFact_DropsPositions(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "NAME")
	a, _ := New(v, el("NAME", "start", "10", "end", "15", "TYPE", "PATIENT"))
	b, _ := New(v, el("NAME", "start", "300", "end", "312", "TYPE", "PATIENT"))

	fa, fb := a.Fact(), b.Fact()
	if !reflect.DeepEqual(fa.Key(), fb.Key()) {
		t.Fatalf("facts with identical non-positional identity differ: %v vs %v",
			fa.Key(), fb.Key())
	}
	if got := fa.Key().Names; !reflect.DeepEqual(got, []string{"name", "TYPE"}) {
		t.Fatalf("fact key names = %v, want [name TYPE]", got)
	}
	if typ, ok := fa.Attr("TYPE"); !ok || typ != "PATIENT" {
		t.Fatalf("fact TYPE = (%q, %v)", typ, ok)
	}
}

func TestOffsets(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "DATE")
	tag, _ := New(v, el("DATE", "start", "12", "end", "oops", "TYPE", "DATE"))
	if n, ok := tag.StartOffset(); !ok || n != 12 {
		t.Fatalf("StartOffset = (%d, %v), want (12, true)", n, ok)
	}
	if _, ok := tag.EndOffset(); ok {
		t.Fatal("EndOffset should fail on a non-numeric value")
	}
}

func TestAttrMap(t *testing.T) {
	t.Parallel()

	v := mustVariant(t, "PROFESSION")
	tag, _ := New(v, el("PROFESSION", "id", "P2", "start", "1", "end", "8", "TYPE", "PROFESSION"))
	m := tag.AttrMap()
	if m["name"] != "PROFESSION" || m["id"] != "P2" {
		t.Fatalf("AttrMap = %v", m)
	}
	if _, ok := m["comment"]; ok {
		t.Fatal("AttrMap should omit unset attributes")
	}
}
