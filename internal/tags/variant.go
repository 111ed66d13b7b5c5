package tags

import (
	"strconv"
	"strings"
)

// Validator reports whether a raw attribute value is acceptable.
type Validator func(value string) bool

// AttrRule declares one attribute of a variant together with its
// validator. Rules are kept in exchange order.
type AttrRule struct {
	Name  string
	Valid Validator
}

// Variant describes one annotation element type: the declared
// attributes, the ordered key that defines comparison identity, and the
// legal TYPE vocabulary.
type Variant struct {
	Name       string
	Attributes []AttrRule
	Key        []string
	Types      []string
}

// TypeAllowed reports whether a TYPE value is legal for this variant.
func (v Variant) TypeAllowed(value string) bool {
	upper := strings.ToUpper(value)
	for _, t := range v.Types {
		if t == upper {
			return true
		}
	}
	return false
}

func anyValue(string) bool { return true }

func integer(v string) bool {
	_, err := strconv.Atoi(v)
	return err == nil
}

func vocabulary(values []string) Validator {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = struct{}{}
	}
	return func(v string) bool {
		_, ok := set[strings.ToUpper(v)]
		return ok
	}
}

// spanAttributes returns the base attribute rules shared by every span
// variant, in exchange order.
func spanAttributes() []AttrRule {
	return []AttrRule{
		{Name: "id", Valid: anyValue},
		{Name: "docid", Valid: anyValue},
		{Name: "start", Valid: integer},
		{Name: "end", Valid: integer},
		{Name: "text", Valid: anyValue},
	}
}

// phiKey is the identity tuple shared by every PHI variant: the element
// name plus the span boundaries and TYPE.
var phiKey = []string{"name", "start", "end", "TYPE"}

// positional marks the key attributes that carry span offsets. They are
// the ones dropped when a tag is collapsed to a document-level fact and
// the ones the fuzzy-end policy treats specially.
func positional(name string) bool {
	return name == "start" || name == "end"
}

func phiVariant(name string, types ...string) Variant {
	attrs := spanAttributes()
	attrs = append(attrs,
		AttrRule{Name: "TYPE", Valid: vocabulary(types)},
		// comment stays last so serialized attributes end with it.
		AttrRule{Name: "comment", Valid: anyValue},
	)
	return Variant{Name: name, Attributes: attrs, Key: phiKey, Types: types}
}

var nameTypes = []string{"PATIENT", "DOCTOR", "USERNAME"}

var professionTypes = []string{"PROFESSION"}

var locationTypes = []string{
	"ROOM", "DEPARTMENT", "HOSPITAL", "ORGANIZATION", "STREET",
	"CITY", "STATE", "COUNTRY", "ZIP", "LOCATION-OTHER",
}

var ageTypes = []string{"AGE"}

var dateTypes = []string{"DATE"}

var contactTypes = []string{"PHONE", "FAX", "EMAIL", "URL", "IPADDR"}

var idTypes = []string{
	"SSN", "MEDICALRECORD", "HEALTHPLAN", "ACCOUNT",
	"LICENSE", "VEHICLE", "DEVICE", "BIOID", "IDNUM",
}

var otherTypes = []string{"OTHER"}

// PHITypes returns the full TYPE vocabulary accepted by the generic PHI
// variant: the union of every category-specific vocabulary.
func PHITypes() []string {
	out := make([]string, 0, 32)
	out = append(out, nameTypes...)
	out = append(out, professionTypes...)
	out = append(out, locationTypes...)
	out = append(out, ageTypes...)
	out = append(out, dateTypes...)
	out = append(out, contactTypes...)
	out = append(out, idTypes...)
	out = append(out, otherTypes...)
	return out
}

var variants = []Variant{
	phiVariant("PHI", PHITypes()...),
	phiVariant("NAME", nameTypes...),
	phiVariant("PROFESSION", professionTypes...),
	phiVariant("LOCATION", locationTypes...),
	phiVariant("AGE", ageTypes...),
	phiVariant("DATE", dateTypes...),
	phiVariant("CONTACT", contactTypes...),
	phiVariant("ID", idTypes...),
	phiVariant("OTHER", otherTypes...),
}

// Variants returns the registered variants in registry order. The PHI
// variant comes first, followed by the concrete categories.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// Categories returns the concrete category names scored in reports, in
// registry order. The pooled PHI variant is excluded.
func Categories() []string {
	out := make([]string, 0, len(variants)-1)
	for _, v := range variants {
		if v.Name == "PHI" {
			continue
		}
		out = append(out, v.Name)
	}
	return out
}

// Lookup resolves an exchange element name to its registered variant.
// Matching is case-insensitive: element names arrive upper-cased but the
// registry does not depend on it.
func Lookup(name string) (Variant, bool) {
	upper := strings.ToUpper(name)
	for _, v := range variants {
		if v.Name == upper {
			return v, true
		}
	}
	return Variant{}, false
}
