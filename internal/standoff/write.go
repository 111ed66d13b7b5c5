package standoff

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/deidtools/deideval/internal/tags"
)

// elementer is satisfied by tags that can serialize themselves back to
// their exchange form.
type elementer interface {
	Element() (tags.Element, []string)
}

// Serialize regenerates the exchange document: the root element
// wrapping a TAGS element with one child per tag, in document order.
// Tag-level serialization warnings are returned; they never abort the
// write.
func (d *Document) Serialize(w io.Writer) ([]string, error) {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := d.RootName
	if root == "" {
		root = "TAGS"
	}
	rootStart := xml.StartElement{Name: xml.Name{Local: root}}
	if err := enc.EncodeToken(rootStart); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", d.ID(), err)
	}
	tagsStart := xml.StartElement{Name: xml.Name{Local: "TAGS"}}
	wrapped := root != "TAGS"
	if wrapped {
		if err := enc.EncodeToken(tagsStart); err != nil {
			return nil, fmt.Errorf("serialize %s: %w", d.ID(), err)
		}
	}

	var warns []string
	for _, t := range d.Tags {
		et, ok := t.(elementer)
		if !ok {
			warns = append(warns, fmt.Sprintf(
				"%s: tag <%s> has no exchange form, skipped", d.ID(), t.Name()))
			continue
		}
		el, ws := et.Element()
		for _, msg := range ws {
			warns = append(warns, d.ID()+": "+msg)
		}
		start := xml.StartElement{Name: xml.Name{Local: el.Name}}
		for _, a := range el.Attrs {
			start.Attr = append(start.Attr, xml.Attr{
				Name:  xml.Name{Local: a.Name},
				Value: a.Value,
			})
		}
		if err := enc.EncodeToken(start); err != nil {
			return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
		}
	}

	if wrapped {
		if err := enc.EncodeToken(tagsStart.End()); err != nil {
			return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
		}
	}
	if err := enc.EncodeToken(rootStart.End()); err != nil {
		return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
	}
	if err := enc.Flush(); err != nil {
		return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return warns, fmt.Errorf("serialize %s: %w", d.ID(), err)
	}
	return warns, nil
}
