// Package standoff reads and writes one document's annotation set in
// the exchange format: an XML document whose root wraps a TAGS element,
// each child of which is one annotated span. Document identifiers come
// from the corpus file-naming convention.
package standoff

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deidtools/deideval/internal/tags"
)

// Document is one parsed annotation file. Tags appear in document
// order; Categories groups them under their canonical category name.
// Warnings collect every recoverable defect found during the parse;
// they never prevent the document from being scored.
type Document struct {
	Path       string
	PatientID  string
	DocID      string
	SystemID   string
	RootName   string
	Tags       []tags.Tag
	Categories map[string][]tags.Tag
	Warnings   []string

	seenIDs map[string]bool
}

// ID identifies the document within a corpus: PATIENT-DOC when the
// file follows the naming convention, the bare file stem otherwise.
func (d *Document) ID() string {
	if d.PatientID == "" {
		return d.DocID
	}
	return d.PatientID + "-" + d.DocID
}

// Category returns the tags of one category in document order.
func (d *Document) Category(name string) []tags.Tag {
	return d.Categories[strings.ToUpper(name)]
}

// AllTags returns every tag in document order, pooled across
// categories.
func (d *Document) AllTags() []tags.Tag {
	out := make([]tags.Tag, len(d.Tags))
	copy(out, d.Tags)
	return out
}

// ParseFile reads and parses one annotation file.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, path)
}

// Parse reads an annotation document from r. The path supplies the
// document identifiers via the naming convention; a name that does not
// follow it produces a warning and the file stem is used as the id.
// Unparseable XML is an error; a document without a TAGS element
// parses as empty with a warning.
func Parse(r io.Reader, path string) (*Document, error) {
	d := &Document{
		Path:       path,
		Categories: make(map[string][]tags.Tag),
		seenIDs:    make(map[string]bool),
	}
	base := filepath.Base(path)
	if patient, doc, system, ok := SplitName(base); ok {
		d.PatientID, d.DocID, d.SystemID = patient, doc, system
	} else {
		d.DocID = strings.TrimSuffix(base, filepath.Ext(base))
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"file name %q does not follow PATIENT-DOC[SYSTEM].xml", base))
	}

	dec := xml.NewDecoder(r)
	rootSeen := false
	tagsSeen := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			rootSeen = true
			d.RootName = se.Name.Local
			if se.Name.Local == "TAGS" {
				tagsSeen = true
				if err := d.parseTags(dec); err != nil {
					return nil, fmt.Errorf("parse %s: %w", base, err)
				}
			}
			continue
		}
		if se.Name.Local != "TAGS" {
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("parse %s: %w", base, err)
			}
			continue
		}
		tagsSeen = true
		if err := d.parseTags(dec); err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
	}
	if !rootSeen {
		return nil, fmt.Errorf("parse %s: document has no root element", base)
	}
	if !tagsSeen {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"%s: no TAGS element, document treated as unannotated", d.ID()))
	}
	return d, nil
}

// parseTags consumes the children of an open TAGS element.
func (d *Document) parseTags(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := tags.Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, tags.Attr{Name: a.Name.Local, Value: a.Value})
			}
			d.addElement(el)
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// addElement turns one raw element into a typed tag. Unknown element
// names and duplicate annotation ids are recoverable: the operator is
// warned and scoring continues.
func (d *Document) addElement(el tags.Element) {
	v, ok := tags.Lookup(el.Name)
	if !ok {
		d.Warnings = append(d.Warnings, fmt.Sprintf(
			"%s: unknown annotation element <%s>, skipped", d.ID(), el.Name))
		return
	}
	t, warns := tags.New(v, el)
	for _, w := range warns {
		d.Warnings = append(d.Warnings, d.ID()+": "+w)
	}
	if id := t.TagID(); id != "" {
		if d.seenIDs[id] {
			d.Warnings = append(d.Warnings, fmt.Sprintf(
				"%s: duplicate annotation id %q", d.ID(), id))
		}
		d.seenIDs[id] = true
	}
	d.Tags = append(d.Tags, t)
	d.Categories[v.Name] = append(d.Categories[v.Name], t)
}
