package standoff

import "regexp"

// fileNameRe captures the corpus naming convention PATIENT-DOC[SYSTEM].xml.
// Patient and document ids are digit runs; whatever trails the document
// id before the extension is the system id.
var fileNameRe = regexp.MustCompile(`^([0-9]+)-([0-9]+)([^.]*)\.[xX][mM][lL]$`)

// SplitName splits a corpus file name into patient id, document id and
// system id. The system id is empty when nothing follows the document
// id. ok is false when the name does not follow the convention.
func SplitName(base string) (patient, doc, system string, ok bool) {
	m := fileNameRe.FindStringSubmatch(base)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}
