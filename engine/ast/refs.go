package ast

import (
	"strings"

	"golang.org/x/text/cases"
)

// Reference is the target of a link reference definition.
type Reference struct {
	URL   string
	Title string
}

// References maps normalized labels to link targets. A single map is threaded
// through all stages of a parse, including recursive block parsing and every
// chunk of a streaming session.
type References map[string]Reference

// NormalizeLabel case-folds a link label and collapses runs of whitespace into
// a single space. Leading and trailing whitespace is removed.
func NormalizeLabel(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return ""
	}
	return cases.Fold().String(label)
}

// Define stores a reference for label. The first definition of a label wins;
// Define reports whether the reference has been stored.
func (refs References) Define(label string, ref Reference) bool {
	key := NormalizeLabel(label)
	if key == "" {
		return false
	}
	if _, exists := refs[key]; exists {
		tracer().Debugf("duplicate reference label %q ignored", label)
		return false
	}
	refs[key] = ref
	return true
}

// Lookup finds the reference for a label. The label need not be normalized.
func (refs References) Lookup(label string) (Reference, bool) {
	if refs == nil {
		return Reference{}, false
	}
	ref, ok := refs[NormalizeLabel(label)]
	return ref, ok
}

// Merge copies all references of other which are not yet defined in refs.
func (refs References) Merge(other References) {
	for key, ref := range other {
		if _, exists := refs[key]; !exists {
			refs[key] = ref
		}
	}
}

// Clone returns a copy of refs.
func (refs References) Clone() References {
	c := make(References, len(refs))
	for key, ref := range refs {
		c[key] = ref
	}
	return c
}
