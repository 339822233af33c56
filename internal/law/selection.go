package law

import (
	"strconv"
	"strings"
)

// Selection is the value exchanged with a presentation layer. A cleared
// selection has every field set to the empty string, so no field is
// omitted when encoded.
type Selection struct {
	Law                string `json:"law"`
	Chapter            string `json:"chapter"`
	Paragraph          string `json:"paragraph"`
	FullReference      string `json:"fullReference"`
	JuridicalReference string `json:"juridicalReference"`
}

// Select builds the selection for a paragraph of a chapter of l.
func Select(l Law, c Chapter, p Paragraph) Selection {
	return Selection{
		Law:                l.ShortName,
		Chapter:            c.Number,
		Paragraph:          strings.TrimSpace(p.Number + " " + p.Title),
		FullReference:      BuildReference(l.Base, p.ChapterIndex),
		JuridicalReference: p.JuridicalReference,
	}
}

// SelectLaw builds a selection naming a whole law.
func SelectLaw(l Law) Selection {
	return Selection{Law: l.ShortName, FullReference: BuildReference(l.Base, "")}
}

// ClearSelection returns the empty selection.
func ClearSelection() Selection {
	return Selection{}
}

// IsEmpty reports whether no law is selected.
func (s Selection) IsEmpty() bool {
	return s.Law == ""
}

// Display renders "law - chapter - paragraph", or placeholder when empty.
func (s Selection) Display(placeholder string) string {
	if s.IsEmpty() {
		return placeholder
	}
	parts := []string{s.Law}
	if s.Chapter != "" {
		parts = append(parts, s.Chapter)
	}
	if s.Paragraph != "" {
		parts = append(parts, s.Paragraph)
	}
	return strings.Join(parts, " - ")
}

// SelectionSet is an ordered multi-selection keyed by FullReference.
type SelectionSet []Selection

// Toggle adds s if its reference is not selected and removes it if it
// is. The receiver is not modified.
func (set SelectionSet) Toggle(s Selection) SelectionSet {
	out := make(SelectionSet, 0, len(set)+1)
	removed := false
	for _, existing := range set {
		if existing.FullReference == s.FullReference {
			removed = true
			continue
		}
		out = append(out, existing)
	}
	if !removed {
		out = append(out, s)
	}
	return out
}

// Contains reports whether ref is selected.
func (set SelectionSet) Contains(ref string) bool {
	for _, s := range set {
		if s.FullReference == ref {
			return true
		}
	}
	return false
}

// Display renders "<n> paragraf(er) valgt", or placeholder when empty.
func (set SelectionSet) Display(placeholder string) string {
	switch len(set) {
	case 0:
		return placeholder
	case 1:
		return "1 paragraf valgt"
	default:
		return strconv.Itoa(len(set)) + " paragrafer valgt"
	}
}
