package law

import "strings"

// ReferenceSeparator joins a law base and a chapter index.
const ReferenceSeparator = "_"

// Reference is a decoded selection key.
type Reference struct {
	Base          string `json:"base"`
	ChapterIndex  string `json:"chapterIndex,omitempty"`
	FullReference string `json:"fullReference,omitempty"`
}

// BuildReference returns base, or base_chapterIndex when a chapter index
// is given. The result is compared by string equality wherever selection
// state is tracked.
func BuildReference(base, chapterIndex string) string {
	if chapterIndex == "" {
		return base
	}
	return base + ReferenceSeparator + chapterIndex
}

// ParseReference splits a reference at the first separator. Bases never
// contain the separator, so any separator inside the chapter index
// survives the round trip.
func ParseReference(ref string) Reference {
	base, chapterIndex, _ := strings.Cut(ref, ReferenceSeparator)
	return Reference{
		Base:          base,
		ChapterIndex:  chapterIndex,
		FullReference: ref,
	}
}

// String rebuilds the reference string.
func (r Reference) String() string {
	return BuildReference(r.Base, r.ChapterIndex)
}

// IsLaw reports whether the reference names a whole law.
func (r Reference) IsLaw() bool {
	return r.ChapterIndex == ""
}
