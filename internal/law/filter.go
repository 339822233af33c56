package law

import "strings"

// Filter restricts l to the chapters and paragraphs allowed by f. An empty
// allow-list allows everything at that level. The paragraph allow-list
// applies at every depth. An allowed chapter keeps its sub-chapters; a
// chapter that is not allowed itself survives only as the ancestor of an
// allowed sub-chapter, without its own paragraphs. A surviving chapter
// keeps its paragraph list even if filtering empties it. l is not
// modified.
func Filter(l Law, f LawFilter) Law {
	if f.IsZero() {
		return l
	}
	l.Chapters = filterChapters(l.Chapters, f, false)
	return l
}

// filterChapters filters one level. inAllowed is set below a chapter that
// matched the chapter allow-list.
func filterChapters(chapters []Chapter, f LawFilter, inAllowed bool) []Chapter {
	out := make([]Chapter, 0, len(chapters))
	for _, c := range chapters {
		if inAllowed || allowed(f.AllowedChapters, c.ChapterIndex, c.Number) {
			c = filterParagraphs(c, f.AllowedParagraphs)
			c.SubChapters = filterChapters(c.SubChapters, f, true)
			out = append(out, c)
			continue
		}

		sub := filterChapters(c.SubChapters, f, false)
		if len(sub) == 0 {
			continue
		}
		c.Paragraphs = []Paragraph{}
		c.SubChapters = sub
		out = append(out, c)
	}
	return out
}

// FilterAll applies f to every law in laws, or only to the law named by
// f.LawBase when it is set.
func FilterAll(laws []Law, f LawFilter) []Law {
	out := make([]Law, len(laws))
	for i, l := range laws {
		if f.LawBase != "" && l.Base != f.LawBase {
			out[i] = l
			continue
		}
		out[i] = Filter(l, f)
	}
	return out
}

func filterParagraphs(c Chapter, allow []string) Chapter {
	if len(allow) == 0 {
		return c
	}
	paragraphs := make([]Paragraph, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		if allowed(allow, p.ChapterIndex, p.Number) {
			paragraphs = append(paragraphs, p)
		}
	}
	c.Paragraphs = paragraphs
	return c
}

// allowed reports whether some entry is a substring of index or names the
// node by its display number ("Kapittel 2", "§ 3").
func allowed(allow []string, index, number string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if strings.Contains(index, a) || strings.EqualFold(a, number) {
			return true
		}
	}
	return false
}

// AllowsParagraph reports whether a paragraph of the law base passes the
// paragraph allow-list of f. Chapter restrictions are not considered,
// since a flat paragraph row does not know its chapter's index.
func (f LawFilter) AllowsParagraph(base, chapterIndex, number string) bool {
	if f.LawBase != "" && base != f.LawBase {
		return true
	}
	return allowed(f.AllowedParagraphs, chapterIndex, number)
}
