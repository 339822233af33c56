package law

import "strings"

// Search narrows laws to those matching query, case-insensitively, at any
// level of the hierarchy. A chapter that matches only by its own title or
// number keeps all of its paragraphs; a law that matches only by name
// keeps all of its chapters. An empty query returns laws unchanged.
func Search(laws []Law, query string) []Law {
	if query == "" {
		return laws
	}
	q := strings.ToLower(query)

	out := make([]Law, 0, len(laws))
	for _, l := range laws {
		if sl, ok := searchLaw(l, q); ok {
			out = append(out, sl)
		}
	}
	return out
}

func searchLaw(l Law, q string) (Law, bool) {
	lawMatches := contains(l.ShortName, q) || contains(l.FullName, q)

	chapters := searchChapters(l.Chapters, q)
	if !lawMatches && len(chapters) == 0 {
		return Law{}, false
	}
	if len(chapters) > 0 {
		l.Chapters = chapters
	}
	return l, true
}

func searchChapters(chapters []Chapter, q string) []Chapter {
	var out []Chapter
	for _, c := range chapters {
		if sc, ok := searchChapter(c, q); ok {
			out = append(out, sc)
		}
	}
	return out
}

func searchChapter(c Chapter, q string) (Chapter, bool) {
	chapterMatches := contains(c.Title, q) || contains(c.Number, q)

	var paragraphs []Paragraph
	for _, p := range c.Paragraphs {
		if contains(p.Number, q) || contains(p.Title, q) {
			paragraphs = append(paragraphs, p)
		}
	}
	subChapters := searchChapters(c.SubChapters, q)

	if !chapterMatches && len(paragraphs) == 0 && len(subChapters) == 0 {
		return Chapter{}, false
	}
	if len(paragraphs) > 0 {
		c.Paragraphs = paragraphs
	}
	if len(subChapters) > 0 || !chapterMatches {
		c.SubChapters = subChapters
	}
	return c, true
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
