package law

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderTitle is what the scraper reports when it could not find a
// real document title (the site navigation heading).
const PlaceholderTitle = "Hovedmeny"

var (
	chapterNumberPattern   = regexp.MustCompile(`(?i)Kapittel\s+(\d+[A-Z]?)`)
	paragraphNumberPattern = regexp.MustCompile(`^\s*§\s*(\d+(?:-\d+)?[a-zA-Z]?)\b`)
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Parse converts a raw document payload into a Law. It never fails: every
// extraction step falls back to a positional or empty value. base is used
// when the payload does not carry its own.
func Parse(raw RawDocument, base string) Law {
	if raw.Base != "" {
		base = raw.Base
	}

	shortName := firstNonEmpty(raw.ShortTitle, raw.Title, base)
	fullName := firstNonEmpty(raw.Title, base)

	chapters := make([]Chapter, 0, len(raw.Chapters))
	for i, rc := range raw.Chapters {
		id := firstNonEmpty(rc.ID, fmt.Sprintf("chapter-%d", i))
		index := firstNonEmpty(rc.ID, fmt.Sprintf("kapittel-%d", i))
		chapters = append(chapters, parseChapter(rc, i, id, index))
	}

	return Law{
		ID:        base,
		Base:      base,
		ShortName: shortName,
		FullName:  fullName,
		Chapters:  chapters,
		Loaded:    true,
	}
}

func parseChapter(rc RawChapter, position int, id, index string) Chapter {
	paragraphs := make([]Paragraph, 0, len(rc.Paragraphs))
	for j, rp := range rc.Paragraphs {
		paragraphs = append(paragraphs, parseParagraph(rp, j, id, index))
	}

	subChapters := make([]Chapter, 0, len(rc.SubChapters))
	for j, sc := range rc.SubChapters {
		childID := id + "-" + firstNonEmpty(sc.ID, fmt.Sprintf("chapter-%d", j))
		childIndex := index + "-" + firstNonEmpty(sc.ID, fmt.Sprintf("kapittel-%d", j))
		subChapters = append(subChapters, parseChapter(sc, j, childID, childIndex))
	}

	return Chapter{
		ID:           id,
		Number:       ChapterNumber(rc.Title, position),
		Title:        firstNonEmpty(rc.Title, fmt.Sprintf("Kapittel %d", position+1)),
		ChapterIndex: index,
		Paragraphs:   paragraphs,
		SubChapters:  subChapters,
	}
}

func parseParagraph(rp RawParagraph, position int, chapterID, chapterIndex string) Paragraph {
	number := ParagraphNumber(rp.Number, rp.Content, position)
	title := ParagraphTitle(rp.Content)
	index := firstNonEmpty(rp.ID, fmt.Sprintf("%s-paragraf-%d", chapterIndex, position))

	return Paragraph{
		ID:                 firstNonEmpty(rp.ID, fmt.Sprintf("%s-para-%d", chapterID, position)),
		Number:             number,
		Title:              title,
		Content:            rp.Content,
		ChapterIndex:       index,
		JuridicalReference: JuridicalReference(number, title),
		Ledd:               parseClauses(rp.Children, index, number),
	}
}

func parseClauses(children []RawNode, parentIndex, paragraphNumber string) []Clause {
	var clauses []Clause
	n := 1
	for _, child := range children {
		if !isClause(child) {
			continue
		}
		id := fmt.Sprintf("%s-ledd-%d", parentIndex, n)
		clauses = append(clauses, Clause{
			ID:                 id,
			Number:             n,
			Content:            nodeText(child),
			JuridicalReference: fmt.Sprintf("%s, ledd %d", paragraphNumber, n),
			Bokstaver:          parseLetteredItems(child.Children, id, paragraphNumber, n),
		})
		n++
	}
	return clauses
}

func parseLetteredItems(children []RawNode, parentID, paragraphNumber string, clause int) []LetteredItem {
	var items []LetteredItem
	k := 0
	for _, child := range children {
		if !isLetteredItem(child) {
			continue
		}
		letter := Letter(k)
		items = append(items, LetteredItem{
			ID:                 fmt.Sprintf("%s-bokstav-%s", parentID, letter),
			Letter:             letter,
			Content:            nodeText(child),
			JuridicalReference: fmt.Sprintf("%s, ledd %d, bokstav %s", paragraphNumber, clause, letter),
		})
		k++
	}
	return items
}

// ChapterNumber extracts "Kapittel <n>" from a chapter heading, falling
// back to the 1-based position.
func ChapterNumber(title string, position int) string {
	if m := chapterNumberPattern.FindStringSubmatch(title); m != nil {
		return "Kapittel " + m[1]
	}
	return "Kapittel " + strconv.Itoa(position+1)
}

// ParagraphNumber returns the explicit number, else a leading "§ n" in the
// content, else "§ <position+1>".
func ParagraphNumber(number, content string, position int) string {
	if number = strings.TrimSpace(number); number != "" {
		return number
	}
	if m := paragraphNumberPattern.FindStringSubmatch(content); m != nil {
		return "§ " + m[1]
	}
	return "§ " + strconv.Itoa(position+1)
}

// ParagraphTitle returns everything after the first period, trimmed. It
// misfires on abbreviations before the first period; that is accepted.
func ParagraphTitle(content string) string {
	_, rest, ok := strings.Cut(content, ".")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}

// JuridicalReference builds the human-readable citation for a paragraph.
func JuridicalReference(number, title string) string {
	if title == "" {
		return number
	}
	return number + ". " + title
}

// Letter returns the label for the k-th (0-based) lettered item: a..z,
// then the 1-based numeric index.
func Letter(k int) string {
	if k >= 0 && k < len(letters) {
		return letters[k : k+1]
	}
	return strconv.Itoa(k + 1)
}

func isClause(n RawNode) bool {
	return n.Type == "ledd" || strings.Contains(n.Class, "ledd")
}

func isLetteredItem(n RawNode) bool {
	return n.Type == "bokstav" || strings.Contains(n.Class, "bokstav")
}

func nodeText(n RawNode) string {
	return firstNonEmpty(n.Content, n.Text)
}

// WithDisplayName replaces placeholder names with name. The input is
// never modified; a new Law is returned.
func WithDisplayName(l Law, name string) Law {
	if name == "" {
		return l
	}
	if l.ShortName == PlaceholderTitle || l.FullName == PlaceholderTitle {
		l.ShortName = name
		l.FullName = name
	}
	return l
}

// Stub returns a law whose structure has not been fetched yet.
func Stub(base, name string) Law {
	name = firstNonEmpty(name, base)
	return Law{
		ID:        base,
		Base:      base,
		ShortName: name,
		FullName:  name,
		Chapters:  []Chapter{},
	}
}

// ReplaceChapters swaps the whole chapter sequence of l for that of
// loaded and marks the result as loaded. There is no partial merge.
func ReplaceChapters(l Law, loaded Law) Law {
	l.Chapters = loaded.Chapters
	l.Loaded = true
	return l
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
