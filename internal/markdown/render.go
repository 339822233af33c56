// Package markdown renders parsed laws as markdown and converts the result
// to HTML.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	gmhtml "github.com/gomarkdown/markdown/html"
	gmparser "github.com/gomarkdown/markdown/parser"

	"github.com/jcdickinson/lovvelger/internal/law"
)

// RenderLaw renders the outline of l: one heading per chapter and one
// linked line per paragraph.
func RenderLaw(l law.Law) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.ShortName)
	if l.FullName != "" && l.FullName != l.ShortName {
		fmt.Fprintf(&b, "%s\n\n", l.FullName)
	}

	if !l.Loaded {
		b.WriteString("_Structure not loaded._\n")
		return b.String()
	}
	if len(l.Chapters) == 0 {
		b.WriteString("_No chapters._\n")
		return b.String()
	}

	for _, c := range l.Chapters {
		writeChapter(&b, l.Base, c, 2)
	}
	return b.String()
}

// RenderChapter renders a single chapter of l and its sub-chapters.
func RenderChapter(l law.Law, c law.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", l.ShortName)
	writeChapter(&b, l.Base, c, 1)
	return b.String()
}

func writeChapter(b *strings.Builder, base string, c law.Chapter, level int) {
	fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", min(level, 6)), chapterHeading(c))
	for _, p := range c.Paragraphs {
		fmt.Fprintf(b, "- [%s](%s)\n", paragraphLabel(p), ReferenceURI(law.BuildReference(base, p.ChapterIndex)))
	}
	if len(c.Paragraphs) > 0 {
		b.WriteString("\n")
	}
	for _, sc := range c.SubChapters {
		writeChapter(b, base, sc, level+1)
	}
}

// RenderParagraph renders the full text of a paragraph: its clauses as a
// numbered list with lettered items nested below them, or the scraped
// content when no clauses were found.
func RenderParagraph(l law.Law, c law.Chapter, p law.Paragraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.JuridicalReference)
	fmt.Fprintf(&b, "**%s**, %s\n\n", l.ShortName, chapterHeading(c))

	if len(p.Ledd) == 0 {
		if p.Content != "" {
			b.WriteString(p.Content)
			b.WriteString("\n")
		}
		return b.String()
	}

	for _, cl := range p.Ledd {
		fmt.Fprintf(&b, "%d. %s\n", cl.Number, oneLine(cl.Content))
		for _, item := range cl.Bokstaver {
			fmt.Fprintf(&b, "   - %s\n", letteredLine(item))
		}
	}
	return b.String()
}

// AddFrontMatter prepends a YAML front-matter block with the given fields.
func AddFrontMatter(src string, fields map[string]string) string {
	if len(fields) == 0 {
		return src
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, fields[k])
	}
	b.WriteString("---\n\n")
	b.WriteString(src)
	return b.String()
}

// ToHTML converts markdown to an HTML fragment.
func ToHTML(src string) string {
	p := gmparser.NewWithExtensions(gmparser.CommonExtensions | gmparser.AutoHeadingIDs)
	r := gmhtml.NewRenderer(gmhtml.RendererOptions{Flags: gmhtml.CommonFlags | gmhtml.HrefTargetBlank})
	return string(gm.ToHTML([]byte(src), p, r))
}

func chapterHeading(c law.Chapter) string {
	if c.Title != "" {
		return c.Title
	}
	return c.Number
}

func paragraphLabel(p law.Paragraph) string {
	if p.Title == "" {
		return p.Number
	}
	return p.Number + " " + p.Title
}

// letteredLine labels an item unless the scraped text already starts
// with its letter.
func letteredLine(item law.LetteredItem) string {
	label := item.Letter + ")"
	content := oneLine(item.Content)
	if strings.HasPrefix(content, label) {
		return content
	}
	return label + " " + content
}

// oneLine keeps list items on one line so embedded newlines don't end the
// list.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
