package lovdata

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jcdickinson/lovvelger/internal/law"
)

// MaxContentRunes caps the paragraph text carried in a RawDocument.
const MaxContentRunes = 500

var paragraphNumberPattern = regexp.MustCompile(`(?i)§\s*(\d+(?:-\d+)?[a-z]?)`)

// ScrapeDocument extracts the chapter and paragraph structure of a Lovdata
// document page. Markup it does not recognise is ignored rather than
// reported; the result may have no chapters at all.
func ScrapeDocument(base string, page []byte) (law.RawDocument, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return law.RawDocument{}, fmt.Errorf("parsing %s: %w", base, err)
	}

	doc := law.RawDocument{Base: base}
	doc.Title, doc.ShortTitle = scrapeTitles(root)

	body := findFirst(root, func(n *html.Node) bool {
		return isElement(n, "main") && attr(n, "id") == "dokument"
	})
	if body == nil {
		body = root
	}

	chapters, loose := outline(body)
	doc.Chapters = scrapeChapters(chapters)
	if len(doc.Chapters) == 0 && len(loose) > 0 {
		// Short regulations have no chapter markup; keep their paragraphs.
		doc.Chapters = []law.RawChapter{{Paragraphs: scrapeParagraphs(loose)}}
	}
	if doc.Chapters == nil {
		doc.Chapters = []law.RawChapter{}
	}
	return doc, nil
}

// scrapeTitles returns the document title and its short form. The page
// header wins; the metadata table fills the gaps.
func scrapeTitles(root *html.Node) (title, short string) {
	if h1 := findFirst(root, byTag("h1")); h1 != nil {
		title = text(h1)
	}
	if title == "" {
		if n := findFirst(root, byClass("doc-title")); n != nil {
			title = text(n)
		}
	}
	for _, dd := range findAll(root, byTag("dd")) {
		switch attr(dd, "class") {
		case "title":
			if title == "" {
				title = text(dd)
			}
		case "titleShort":
			short = text(dd)
		}
	}
	return title, short
}

func isChapter(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if hasClass(n, "chapter") {
		return true
	}
	if !isElement(n, "section", "div") {
		return false
	}
	id := strings.ToLower(attr(n, "id"))
	if strings.Contains(id, "paragraf") {
		return false
	}
	return strings.Contains(id, "kapittel") || strings.HasPrefix(id, "del-")
}

func isParagraph(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch {
	case isElement(n, "article") && hasClass(n, "legalArticle"):
		return true
	case hasClass(n, "paragraf"), hasClass(n, "paragraph"):
		return true
	case isElement(n, "section") && classContains(n, "paragraf"):
		return true
	case isElement(n, "div", "section", "article") && strings.Contains(strings.ToUpper(attr(n, "id")), "PARAGRAF"):
		return true
	}
	return false
}

// outline returns the chapter and paragraph nodes directly below n,
// without descending into either.
func outline(n *html.Node) (chapters, paragraphs []*html.Node) {
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if skipped(c) {
			return
		}
		switch {
		case isChapter(c):
			chapters = append(chapters, c)
			return
		case isParagraph(c):
			paragraphs = append(paragraphs, c)
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return chapters, paragraphs
}

// heading finds the title element of a chapter, ignoring anything inside
// its nested chapters and paragraphs.
func heading(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipped(c) || isChapter(c) || isParagraph(c) {
			continue
		}
		if isElement(c, "h1", "h2", "h3", "h4") || hasClass(c, "heading") {
			return c
		}
		if h := heading(c); h != nil {
			return h
		}
	}
	return nil
}

func scrapeChapters(nodes []*html.Node) []law.RawChapter {
	out := make([]law.RawChapter, 0, len(nodes))
	for i, n := range nodes {
		subs, paras := outline(n)
		rc := law.RawChapter{
			ID:          attr(n, "id"),
			Paragraphs:  scrapeParagraphs(paras),
			SubChapters: scrapeChapters(subs),
		}
		if h := heading(n); h != nil {
			rc.Title = text(h)
		}
		if rc.Title == "" && len(rc.Paragraphs) == 0 && len(rc.SubChapters) == 0 {
			continue
		}
		if rc.Title == "" {
			rc.Title = fmt.Sprintf("Kapittel %d", i+1)
		}
		if len(rc.SubChapters) == 0 {
			rc.SubChapters = nil
		}
		out = append(out, rc)
	}
	return out
}

func scrapeParagraphs(nodes []*html.Node) []law.RawParagraph {
	out := make([]law.RawParagraph, 0, len(nodes))
	for j, n := range nodes {
		content := text(n)
		if content == "" {
			continue
		}
		children := clauses(n)
		// Structured articles carry their text in the clauses, so the
		// content is reduced to the header line the title is read from.
		if header := articleHeader(n); header != "" && len(children) > 0 {
			content = header
		}
		out = append(out, law.RawParagraph{
			ID:       attr(n, "id"),
			Number:   paragraphNumber(n, content, j),
			Content:  truncate(content, MaxContentRunes),
			Children: children,
		})
	}
	return out
}

// articleHeader returns "§ n. Title" from a legalArticleHeader, or "" if
// the article has none.
func articleHeader(n *html.Node) string {
	h := findFirst(n, byClass("legalArticleHeader"))
	if h == nil {
		return ""
	}
	var number, title string
	if v := findFirst(h, byClass("legalArticleValue")); v != nil {
		number = text(v)
	}
	if t := findFirst(h, byClass("legalArticleTitle")); t != nil {
		title = text(t)
	}
	switch {
	case number == "":
		return ""
	case title == "":
		return number
	default:
		return number + ". " + title
	}
}

// paragraphNumber prefers the article header, then the first "§ n" in the
// text, then a positional label.
func paragraphNumber(n *html.Node, content string, position int) string {
	if v := findFirst(n, byClass("legalArticleValue")); v != nil {
		if s := text(v); s != "" {
			return s
		}
	}
	if m := paragraphNumberPattern.FindStringSubmatch(content); m != nil {
		return "§ " + m[1]
	}
	return fmt.Sprintf("Para %d", position+1)
}

func isClause(n *html.Node) bool {
	return n.Type == html.ElementNode && (hasClass(n, "legalP") || hasClass(n, "numberedLegalP"))
}

func isClauseContinuation(n *html.Node) bool {
	return n.Type == html.ElementNode && (hasClass(n, "leddfortsettelse") || hasClass(n, "legalPfortsettelse"))
}

func isListItem(n *html.Node) bool {
	return isElement(n, "li") || (n.Type == html.ElementNode && hasClass(n, "listArticle"))
}

func isList(n *html.Node) bool {
	return isElement(n, "ol", "ul")
}

// clauses turns the ledd markup of a paragraph into tagged nodes. List
// items become lettered items of the clause they follow.
func clauses(n *html.Node) []law.RawNode {
	var out []law.RawNode
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if skipped(c) {
			return
		}
		switch {
		case isClause(c):
			out = append(out, law.RawNode{
				Type:     "ledd",
				Class:    attr(c, "class"),
				Content:  textSkipping(c, isList),
				Children: letteredItems(c),
			})
			return
		case len(out) > 0 && isClauseContinuation(c):
			last := &out[len(out)-1]
			last.Content = strings.TrimSpace(last.Content + " " + textSkipping(c, isList))
			last.Children = append(last.Children, letteredItems(c)...)
			return
		case len(out) > 0 && isListItem(c):
			last := &out[len(out)-1]
			last.Children = append(last.Children, law.RawNode{Type: "bokstav", Content: text(c)})
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func letteredItems(n *html.Node) []law.RawNode {
	var out []law.RawNode
	for _, li := range findAll(n, isListItem) {
		if li == n {
			continue
		}
		if s := text(li); s != "" {
			out = append(out, law.RawNode{Type: "bokstav", Content: s})
		}
	}
	return out
}
