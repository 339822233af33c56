package lovdata

import (
	"strings"

	"golang.org/x/net/html"
)

var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "i": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true, "u": true,
}

// Subtrees that never carry statute text.
var skipClasses = map[string]bool{
	"changesToParent": true,
	"footnotes":       true,
	"tocSubUl":        true,
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func classContains(n *html.Node, sub string) bool {
	return strings.Contains(strings.ToLower(attr(n, "class")), sub)
}

func isElement(n *html.Node, tags ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

func skipped(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if skipClasses[c] {
			return true
		}
	}
	return false
}

// text returns the visible text under n with runs of whitespace collapsed.
func text(n *html.Node) string {
	return textSkipping(n, nil)
}

// textSkipping is text, also leaving out subtrees below n matching skip.
func textSkipping(n *html.Node, skip func(*html.Node) bool) string {
	var b strings.Builder
	var walk func(*html.Node, bool)
	walk = func(c *html.Node, top bool) {
		if skipped(c) || isElement(c, "script", "style") {
			return
		}
		if !top && skip != nil && skip(c) {
			return
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			return
		}
		block := c.Type == html.ElementNode && !inline[c.Data]
		if block {
			b.WriteByte(' ')
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc, false)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(n, true)
	return strings.Join(strings.Fields(b.String()), " ")
}

// findFirst returns the first descendant of n (depth first, n included)
// matching match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r := findFirst(c, match); r != nil {
			return r
		}
	}
	return nil
}

// findAll returns every descendant of n matching match. Matched nodes are
// not descended into.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool { return isElement(n, tags...) }
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && hasClass(n, class) }
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
