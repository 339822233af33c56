package markdown

import (
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// Scheme prefixes the reference links emitted by the renderers.
const Scheme = "lov://"

// ReferenceURI returns the link target for a selection reference.
func ReferenceURI(ref string) string {
	return Scheme + ref
}

// References returns the distinct references linked from src, in order of
// first appearance.
func References(src string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, dest := range destinations(src) {
		ref, ok := strings.CutPrefix(dest, Scheme)
		if !ok || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// ResolveReferences rewrites every lov:// link in src to the URL returned
// by resolve. Links for which resolve returns "" are left alone.
func ResolveReferences(src string, resolve func(ref string) string) string {
	linkMap := make(map[string]string)
	for _, ref := range References(src) {
		if u := resolve(ref); u != "" {
			linkMap[ReferenceURI(ref)] = u
		}
	}
	return RewriteLinks(src, linkMap)
}

// RewriteLinks rewrites markdown link destinations using linkMap. The
// markdown is parsed only to find destinations; replacements are made on
// the source text so its formatting survives.
func RewriteLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	result := src
	seen := make(map[string]bool)
	for _, dest := range destinations(src) {
		newDest, ok := linkMap[dest]
		if !ok || seen[dest] {
			continue
		}
		seen[dest] = true
		result = strings.ReplaceAll(result, "]("+dest+")", "]("+newDest+")")

		// Reference-style definitions: [ref]: destination
		lines := strings.Split(result, "\n")
		for i, line := range lines {
			if strings.HasSuffix(strings.TrimSpace(line), "]: "+dest) {
				lines[i] = strings.Replace(line, "]: "+dest, "]: "+newDest, 1)
			}
		}
		result = strings.Join(lines, "\n")
	}
	return result
}

func destinations(src string) []string {
	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	var out []string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			out = append(out, string(link.Destination))
		}
		return ast.GoToNext
	})
	return out
}
