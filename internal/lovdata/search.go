package lovdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// SearchResult is one hit from the Lovdata site search.
type SearchResult struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	ID         string `json:"id"`
	Base       string `json:"base"`
	Department string `json:"department,omitempty"`
}

// SearchLaws runs a site search and returns the hits in page order.
func (c *Client) SearchLaws(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}
	page, err := c.get(ctx, SearchURL(c.baseURL, query))
	if err != nil {
		return nil, fmt.Errorf("searching lovdata: %w", err)
	}
	return ParseSearchResults(c.baseURL, page)
}

// ParseSearchResults scrapes the hits from a search result page. Hits
// without a title or link are skipped.
func ParseSearchResults(site string, page []byte) ([]SearchResult, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	items := findAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, "item") && hasClass(n, "globalSearchResult")
	})

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		var title, link, id, dept string
		if h2 := findFirst(item, byTag("h2")); h2 != nil {
			if strong := findFirst(h2, byTag("strong")); strong != nil {
				title = text(strong)
			}
		}
		if a := findFirst(item, func(n *html.Node) bool { return isElement(n, "a") && attr(n, "href") != "" }); a != nil {
			link = attr(a, "href")
		}
		if span := findFirst(item, func(n *html.Node) bool { return isElement(n, "span") && hasClass(n, "red") }); span != nil {
			id = text(span)
		}
		if span := findFirst(item, func(n *html.Node) bool { return isElement(n, "span") && hasClass(n, "blueLight") }); span != nil {
			dept = text(span)
		}

		if title == "" || link == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:      title,
			Link:       absolute(site, link),
			ID:         id,
			Base:       id,
			Department: dept,
		})
	}
	return results, nil
}
