package search

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jcdickinson/lovvelger/internal/db"
	"github.com/jcdickinson/lovvelger/internal/law"
	"github.com/jcdickinson/lovvelger/internal/rpc"
)

const defaultLimit = 50

type Searcher struct {
	db             *db.DB
	minQueryLength int
}

func NewSearcher(database *db.DB, minQueryLength int) *Searcher {
	if minQueryLength < 0 {
		minQueryLength = 0
	}
	return &Searcher{db: database, minQueryLength: minQueryLength}
}

// Search narrows laws to req.Query after applying filter, and flattens the
// surviving paragraphs into hits. With req.Index set the stored paragraph
// index is searched instead of laws.
func (s *Searcher) Search(laws []law.Law, req rpc.SearchRequest, filter law.LawFilter) (rpc.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	laws = restrict(laws, req.Laws)
	filtered := law.FilterAll(laws, filter)

	resp := rpc.SearchResponse{Hits: []rpc.ParagraphHit{}}
	if query == "" || utf8.RuneCountInString(query) < s.minQueryLength {
		slog.Debug("search skipped", "query", query, "min", s.minQueryLength)
		resp.Skipped = query != ""
		if req.Tree {
			resp.Laws = filtered
		}
		return resp, nil
	}

	slog.Info("search", "query", query, "laws", len(laws), "index", req.Index, "limit", limit)

	if req.Index {
		hits, err := s.searchIndex(query, laws, req.Laws, filter, limit)
		if err != nil {
			return rpc.SearchResponse{}, err
		}
		resp.Hits = hits
		return resp, nil
	}

	matched := law.Search(filtered, query)
	resp.Hits = Hits(matched, query, limit)
	if req.Tree {
		resp.Laws = matched
	}
	slog.Debug("search done", "laws", len(matched), "hits", len(resp.Hits))
	return resp, nil
}

// Hits lists the paragraphs of laws that match query themselves, in
// document order, up to limit. Paragraphs kept only because their chapter
// or law matched are not hits.
func Hits(laws []law.Law, query string, limit int) []rpc.ParagraphHit {
	q := strings.ToLower(query)
	hits := []rpc.ParagraphHit{}
	for _, l := range laws {
		l.Walk(func(c law.Chapter, p law.Paragraph) {
			if len(hits) >= limit {
				return
			}
			if !strings.Contains(strings.ToLower(p.Number), q) && !strings.Contains(strings.ToLower(p.Title), q) {
				return
			}
			hits = append(hits, hit(l.Base, l.ShortName, c.Number, p.ChapterIndex, p.Number, p.Title, p.JuridicalReference))
		})
	}
	return hits
}

func (s *Searcher) searchIndex(query string, laws []law.Law, bases []string, filter law.LawFilter, limit int) ([]rpc.ParagraphHit, error) {
	if s.db == nil {
		return nil, fmt.Errorf("no paragraph index available")
	}
	rows, err := s.db.SearchParagraphs(query, bases, limit)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(laws))
	for _, l := range laws {
		names[l.Base] = l.ShortName
	}

	hits := make([]rpc.ParagraphHit, 0, len(rows))
	for _, p := range rows {
		if !filter.AllowsParagraph(p.Base, p.ChapterIndex, p.Number) {
			continue
		}
		name, ok := names[p.Base]
		if !ok {
			name = s.lawName(p.Base)
			names[p.Base] = name
		}
		hits = append(hits, hit(p.Base, name, p.ChapterNumber, p.ChapterIndex, p.Number, p.Title, p.JuridicalReference))
	}
	return hits, nil
}

func (s *Searcher) lawName(base string) string {
	l, err := s.db.GetLaw(base)
	if err != nil {
		slog.Warn("law lookup failed", "base", base, "error", err)
		return base
	}
	if l == nil {
		return base
	}
	return l.ShortName
}

func hit(base, lawName, chapter, chapterIndex, number, title, juridical string) rpc.ParagraphHit {
	return rpc.ParagraphHit{
		Reference:          law.BuildReference(base, chapterIndex),
		Law:                lawName,
		Chapter:            chapter,
		Number:             number,
		Title:              title,
		JuridicalReference: juridical,
	}
}

func restrict(laws []law.Law, bases []string) []law.Law {
	if len(bases) == 0 {
		return laws
	}
	want := make(map[string]bool, len(bases))
	for _, b := range bases {
		want[b] = true
	}
	out := make([]law.Law, 0, len(bases))
	for _, l := range laws {
		if want[l.Base] {
			out = append(out, l)
		}
	}
	return out
}
