package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jcdickinson/lovvelger/internal/cas"
	"github.com/jcdickinson/lovvelger/internal/config"
	"github.com/jcdickinson/lovvelger/internal/db"
	"github.com/jcdickinson/lovvelger/internal/law"
	"github.com/jcdickinson/lovvelger/internal/lovdata"
	md "github.com/jcdickinson/lovvelger/internal/markdown"
	"github.com/jcdickinson/lovvelger/internal/rpc"
	"github.com/jcdickinson/lovvelger/internal/search"
)

// SelectionPlaceholder is shown when nothing is selected.
const SelectionPlaceholder = "Ingen lov valgt"

type searchCacheEntry struct {
	results []rpc.LawSearchResult
	expiry  time.Time
}

type Server struct {
	db         *db.DB
	lovdata    *lovdata.Client
	documents  *lovdata.Cache
	searcher   *search.Searcher
	metrics    *metrics
	cfg        *config.Config
	socketPath string
	httpServer *http.Server
	listener   net.Listener

	mu         sync.Mutex
	expTimer   *time.Timer
	expiration time.Duration

	// laws holds every law whose hierarchy is loaded, keyed by base.
	laws   map[string]law.Law
	filter law.LawFilter
	lawsMu sync.RWMutex

	// storeMu serializes index writes.
	storeMu sync.Mutex

	searchCache   map[string]searchCacheEntry
	searchCacheMu sync.RWMutex
	searchTTL     time.Duration
	searchGroup   singleflight.Group
	addLawGroup   singleflight.Group
	fetchProgress *progressFanout
}

func NewServer(cfg *config.Config, database *db.DB, socketPath string) *Server {
	expSec := cfg.Daemon.ExpirationSeconds
	if expSec <= 0 {
		expSec = 600
	}
	ttl := cfg.Search.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Server{
		db:          database,
		lovdata:     lovdata.NewClient(cfg.Lovdata),
		documents:   lovdata.NewCache(config.DocumentCacheDir()),
		searcher:    search.NewSearcher(database, cfg.Search.MinQueryLength),
		metrics:     newMetrics(),
		cfg:         cfg,
		socketPath:  socketPath,
		expiration:  time.Duration(expSec) * time.Second,
		laws:        make(map[string]law.Law),
		filter:      cfg.Filter,
		searchCache: make(map[string]searchCacheEntry),
		searchTTL:   ttl,

		fetchProgress: newProgressFanout(),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	route := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, s.metrics.instrument(pattern, s.withExpReset(handler)))
	}
	route("POST /add-laws", s.handleAddLaws)
	route("POST /search", s.handleSearch)
	route("POST /get", s.handleGet)
	route("POST /select", s.handleSelect)
	route("GET /status", s.handleStatus)
	route("POST /search-laws", s.handleSearchLaws)
	route("POST /clear-cache", s.handleClearCache)
	mux.HandleFunc("POST /shutdown", s.handleShutdown)
	mux.Handle("GET /metrics", s.metrics.handler())
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	s.listener = listener

	s.httpServer = &http.Server{Handler: s.routes()}

	s.mu.Lock()
	s.expTimer = time.AfterFunc(s.expiration, s.expire)
	s.mu.Unlock()

	log.Printf("daemon: listening on %s (expires after %s of inactivity)", s.socketPath, s.expiration)

	if len(s.cfg.Preload) > 0 {
		go s.preload(context.WithoutCancel(ctx), s.cfg.Preload)
	}

	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.expTimer != nil {
		s.expTimer.Stop()
	}
	s.mu.Unlock()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("daemon: shutdown error: %v", err)
			errs = append(errs, err)
		}
	}
	if s.listener != nil {
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("daemon: listener close error: %v", err)
			errs = append(errs, err)
		}
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		log.Printf("daemon: socket remove error: %v", err)
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		log.Printf("daemon: db close error: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Server) expire() {
	log.Printf("daemon: expiring due to inactivity")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	os.Exit(0)
}

func (s *Server) resetExpiration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expTimer != nil {
		s.expTimer.Stop()
		s.expTimer.Reset(s.expiration)
	}
}

func (s *Server) withExpReset(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resetExpiration()
		handler(w, r)
	}
}

// SetFilter replaces the active filter. It is called when the config file
// changes.
func (s *Server) SetFilter(f law.LawFilter) {
	s.lawsMu.Lock()
	s.filter = f
	s.lawsMu.Unlock()
	s.clearSearchCache()
	log.Printf("daemon: filter updated (law=%q chapters=%d paragraphs=%d)", f.LawBase, len(f.AllowedChapters), len(f.AllowedParagraphs))
}

func (s *Server) currentFilter() law.LawFilter {
	s.lawsMu.RLock()
	defer s.lawsMu.RUnlock()
	return s.filter
}

// loadedLaws returns the in-memory laws ordered by name.
func (s *Server) loadedLaws() []law.Law {
	s.lawsMu.RLock()
	laws := make([]law.Law, 0, len(s.laws))
	for _, l := range s.laws {
		laws = append(laws, l)
	}
	s.lawsMu.RUnlock()

	sort.Slice(laws, func(i, j int) bool {
		if laws[i].ShortName != laws[j].ShortName {
			return laws[i].ShortName < laws[j].ShortName
		}
		return laws[i].Base < laws[j].Base
	})
	return laws
}

func (s *Server) memoryLaw(base string) (law.Law, bool) {
	s.lawsMu.RLock()
	defer s.lawsMu.RUnlock()
	l, ok := s.laws[base]
	return l, ok
}

func (s *Server) preload(ctx context.Context, bases []string) {
	for _, base := range bases {
		result := s.addLaw(ctx, rpc.LawSpec{Base: base}, false, func(msg string) {
			log.Printf("preload: %s", msg)
		})
		if result.Error != "" {
			log.Printf("daemon: preloading %s failed: %s", base, result.Error)
		}
	}
}

func (s *Server) handleAddLaws(w http.ResponseWriter, r *http.Request) {
	var req rpc.AddLawsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := uuid.New().String()

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	send := func(line rpc.ProgressLine) bool {
		line.Job = job
		if line.Message != "" {
			log.Printf("daemon: [%s] %s", job[:8], line.Message)
		}
		if err := enc.Encode(line); err != nil {
			log.Printf("daemon: client disconnected: %v", err)
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	for _, spec := range req.Laws {
		progress := func(msg string) {
			send(rpc.ProgressLine{Type: "progress", Message: msg})
		}
		result := s.addLaw(r.Context(), spec, req.Refresh, progress)
		if !send(rpc.ProgressLine{Type: "result", Result: &result}) {
			return
		}
	}
}

func lawResult(l law.Law, cached bool) rpc.LawResult {
	return rpc.LawResult{
		Base:       l.Base,
		Name:       l.ShortName,
		Chapters:   len(l.Chapters),
		Paragraphs: l.ParagraphCount(),
		Cached:     cached,
	}
}

func (s *Server) addLaw(ctx context.Context, spec rpc.LawSpec, refresh bool, progress func(string)) rpc.LawResult {
	l, cached, err := s.loadLaw(ctx, spec, refresh, progress)
	if err != nil {
		return rpc.LawResult{Base: strings.TrimSpace(spec.Base), Name: spec.Name, Error: err.Error()}
	}
	return lawResult(l, cached)
}

// loadLaw makes the hierarchy of spec.Base available in memory, from
// memory, the document cache or Lovdata in that order. refresh skips
// straight to Lovdata. cached reports that no fetch was needed.
func (s *Server) loadLaw(ctx context.Context, spec rpc.LawSpec, refresh bool, progress func(string)) (l law.Law, cached bool, err error) {
	base := strings.TrimSpace(spec.Base)
	if base == "" {
		return law.Law{}, false, errors.New("missing law base")
	}

	if !refresh {
		if l, ok := s.memoryLaw(base); ok {
			s.metrics.cacheLookup("memory", true)
			if spec.Name != "" {
				l = s.rename(l, spec.Name)
			}
			return l, true, nil
		}
		s.metrics.cacheLookup("memory", false)

		if l, ok := s.lawFromDocuments(base, spec.Name); ok {
			progress(fmt.Sprintf("loaded %s from cache (%d paragraphs)", l.ShortName, l.ParagraphCount()))
			return l, true, nil
		}
	}

	// Singleflight: dedup concurrent fetches for the same law. The fetch
	// outlives the request that started it, and its progress reaches every
	// caller waiting on it.
	unsubscribe := s.fetchProgress.subscribe(base, progress)
	defer unsubscribe()
	v, err, _ := s.addLawGroup.Do(base, func() (interface{}, error) {
		return s.fetchLaw(context.WithoutCancel(ctx), base, spec.Name, func(msg string) {
			s.fetchProgress.publish(base, msg)
		})
	})
	if err != nil {
		return law.Law{}, false, err
	}
	return v.(law.Law), false, nil
}

// rename applies a display name to a law with a placeholder title and
// keeps the stored copies in step.
func (s *Server) rename(l law.Law, name string) law.Law {
	named := law.WithDisplayName(l, name)
	if named.ShortName == l.ShortName {
		return l
	}
	s.lawsMu.Lock()
	s.laws[l.Base] = named
	s.lawsMu.Unlock()
	if err := s.db.UpsertLaw(named, ""); err != nil {
		log.Printf("daemon: renaming %s: %v", l.Base, err)
	}
	return named
}

func (s *Server) lawFromDocuments(base, name string) (law.Law, bool) {
	if !s.documents.Has(base) {
		s.metrics.cacheLookup("documents", false)
		return law.Law{}, false
	}
	raw, err := s.documents.Load(base)
	if err != nil {
		log.Printf("daemon: failed to load cached document %s: %v", base, err)
		s.metrics.cacheLookup("documents", false)
		return law.Law{}, false
	}
	s.metrics.cacheLookup("documents", true)

	l := law.WithDisplayName(law.Parse(*raw, base), name)
	if err := s.storeLaw(l, ""); err != nil {
		log.Printf("daemon: failed to index %s: %v", base, err)
	}
	return l, true
}

func (s *Server) fetchLaw(ctx context.Context, base, name string, progress func(string)) (law.Law, error) {
	progress(fmt.Sprintf("fetching %s from %s", base, s.lovdata.BaseURL()))
	raw, page, err := s.lovdata.FetchDocument(ctx, base)
	if err != nil {
		s.metrics.fetches.WithLabelValues("error").Inc()
		return law.Law{}, fmt.Errorf("fetching %s: %w", base, err)
	}
	s.metrics.fetches.WithLabelValues("ok").Inc()

	hash, err := cas.Write(page)
	if err != nil {
		log.Printf("daemon: failed to snapshot %s: %v", base, err)
		hash = ""
	}
	if err := s.documents.Save(raw); err != nil {
		log.Printf("daemon: failed to cache document %s: %v", base, err)
	}

	l := law.WithDisplayName(law.Parse(*raw, base), name)
	progress(fmt.Sprintf("parsed %s: %d chapters, %d paragraphs", l.ShortName, len(l.Chapters), l.ParagraphCount()))

	if err := s.storeLaw(l, hash); err != nil {
		return law.Law{}, err
	}
	progress(fmt.Sprintf("finished loading %s", l.ShortName))
	return l, nil
}

// storeLaw puts l in memory and replaces its paragraph index.
func (s *Server) storeLaw(l law.Law, snapshotHash string) error {
	s.lawsMu.Lock()
	s.laws[l.Base] = l
	n := len(s.laws)
	s.lawsMu.Unlock()
	s.metrics.lawsLoaded.Set(float64(n))

	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	if err := s.db.UpsertLaw(l, snapshotHash); err != nil {
		return err
	}
	if err := s.db.ReplaceParagraphs(l.Base, db.Paragraphs(l)); err != nil {
		return fmt.Errorf("indexing %s: %w", l.Base, err)
	}
	return s.db.MarkLawProcessed(l.Base)
}

// resolveLaw returns the law for base, loading it if needed.
func (s *Server) resolveLaw(ctx context.Context, base string) (law.Law, error) {
	l, _, err := s.loadLaw(ctx, rpc.LawSpec{Base: base}, false, func(msg string) {
		log.Printf("auto-fetch: %s", msg)
	})
	if err != nil {
		return law.Law{}, err
	}
	if err := s.db.TouchLaw(base); err != nil {
		log.Printf("daemon: touching %s: %v", base, err)
	}
	return l, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := s.currentFilter()
	if req.Filter != nil {
		filter = config.MergeFilter(filter, *req.Filter)
	}

	resp, err := s.searcher.Search(s.loadedLaws(), req, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req rpc.GetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref := law.ParseReference(strings.TrimPrefix(req.Reference, md.Scheme))
	if ref.Base == "" {
		writeError(w, http.StatusBadRequest, "missing reference")
		return
	}

	l, err := s.resolveLaw(r.Context(), ref.Base)
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}

	fields := map[string]string{
		"reference": ref.String(),
		"law":       l.ShortName,
		"url":       lovdata.DocumentURL(s.lovdata.BaseURL(), l.Base),
	}

	var body string
	switch {
	case ref.IsLaw():
		body = md.RenderLaw(law.Filter(l, s.lawFilterFor(l.Base)))
	default:
		if c, p, ok := l.FindParagraph(ref.ChapterIndex); ok {
			body = md.RenderParagraph(l, c, p)
			fields["juridical_reference"] = p.JuridicalReference
		} else if c, ok := l.FindChapter(ref.ChapterIndex); ok {
			body = md.RenderChapter(l, c)
		} else {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found in %s", ref.ChapterIndex, l.ShortName))
			return
		}
	}

	resp := rpc.GetResponse{Reference: ref.String(), Markdown: md.AddFrontMatter(body, fields)}
	if req.HTML {
		resp.HTML = md.ToHTML(md.ResolveReferences(body, s.referenceURL))
	}
	writeJSON(w, http.StatusOK, resp)
}

// lawFilterFor returns the active filter if it applies to base.
func (s *Server) lawFilterFor(base string) law.LawFilter {
	f := s.currentFilter()
	if f.LawBase != "" && f.LawBase != base {
		return law.LawFilter{}
	}
	return f
}

// referenceURL points a reference at its anchor on the Lovdata page.
func (s *Server) referenceURL(ref string) string {
	r := law.ParseReference(ref)
	u := lovdata.DocumentURL(s.lovdata.BaseURL(), r.Base)
	if r.ChapterIndex != "" {
		u += "#" + r.ChapterIndex
	}
	return u
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req rpc.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	refStr := req.Reference
	if req.Preselected {
		refStr = s.currentFilter().PreselectedReference
	}
	refStr = strings.TrimPrefix(strings.TrimSpace(refStr), md.Scheme)

	if refStr == "" {
		sel := law.ClearSelection()
		writeJSON(w, http.StatusOK, rpc.SelectResponse{Selection: sel, Display: sel.Display(SelectionPlaceholder)})
		return
	}

	ref := law.ParseReference(refStr)
	l, err := s.resolveLaw(r.Context(), ref.Base)
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}

	var sel law.Selection
	if ref.IsLaw() {
		sel = law.SelectLaw(l)
	} else {
		c, p, ok := law.Filter(l, s.lawFilterFor(l.Base)).FindParagraph(ref.ChapterIndex)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("paragraph %s not found in %s", ref.ChapterIndex, l.ShortName))
			return
		}
		sel = law.Select(l, c, p)
	}
	writeJSON(w, http.StatusOK, rpc.SelectResponse{Selection: sel, Display: sel.Display(SelectionPlaceholder)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stored, err := s.db.ListLaws()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := []rpc.LawStatus{}
	for _, l := range stored {
		_, inMemory := s.memoryLaw(l.Base)
		n, err := s.db.CountParagraphs(l.Base)
		if err != nil {
			log.Printf("daemon: counting paragraphs for %s: %v", l.Base, err)
		}
		status = append(status, rpc.LawStatus{
			Base:       l.Base,
			Name:       l.ShortName,
			Loaded:     l.Loaded,
			InMemory:   inMemory,
			Paragraphs: n,
			Processed:  l.ProcessedAt != nil,
		})
	}

	writeJSON(w, http.StatusOK, rpc.StatusResponse{Laws: status, Filter: s.currentFilter()})
}

func (s *Server) handleSearchLaws(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchLawsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}
	if len([]rune(query)) < s.cfg.Search.MinQueryLength {
		writeJSON(w, http.StatusOK, rpc.SearchLawsResponse{Results: []rpc.LawSearchResult{}})
		return
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.Lovdata.MaxResults
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	key := fmt.Sprintf("%s|%d|%t", strings.ToLower(query), req.Limit, req.Load)
	if results, ok := s.getCachedSearch(key); ok {
		s.metrics.cacheLookup("search", true)
		writeJSON(w, http.StatusOK, rpc.SearchLawsResponse{Results: s.markLoaded(results)})
		return
	}
	s.metrics.cacheLookup("search", false)

	v, err, _ := s.searchGroup.Do(key, func() (interface{}, error) {
		return s.searchLaws(context.WithoutCancel(r.Context()), query, req.Limit, req.Load)
	})
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}
	results := v.([]rpc.LawSearchResult)
	s.setCachedSearch(key, results)
	writeJSON(w, http.StatusOK, rpc.SearchLawsResponse{Results: results})
}

// searchLaws runs a Lovdata search and, with load set, fetches the top
// results concurrently. A law that fails to load carries its error; it
// does not fail the search.
func (s *Server) searchLaws(ctx context.Context, query string, limit int, load bool) ([]rpc.LawSearchResult, error) {
	hits, err := s.lovdata.SearchLaws(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]rpc.LawSearchResult, len(hits))
	for i, h := range hits {
		results[i] = rpc.LawSearchResult{
			Base:       h.Base,
			Title:      h.Title,
			Link:       h.Link,
			Department: h.Department,
		}
	}
	if !load {
		return s.markLoaded(results), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range results {
		res := &results[i]
		if res.Base == "" {
			res.Error = "no law available"
			continue
		}
		g.Go(func() error {
			lr := s.addLaw(gctx, rpc.LawSpec{Base: res.Base, Name: res.Title}, false, func(msg string) {
				log.Printf("search-laws: %s", msg)
			})
			if lr.Error != "" {
				res.Error = lr.Error
				return nil
			}
			res.Loaded = true
			res.Paragraphs = lr.Paragraphs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// markLoaded refreshes the Loaded flag of cached results.
func (s *Server) markLoaded(results []rpc.LawSearchResult) []rpc.LawSearchResult {
	out := make([]rpc.LawSearchResult, len(results))
	for i, res := range results {
		if l, ok := s.memoryLaw(res.Base); ok {
			res.Loaded = true
			res.Paragraphs = l.ParagraphCount()
			res.Error = ""
		}
		out[i] = res
	}
	return out
}

func (s *Server) getCachedSearch(key string) ([]rpc.LawSearchResult, bool) {
	s.searchCacheMu.RLock()
	defer s.searchCacheMu.RUnlock()
	entry, ok := s.searchCache[key]
	if !ok || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.results, true
}

func (s *Server) setCachedSearch(key string, results []rpc.LawSearchResult) {
	s.searchCacheMu.Lock()
	defer s.searchCacheMu.Unlock()
	s.searchCache[key] = searchCacheEntry{results: results, expiry: time.Now().Add(s.searchTTL)}
}

func (s *Server) clearSearchCache() {
	s.searchCacheMu.Lock()
	defer s.searchCacheMu.Unlock()
	s.searchCache = make(map[string]searchCacheEntry)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	var req rpc.ClearCacheRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.clearSearchCache()
	log.Printf("daemon: search cache cleared")

	if req.Documents {
		if err := errors.Join(s.documents.Clear(), cas.Clear()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		log.Printf("daemon: document cache and snapshots cleared")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Stop(ctx)
		os.Exit(0)
	}()
}

// fetchStatus maps a Lovdata failure onto the status reported to clients.
func fetchStatus(err error) int {
	var se *lovdata.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
