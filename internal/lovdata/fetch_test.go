package lovdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcdickinson/lovvelger/internal/config"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.LovdataConfig{
		BaseURL:   srv.URL,
		UserAgent: "lovvelger-test",
		Timeout:   5 * time.Second,
		Retries:   2,
	})
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchDocument(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dokument/NL/lov/2005-06-17-62" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") != "lovvelger-test" || r.Header.Get("Accept-Language") != acceptLanguage {
			http.Error(w, "bad headers", http.StatusBadRequest)
			return
		}
		w.Write([]byte(documentPage))
	}))

	doc, page, err := c.FetchDocument(context.Background(), "LOV-2005-06-17-62")
	if err != nil {
		t.Fatal(err)
	}
	if string(page) != documentPage {
		t.Error("raw page not returned")
	}
	if doc.URL != c.BaseURL()+"/dokument/NL/lov/2005-06-17-62" {
		t.Errorf("url = %q", doc.URL)
	}
	if len(doc.Chapters) != 2 {
		t.Errorf("expected 2 chapters, got %d", len(doc.Chapters))
	}
}

func TestFetchDocument_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(documentPage))
	}))

	if _, _, err := c.FetchDocument(context.Background(), "LOV-2005-06-17-62"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
}

func TestFetchDocument_NotFoundIsFinal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, _, err := c.FetchDocument(context.Background(), "LOV-1999-01-01-1")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("404 should not be retried, got %d calls", n)
	}
}

func TestFetchDocument_PageTooLarge(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(documentPage))
	}))
	c.maxBody = int64(len(documentPage) - 1)

	_, _, err := c.FetchDocument(context.Background(), "LOV-2005-06-17-62")
	if !errors.Is(err, ErrPageTooLarge) {
		t.Fatalf("expected ErrPageTooLarge, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("oversized page should not be retried, got %d calls", n)
	}

	c.maxBody = int64(len(documentPage))
	if _, page, err := c.FetchDocument(context.Background(), "LOV-2005-06-17-62"); err != nil || len(page) != len(documentPage) {
		t.Errorf("page at the limit: len=%d err=%v", len(page), err)
	}
}

func TestFetchDocument_GivesUp(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, _, err := c.FetchDocument(context.Background(), "LOV-1999-01-01-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestFetchDocument_EmptyBase(t *testing.T) {
	t.Parallel()

	c := NewClient(config.LovdataConfig{})
	if _, _, err := c.FetchDocument(context.Background(), ""); err == nil {
		t.Error("expected error for empty base")
	}
}

const searchPage = `<html><body><div class="searchResults">
<div class="item globalSearchResult">
  <h2><a href="/dokument/NL/lov/2005-06-17-62"><strong>Lov om arbeidsmiljø, arbeidstid og stillingsvern mv.</strong></a></h2>
  <span class="red">LOV-2005-06-17-62</span>
  <span class="blueLight">Arbeids- og inkluderingsdepartementet</span>
</div>
<div class="item globalSearchResult"><h2><strong>Uten lenke</strong></h2></div>
<div class="item globalSearchResult">
  <h2><a href="https://example.org/forskrift"><strong>Ekstern forskrift</strong></a></h2>
  <span class="red">FOR-2011-12-06-1357</span>
</div>
</div></body></html>`

func TestSearchLaws(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sok" {
			http.NotFound(w, r)
			return
		}
		if q := r.URL.Query(); q.Get("q") != "arbeidsmiljø" || q.Get("type") != "ALL" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(searchPage))
	}))

	results, err := c.SearchLaws(context.Background(), " arbeidsmiljø ")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	r0 := results[0]
	if r0.Title != "Lov om arbeidsmiljø, arbeidstid og stillingsvern mv." {
		t.Errorf("title = %q", r0.Title)
	}
	if r0.Link != c.BaseURL()+"/dokument/NL/lov/2005-06-17-62" {
		t.Errorf("link = %q", r0.Link)
	}
	if r0.ID != "LOV-2005-06-17-62" || r0.Base != r0.ID {
		t.Errorf("id = %q base = %q", r0.ID, r0.Base)
	}
	if r0.Department != "Arbeids- og inkluderingsdepartementet" {
		t.Errorf("department = %q", r0.Department)
	}
	if results[1].Link != "https://example.org/forskrift" || results[1].Department != "" {
		t.Errorf("result 2 = %+v", results[1])
	}
}

func TestSearchLaws_EmptyQuery(t *testing.T) {
	t.Parallel()

	c := NewClient(config.LovdataConfig{})
	if _, err := c.SearchLaws(context.Background(), "   "); err == nil {
		t.Error("expected error for empty query")
	}
}
