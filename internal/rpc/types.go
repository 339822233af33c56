package rpc

import "github.com/jcdickinson/lovvelger/internal/law"

// AddLawsRequest is the request body for POST /add-laws.
type AddLawsRequest struct {
	Laws []LawSpec `json:"laws"`
	// Refresh forces a re-fetch even when the law is already loaded.
	Refresh bool `json:"refresh,omitempty"`
}

type LawSpec struct {
	Base string `json:"base"`
	// Name replaces a placeholder title scraped from the page.
	Name string `json:"name,omitempty"`
}

// AddLawsResponse is the response body for POST /add-laws.
type AddLawsResponse struct {
	Job     string      `json:"job,omitempty"`
	Results []LawResult `json:"results"`
}

type LawResult struct {
	Base       string `json:"base"`
	Name       string `json:"name"`
	Chapters   int    `json:"chapters"`
	Paragraphs int    `json:"paragraphs"`
	Cached     bool   `json:"cached,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ProgressLine is a single line of NDJSON streamed from the add-laws endpoint.
type ProgressLine struct {
	Type    string     `json:"type"` // "progress" or "result"
	Job     string     `json:"job,omitempty"`
	Message string     `json:"message,omitempty"`
	Result  *LawResult `json:"result,omitempty"`
}

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	// Laws restricts the search to these bases. Empty searches every
	// loaded law.
	Laws   []string       `json:"laws,omitempty"`
	Filter *law.LawFilter `json:"filter,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	// Index searches the stored paragraph index instead of the loaded
	// hierarchy, so laws evicted from memory are still found.
	Index bool `json:"index,omitempty"`
	// Tree includes the pruned hierarchy in the response.
	Tree bool `json:"tree,omitempty"`
}

// SearchResponse is the response body for POST /search.
type SearchResponse struct {
	Hits []ParagraphHit `json:"hits"`
	Laws []law.Law      `json:"laws,omitempty"`
	// Skipped is set when the query was shorter than the configured
	// minimum and no search ran.
	Skipped bool `json:"skipped,omitempty"`
}

type ParagraphHit struct {
	Reference          string `json:"reference"`
	Law                string `json:"law"`
	Chapter            string `json:"chapter"`
	Number             string `json:"number"`
	Title              string `json:"title"`
	JuridicalReference string `json:"juridical_reference"`
}

// GetRequest is the request body for POST /get.
type GetRequest struct {
	Reference string `json:"reference"`
	HTML      bool   `json:"html,omitempty"`
}

// GetResponse is the response body for POST /get.
type GetResponse struct {
	Reference string `json:"reference"`
	Markdown  string `json:"markdown"`
	HTML      string `json:"html,omitempty"`
}

// SelectRequest is the request body for POST /select. An empty reference
// clears the selection.
type SelectRequest struct {
	Reference string `json:"reference"`
	// Preselected selects the active filter's preselected reference and
	// ignores Reference.
	Preselected bool `json:"preselected,omitempty"`
}

// SelectResponse is the response body for POST /select.
type SelectResponse struct {
	Selection law.Selection `json:"selection"`
	Display   string        `json:"display"`
}

// SearchLawsRequest is the request body for POST /search-laws.
type SearchLawsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// Load fetches the top results so their hierarchy is available.
	Load bool `json:"load,omitempty"`
}

// SearchLawsResponse is the response body for POST /search-laws.
type SearchLawsResponse struct {
	Results []LawSearchResult `json:"results"`
}

type LawSearchResult struct {
	Base       string `json:"base"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Department string `json:"department,omitempty"`
	Loaded     bool   `json:"loaded"`
	Paragraphs int    `json:"paragraphs,omitempty"`
	Error      string `json:"error,omitempty"`
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Laws   []LawStatus   `json:"laws"`
	Filter law.LawFilter `json:"filter"`
}

type LawStatus struct {
	Base       string `json:"base"`
	Name       string `json:"name"`
	Loaded     bool   `json:"loaded"`
	InMemory   bool   `json:"in_memory"`
	Paragraphs int    `json:"paragraphs"`
	Processed  bool   `json:"processed"`
}

// ClearCacheRequest is the request body for POST /clear-cache.
type ClearCacheRequest struct {
	// Documents also drops scraped documents and snapshots from disk.
	Documents bool `json:"documents,omitempty"`
}
