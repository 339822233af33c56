// Package lovdata fetches statute pages and search results from Lovdata and
// scrapes them into raw law documents.
package lovdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jcdickinson/lovvelger/internal/config"
	"github.com/jcdickinson/lovvelger/internal/law"
)

const (
	DefaultBaseURL   = "https://lovdata.no"
	defaultUserAgent = "Mozilla/5.0 (compatible; lovvelger/1.0)"
	acceptLanguage   = "nb-NO,nb;q=0.9,no;q=0.8"
	maxPageBytes     = 16 << 20
)

// ErrPageTooLarge is returned for pages over the size limit rather than
// scraping a truncated page.
var ErrPageTooLarge = errors.New("page exceeds size limit")

// StatusError is returned when Lovdata answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lovdata returned %d for %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	baseURL    string
	userAgent  string
	http       *http.Client
	attempts   uint
	retryDelay time.Duration
	maxBody    int64
}

func NewClient(cfg config.LovdataConfig) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		http:       &http.Client{Timeout: cfg.Timeout},
		attempts:   cfg.Retries + 1,
		retryDelay: 500 * time.Millisecond,
		maxBody:    maxPageBytes,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.http.Timeout == 0 {
		c.http.Timeout = 60 * time.Second
	}
	return c
}

// BaseURL returns the site root requests are made against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchDocument downloads the page for base and scrapes it. The raw page is
// returned alongside so callers can snapshot it.
func (c *Client) FetchDocument(ctx context.Context, base string) (*law.RawDocument, []byte, error) {
	if base == "" {
		return nil, nil, errors.New("base is required")
	}
	u := DocumentURL(c.baseURL, base)
	page, err := c.get(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ScrapeDocument(base, page)
	if err != nil {
		return nil, nil, err
	}
	doc.URL = u
	return &doc, page, nil
}

// get fetches u, retrying on network errors, 429 and 5xx.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
			}
			req.Header.Set("User-Agent", c.userAgent)
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", acceptLanguage)
			req.Header.Set("Referer", c.baseURL+"/")

			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", u, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
				return &StatusError{URL: u, StatusCode: resp.StatusCode}
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
			if err != nil {
				return fmt.Errorf("reading %s: %w", u, err)
			}
			if int64(len(body)) > c.maxBody {
				body = nil
				return fmt.Errorf("reading %s: %w (%d bytes)", u, ErrPageTooLarge, c.maxBody)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrPageTooLarge) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
