// Package fetcher is the HTTP boundary: it fetches JSON APIs and HTML
// pages, optionally through a response cache, with a courtesy delay
// between live requests so the scraped services are not hammered.
package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/demod-llc/nixtune/pkg/cache"
)

type Fetcher struct {
	client *http.Client
	cache  *cache.Cache
	maxAge time.Duration
	delay  time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithCache routes reads through a response cache. Entries older than
// maxAge are refetched.
func (f *Fetcher) WithCache(c *cache.Cache, maxAge time.Duration) *Fetcher {
	f.cache = c
	f.maxAge = maxAge
	return f
}

// WithDelay sleeps for d after every live (non-cached) request.
func (f *Fetcher) WithDelay(d time.Duration) *Fetcher {
	f.delay = d
	return f
}

// GetBytes fetches a URL's body, consulting the cache first when one is
// configured. Non-200 responses are errors.
func (f *Fetcher) GetBytes(rawURL string) ([]byte, error) {
	return f.Get(rawURL, nil)
}

// Get is GetBytes with extra request headers (API tokens and the like).
func (f *Fetcher) Get(rawURL string, header http.Header) ([]byte, error) {
	if f.cache != nil {
		if body, ok, err := f.cache.Get(rawURL, f.maxAge); err == nil && ok {
			return body, nil
		}
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if f.cache != nil {
		// A cache write failure only costs a refetch next run.
		_ = f.cache.Put(rawURL, body)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return body, nil
}

// GetJSON fetches rawURL with the given query parameters and decodes the
// response body into v.
func (f *Fetcher) GetJSON(rawURL string, params url.Values, v any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	body, err := f.GetBytes(rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", rawURL, err)
	}
	return nil
}

// GetDocument fetches a URL and parses the body as HTML.
func (f *Fetcher) GetDocument(rawURL string) (*goquery.Document, error) {
	body, err := f.GetBytes(rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
