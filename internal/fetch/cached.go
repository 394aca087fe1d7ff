// Package fetch - cached.go wraps URL fetching with a disk-backed page cache.
package fetch

import (
	"context"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
)

// DefaultPageCacheTTL bounds how long fetched pages are served from cache.
const DefaultPageCacheTTL = 7 * 24 * time.Hour

const pageCacheKind = "fetch"

// CachedFetcher wraps URL fetching with a disk-backed page cache keyed by URL.
type CachedFetcher struct {
	store     *cache.Store
	options   *Options
	skipCache bool // For testing or forcing fresh fetches
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheDir  string
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultPageCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. With an empty CacheDir the
// fetcher still works but every call goes to the network.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultPageCacheTTL
	}

	var store *cache.Store
	if config.CacheDir != "" {
		store = cache.NewStoreTTL(config.CacheDir, config.CacheTTL)
	}

	return &CachedFetcher{
		store:     store,
		options:   config.Options,
		skipCache: config.SkipCache,
	}
}

// cachedPage is the on-disk representation of a fetched page.
type cachedPage struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	Text       string `json:"text"`
	StatusCode int    `json:"status_code"`
	FetchedAt  string `json:"fetched_at"` // RFC3339
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool // Whether this result came from cache
}

// Fetch retrieves a URL, serving from the page cache when a fresh entry
// exists and populating the cache after a successful network fetch.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache && f.store != nil {
		var page cachedPage
		if f.store.Get(pageCacheKind, urlStr, &page) {
			return &CachedResult{
				Result: &Result{
					URL:        page.URL,
					HTML:       page.HTML,
					Text:       page.Text,
					StatusCode: page.StatusCode,
				},
				FromCache: true,
			}, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	text, _ := ExtractMainText(result.HTML, DefaultTextSelectors())
	result.Text = text

	if f.store != nil {
		page := cachedPage{
			URL:        urlStr,
			HTML:       result.HTML,
			Text:       result.Text,
			StatusCode: result.StatusCode,
			FetchedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		// Cache write failures do not fail the fetch.
		_ = f.store.Put(pageCacheKind, urlStr, page)
	}

	return &CachedResult{
		Result:    result,
		FromCache: false,
	}, nil
}

// FetchMultiple fetches multiple URLs with caching.
// Returns results in the same order as input URLs. Failed fetches are nil in the result slice.
func (f *CachedFetcher) FetchMultiple(ctx context.Context, urls []string) ([]*CachedResult, []error) {
	results := make([]*CachedResult, len(urls))
	errors := make([]error, len(urls))

	for i, url := range urls {
		result, err := f.Fetch(ctx, url)
		if err != nil {
			errors[i] = err
		} else {
			results[i] = result
		}
	}

	return results, errors
}

// InvalidateCache removes a cached page, forcing a re-fetch on next request.
func (f *CachedFetcher) InvalidateCache(urlStr string) error {
	if f.store == nil {
		return nil
	}
	return f.store.Delete(pageCacheKind, urlStr)
}
