package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()

	require.NotNil(t, config)
	assert.Equal(t, DefaultPageCacheTTL, config.CacheTTL)
	assert.False(t, config.SkipCache)
	assert.NotNil(t, config.Options)
}

func TestNewCachedFetcher_NilConfig(t *testing.T) {
	fetcher := NewCachedFetcher(nil)

	require.NotNil(t, fetcher)
	assert.NotNil(t, fetcher.options)
	assert.Nil(t, fetcher.store, "no cache dir means no store")
}

func TestNewCachedFetcher_EmptyConfig(t *testing.T) {
	fetcher := NewCachedFetcher(&CachedFetcherConfig{})

	require.NotNil(t, fetcher)
	// Should use defaults for zero values
	assert.NotNil(t, fetcher.options)
}

func TestCachedFetcher_SecondFetchServedFromCache(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>Senior Go Engineer</main></body></html>"))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(&CachedFetcherConfig{CacheDir: t.TempDir()})

	first, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Contains(t, first.Text, "Senior Go Engineer")

	second, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, first.Text, second.Text)

	assert.Equal(t, int64(1), hits.Load(), "second fetch must not hit the network")
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(&CachedFetcherConfig{CacheDir: t.TempDir(), SkipCache: true})

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(2), hits.Load())
}

func TestCachedFetcher_InvalidateCache(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(&CachedFetcherConfig{CacheDir: t.TempDir()})

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.NoError(t, fetcher.InvalidateCache(server.URL))

	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCachedFetcher_ExpiredEntryRefetches(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(&CachedFetcherConfig{
		CacheDir: t.TempDir(),
		CacheTTL: time.Nanosecond,
	})

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCachedFetcher_FetchMultiple(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(&CachedFetcherConfig{CacheDir: t.TempDir()})

	urls := []string{server.URL, "not-a-valid-url"}
	results, errs := fetcher.FetchMultiple(context.Background(), urls)

	require.Len(t, results, 2)
	require.Len(t, errs, 2)
	assert.NotNil(t, results[0])
	assert.NoError(t, errs[0])
	assert.Nil(t, results[1])
	assert.Error(t, errs[1])
}
