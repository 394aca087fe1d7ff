package courses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/fetch"
)

type searchElement struct {
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// newSearchServer serves course search results keyed by the query skill.
// Unknown skills get a 500 so failure paths are easy to stage.
func newSearchServer(t *testing.T, bySkill map[string][]searchElement, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		assert.Equal(t, "search", r.URL.Query().Get("q"))
		assert.Equal(t, fetch.DefaultUserAgent, r.Header.Get("User-Agent"))
		elements, ok := bySkill[r.URL.Query().Get("query")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"elements": elements})
	}))
}

func newTestFetcher(serverURL string, store *cache.Store) *Fetcher {
	return NewFetcher(FetchOptions{BaseURL: serverURL, Store: store})
}

func TestFetcher_Fetch(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {
			{Name: "Go Deep Dive", Slug: "go-deep-dive"},
			{Name: "Concurrency in Go", Slug: "go-concurrency"},
		},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"go"})

	require.Len(t, got, 2)
	assert.Equal(t, "Go Deep Dive", got[0].Title)
	assert.Equal(t, "https://www.coursera.org/learn/go-deep-dive", got[0].URL)
	assert.Equal(t, "Concurrency in Go", got[1].Title)
}

func TestFetcher_Fetch_SendsLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(map[string]any{"elements": []searchElement{}})
	}))
	defer server.Close()
	f := NewFetcher(FetchOptions{BaseURL: server.URL, MaxPerSkill: 3})

	f.Fetch(context.Background(), []string{"go"})

	assert.Equal(t, "3", gotLimit)
}

func TestFetcher_Fetch_TitleFallsBackToSlug(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"mlops": {{Slug: "mlops-specialization"}},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"mlops"})

	require.Len(t, got, 1)
	assert.Equal(t, "mlops-specialization", got[0].Title)
	assert.Equal(t, "https://www.coursera.org/learn/mlops-specialization", got[0].URL)
}

func TestFetcher_Fetch_SkipsUntitledElements(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {{}, {Name: "Go Course", Slug: "go-course"}},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"go"})

	require.Len(t, got, 1)
	assert.Equal(t, "Go Course", got[0].Title)
}

func TestFetcher_Fetch_MissingSlugFallsBackToSiteURL(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {{Name: "Unlinked Course"}},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"go"})

	require.Len(t, got, 1)
	assert.Equal(t, "https://www.coursera.org", got[0].URL)
}

func TestFetcher_Fetch_DedupesByTitleFirstWins(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go":     {{Name: "Go Course", Slug: "go-first"}},
		"golang": {{Name: "Go Course", Slug: "go-second"}},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"go", "golang"})

	require.Len(t, got, 1)
	assert.Equal(t, "https://www.coursera.org/learn/go-first", got[0].URL)
}

func TestFetcher_Fetch_SkipsFailedSkills(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {{Name: "Go Course", Slug: "go-course"}},
	}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"unknown-skill", "go"})

	require.Len(t, got, 1)
	assert.Equal(t, "Go Course", got[0].Title)
}

func TestFetcher_Fetch_AllFailuresYieldEmpty(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{}, nil)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"go", "python"})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetcher_Fetch_EmptySkills(t *testing.T) {
	var calls atomic.Int64
	server := newSearchServer(t, nil, &calls)
	defer server.Close()
	f := newTestFetcher(server.URL, nil)

	got := f.Fetch(context.Background(), []string{"", "   "})

	assert.Empty(t, got)
	assert.EqualValues(t, 0, calls.Load())
}

func TestFetcher_Fetch_CacheRoundtrip(t *testing.T) {
	var calls atomic.Int64
	server := newSearchServer(t, map[string][]searchElement{
		"go": {{Name: "Go Course", Slug: "go-course"}},
	}, &calls)
	defer server.Close()
	store := cache.NewStore(t.TempDir())
	f := newTestFetcher(server.URL, store)

	first := f.Fetch(context.Background(), []string{"go"})
	second := f.Fetch(context.Background(), []string{"go"})

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, first, second)
}

func TestFetcher_Fetch_CacheKeyedBySkills(t *testing.T) {
	var calls atomic.Int64
	server := newSearchServer(t, map[string][]searchElement{
		"go":     {{Name: "Go Course", Slug: "go-course"}},
		"python": {{Name: "Python Course", Slug: "python-course"}},
	}, &calls)
	defer server.Close()
	store := cache.NewStore(t.TempDir())
	f := newTestFetcher(server.URL, store)

	f.Fetch(context.Background(), []string{"go"})
	f.Fetch(context.Background(), []string{"python"})

	assert.EqualValues(t, 2, calls.Load())
}

func TestFetcher_Fetch_EmptyResultsNotCached(t *testing.T) {
	var calls atomic.Int64
	server := newSearchServer(t, map[string][]searchElement{}, &calls)
	defer server.Close()
	store := cache.NewStore(t.TempDir())
	f := newTestFetcher(server.URL, store)

	f.Fetch(context.Background(), []string{"go"})
	f.Fetch(context.Background(), []string{"go"})

	// A failed fetch must stay retryable.
	assert.EqualValues(t, 2, calls.Load())
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(FetchOptions{})

	assert.Equal(t, courseraSearchURL, f.baseURL)
	assert.Equal(t, DefaultProvider, f.provider)
	assert.Equal(t, DefaultMaxPerSkill, f.maxPerSkill)
	assert.Equal(t, DefaultFetchTimeout, f.httpClient.Timeout)
}
