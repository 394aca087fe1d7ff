package courses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// DefaultProvider names the only external catalog currently wired.
	DefaultProvider = "coursera"
	// DefaultMaxPerSkill caps how many candidates one skill query returns.
	DefaultMaxPerSkill = 6
	// DefaultFetchTimeout bounds each provider request.
	DefaultFetchTimeout = 10 * time.Second

	courseraSearchURL = "https://www.coursera.org/api/courses.v1"
	courseraLearnURL  = "https://www.coursera.org/learn/"
	courseCacheKind   = "courses"
)

// Fetcher retrieves course candidates from an external provider, with a
// read-through disk cache keyed by the skill list.
type Fetcher struct {
	baseURL     string
	provider    string
	maxPerSkill int
	store       *cache.Store
	httpClient  *http.Client
	logger      *zap.Logger
}

// FetchOptions configures a Fetcher. Zero values take the package defaults.
type FetchOptions struct {
	// BaseURL overrides the provider search endpoint (tests point it at a
	// local server).
	BaseURL     string
	Provider    string
	MaxPerSkill int
	// Store caches fetched candidate lists; nil disables caching.
	Store   *cache.Store
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewFetcher builds a provider client.
func NewFetcher(opts FetchOptions) *Fetcher {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = courseraSearchURL
	}
	provider := opts.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	maxPerSkill := opts.MaxPerSkill
	if maxPerSkill <= 0 {
		maxPerSkill = DefaultMaxPerSkill
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		baseURL:     baseURL,
		provider:    provider,
		maxPerSkill: maxPerSkill,
		store:       opts.Store,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// courseSearchResponse is the slice of the provider payload we consume.
type courseSearchResponse struct {
	Elements []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"elements"`
}

// Fetch queries the provider once per skill and returns the combined
// candidates, deduplicated by title (first occurrence wins). Per-skill
// failures are skipped; a fully failed fetch is an empty list, never an
// error, so callers can fall back to the local catalog.
func (f *Fetcher) Fetch(ctx context.Context, skills []string) []types.Course {
	cleaned := cleanSkills(skills)
	if len(cleaned) == 0 {
		return []types.Course{}
	}

	key := f.cacheKey(cleaned)
	if f.store != nil {
		var cached []types.Course
		if f.store.Get(courseCacheKind, key, &cached) {
			f.logger.Debug("course fetch cache hit", zap.Int("courses", len(cached)))
			return cached
		}
	}

	candidates := make([]types.Course, 0)
	for _, skill := range cleaned {
		courses, err := f.searchSkill(ctx, skill)
		if err != nil {
			f.logger.Debug("course search failed; skipping skill",
				zap.String("skill", skill),
				zap.Error(err))
			continue
		}
		candidates = append(candidates, courses...)
	}

	unique := dedupeByTitle(candidates)
	if f.store != nil && len(unique) > 0 {
		if err := f.store.Put(courseCacheKind, key, unique); err != nil {
			f.logger.Debug("course cache write failed", zap.Error(err))
		}
	}
	return unique
}

func (f *Fetcher) searchSkill(ctx context.Context, skill string) ([]types.Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL, nil)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("q", "search")
	query.Set("query", skill)
	query.Set("limit", strconv.Itoa(f.maxPerSkill))
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &fetch.Error{
			URL:     req.URL.String(),
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	var payload courseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	courses := make([]types.Course, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		title := element.Name
		if title == "" {
			title = element.Slug
		}
		if title == "" {
			continue
		}
		courseURL := "https://www.coursera.org"
		if element.Slug != "" {
			courseURL = courseraLearnURL + element.Slug
		}
		courses = append(courses, types.Course{Title: title, URL: courseURL})
	}
	return courses, nil
}

// cacheKey hashes the skill list and provider so the same request hits the
// same cache file across runs.
func (f *Fetcher) cacheKey(skills []string) string {
	payload, _ := json.Marshal(struct {
		Skills   []string `json:"skills"`
		Provider string   `json:"provider"`
	}{Skills: skills, Provider: f.provider})
	return cache.Key(string(payload))
}

func cleanSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		if s := strings.TrimSpace(skill); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

func dedupeByTitle(courses []types.Course) []types.Course {
	seen := make(map[string]bool, len(courses))
	unique := make([]types.Course, 0, len(courses))
	for _, course := range courses {
		title := strings.TrimSpace(course.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		unique = append(unique, course)
	}
	return unique
}
