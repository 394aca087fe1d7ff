package courses

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/embedding"
)

func lexicalEngine() *embedding.Engine {
	return embedding.NewEngine(embedding.Config{}, nil)
}

func TestRecommender_Recommend_RanksAndScoresFetchedCourses(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {
			{Name: "Docker and Go Deployment", Slug: "docker-go-deploy"},
			{Name: "Go Basics", Slug: "go-basics"},
		},
	}, nil)
	defer server.Close()
	r := NewRecommender("", newTestFetcher(server.URL, nil), lexicalEngine(), nil)

	got := r.Recommend(context.Background(), []string{"go"}, DefaultTopN)

	require.Len(t, got, 2)
	// Lexical similarity against "go": {go basics} scores 1/2, the longer
	// title 1/4.
	assert.Equal(t, "Go Basics", got[0].Title)
	assert.Equal(t, 50, got[0].Score)
	assert.Equal(t, "https://www.coursera.org/learn/go-basics", got[0].URL)
	assert.Equal(t, "Docker and Go Deployment", got[1].Title)
	assert.Equal(t, 25, got[1].Score)
}

func TestRecommender_Recommend_TopNLimitsResults(t *testing.T) {
	server := newSearchServer(t, map[string][]searchElement{
		"go": {
			{Name: "Go Basics", Slug: "go-basics"},
			{Name: "Advanced Go", Slug: "advanced-go"},
		},
	}, nil)
	defer server.Close()
	r := NewRecommender("", newTestFetcher(server.URL, nil), lexicalEngine(), nil)

	got := r.Recommend(context.Background(), []string{"go"}, 1)

	assert.Len(t, got, 1)
}

func TestRecommender_Recommend_FallsBackToCatalogOnEmptyFetch(t *testing.T) {
	var calls atomic.Int64
	server := newSearchServer(t, map[string][]searchElement{}, &calls)
	defer server.Close()
	catalog := writeCatalog(t, `title,url,skills
Go Deep Dive,https://courses.example.com/go,go
`)
	r := NewRecommender(catalog, newTestFetcher(server.URL, nil), lexicalEngine(), nil)

	got := r.Recommend(context.Background(), []string{"go"}, DefaultTopN)

	assert.EqualValues(t, 1, calls.Load())
	require.Len(t, got, 1)
	assert.Equal(t, "Go Deep Dive", got[0].Title)
	assert.Zero(t, got[0].Score)
}

func TestRecommender_Recommend_NoFetcherUsesCatalog(t *testing.T) {
	catalog := writeCatalog(t, `title,url,skills
SQL Fundamentals,https://courses.example.com/sql,sql
`)
	r := NewRecommender(catalog, nil, nil, nil)

	got := r.Recommend(context.Background(), []string{"sql"}, DefaultTopN)

	require.Len(t, got, 1)
	assert.Equal(t, "SQL Fundamentals", got[0].Title)
}

func TestRecommender_Recommend_EmptySkills(t *testing.T) {
	r := NewRecommender("", nil, nil, nil)

	got := r.Recommend(context.Background(), nil, DefaultTopN)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommender_Recommend_ZeroTopNUsesDefault(t *testing.T) {
	rows := "title,url,skills\n"
	for i := 0; i < 7; i++ {
		rows += fmt.Sprintf("Course %d,https://courses.example.com/%d,go\n", i, i)
	}
	r := NewRecommender(writeCatalog(t, rows), nil, nil, nil)

	got := r.Recommend(context.Background(), []string{"go"}, 0)

	assert.Len(t, got, DefaultTopN)
}

func TestRecommender_RecommendLocal_MissingCatalogIsEmpty(t *testing.T) {
	r := NewRecommender(filepath.Join(t.TempDir(), "absent.csv"), nil, nil, nil)

	got := r.RecommendLocal([]string{"go"}, DefaultTopN)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
