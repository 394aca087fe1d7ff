package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/types"
)

func rankFixture() (*types.ParsedDocument, []types.JobRecord) {
	resume := &types.ParsedDocument{Skills: []string{"go", "python"}, RawText: "go python"}
	jobs := []types.JobRecord{
		{ID: "low", Title: "cobol", Description: "fortran gammajob", SkillsCSV: "cobol"},
		{ID: "high", Title: "go", Description: "python alphajob", SkillsCSV: "go"},
		{ID: "mid", Title: "go", Description: "java betajob", SkillsCSV: "go"},
	}
	return resume, jobs
}

func matchOrder(matches []types.JobMatch) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.JobID
	}
	return ids
}

func TestRankJobs_SortedDescending(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	resume, jobs := rankFixture()

	matches := s.RankJobs(context.Background(), resume, jobs)

	require.Len(t, matches, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, matchOrder(matches))
	assert.Equal(t, 88, matches[0].Score)
	assert.Equal(t, 74, matches[1].Score)
	assert.Equal(t, 0, matches[2].Score)
}

func TestRankJobs_CarriesTitleAndApplyURL(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	resume := &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}
	jobs := []types.JobRecord{
		{ID: "j1", Title: "Backend Engineer", Description: "go", SkillsCSV: "go", ApplyURL: "https://jobs.example.com/j1"},
	}

	matches := s.RankJobs(context.Background(), resume, jobs)

	require.Len(t, matches, 1)
	assert.Equal(t, "Backend Engineer", matches[0].Title)
	assert.Equal(t, "https://jobs.example.com/j1", matches[0].ApplyURL)
}

func TestRankJobs_StableTies(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	resume := &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}
	jobs := []types.JobRecord{
		{ID: "first", Title: "go", Description: "", SkillsCSV: "go"},
		{ID: "second", Title: "go", Description: "", SkillsCSV: "go"},
	}

	matches := s.RankJobs(context.Background(), resume, jobs)

	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, []string{"first", "second"}, matchOrder(matches))
}

func TestRankJobs_EmptyJobs(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	resume := &types.ParsedDocument{Skills: []string{"go"}}

	matches := s.RankJobs(context.Background(), resume, nil)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestRankJobs_AgreesWithSinglePairScore(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	resume, jobs := rankFixture()

	matches := s.RankJobs(context.Background(), resume, jobs)

	byID := make(map[string]types.JobMatch, len(matches))
	for _, m := range matches {
		byID[m.JobID] = m
	}
	for i := range jobs {
		single := s.Score(context.Background(), resume, &jobs[i])
		assert.Equal(t, single.Score, byID[jobs[i].ID].Score, "job %s", jobs[i].ID)
		assert.Equal(t, single.Feedback, byID[jobs[i].ID].Feedback, "job %s", jobs[i].ID)
	}
}

func TestRankJobs_RemoteRescoreReordersTop(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			switch {
			case strings.Contains(prompt, "alphajob"):
				return `{"score": 0, "feedback": "Reconsidered."}`, nil
			case strings.Contains(prompt, "betajob"):
				return `{"score": 100, "feedback": "Reconsidered."}`, nil
			default:
				return "", errors.New("model unavailable")
			}
		},
	}
	s := newLexicalScorer(t, Options{
		UseRemoteMatch: true,
		Remote:         NewRemoteScorer(mock, zap.NewNop()),
	})
	resume, jobs := rankFixture()

	matches := s.RankJobs(context.Background(), resume, jobs)

	require.Len(t, matches, 3)
	// high was rescored down (0.6*88 = 53), mid up (40 + 0.6*74 = 84), and
	// the failed call left low untouched.
	assert.Equal(t, []string{"mid", "high", "low"}, matchOrder(matches))
	assert.Equal(t, 84, matches[0].Score)
	assert.Equal(t, 53, matches[1].Score)
	assert.Equal(t, 0, matches[2].Score)
	assert.Equal(t, "Reconsidered.", matches[0].Feedback)
	assert.Equal(t, "Reconsidered.", matches[1].Feedback)
	assert.Equal(t, "Covers 0% JD skills; semantic 0%.", matches[2].Feedback)
}

func TestRankJobs_RemoteFailureKeepsLocalRanking(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	plain := newLexicalScorer(t, Options{})
	remote := newLexicalScorer(t, Options{
		UseRemoteMatch: true,
		Remote:         NewRemoteScorer(mock, zap.NewNop()),
	})
	resume, jobs := rankFixture()

	want := plain.RankJobs(context.Background(), resume, jobs)
	got := remote.RankJobs(context.Background(), resume, jobs)

	assert.Equal(t, want, got)
}

func TestRankJobs_RemoteRescoreLimitedToTop(t *testing.T) {
	var calls atomic.Int64
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls.Add(1)
			return `{"score": 50}`, nil
		},
	}
	s := newLexicalScorer(t, Options{
		UseRemoteMatch: true,
		Remote:         NewRemoteScorer(mock, zap.NewNop()),
	})
	resume := &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}
	jobs := make([]types.JobRecord, 12)
	for i := range jobs {
		jobs[i] = types.JobRecord{
			ID:          fmt.Sprintf("job-%02d", i),
			Title:       "go",
			Description: fmt.Sprintf("filler%02d", i),
			SkillsCSV:   "go",
		}
	}

	matches := s.RankJobs(context.Background(), resume, jobs)

	assert.Len(t, matches, 12)
	assert.EqualValues(t, maxRemoteRescore, calls.Load())
}

func TestRankJobs_CancelledContextSkipsRemote(t *testing.T) {
	var calls atomic.Int64
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			calls.Add(1)
			return `{"score": 50}`, nil
		},
	}
	plain := newLexicalScorer(t, Options{})
	remote := newLexicalScorer(t, Options{
		UseRemoteMatch: true,
		Remote:         NewRemoteScorer(mock, zap.NewNop()),
	})
	resume, jobs := rankFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	want := plain.RankJobs(context.Background(), resume, jobs)
	got := remote.RankJobs(ctx, resume, jobs)

	assert.EqualValues(t, 0, calls.Load())
	assert.Equal(t, want, got)
}

func TestScreenApplicants_SortedDescending(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	job := &types.JobRecord{ID: "j1", Title: "go", Description: "python", SkillsCSV: "go,python"}
	applicants := []Applicant{
		{ID: "weak", Doc: &types.ParsedDocument{Skills: []string{"java"}, RawText: "java"}},
		{ID: "strong", Doc: &types.ParsedDocument{Skills: []string{"go", "python"}, RawText: "go python"}},
		{ID: "partial", Doc: &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}},
	}

	matches := s.ScreenApplicants(context.Background(), applicants, job)

	require.Len(t, matches, 3)
	assert.Equal(t, "strong", matches[0].ApplicantID)
	assert.Equal(t, "partial", matches[1].ApplicantID)
	assert.Equal(t, "weak", matches[2].ApplicantID)
	assert.Equal(t, 88, matches[0].Score)
	assert.Equal(t, 44, matches[1].Score)
	assert.Equal(t, 0, matches[2].Score)
}

func TestScreenApplicants_CarriesResumePath(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	job := &types.JobRecord{ID: "j1", Title: "go", Description: "", SkillsCSV: "go"}
	applicants := []Applicant{
		{ID: "a1", ResumePath: "resumes/a1.pdf", Doc: &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}},
	}

	matches := s.ScreenApplicants(context.Background(), applicants, job)

	require.Len(t, matches, 1)
	assert.Equal(t, "resumes/a1.pdf", matches[0].ResumePath)
}

func TestScreenApplicants_NilDocScoresZero(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	job := &types.JobRecord{ID: "j1", Title: "go", Description: "", SkillsCSV: "go"}
	applicants := []Applicant{
		{ID: "ghost", Doc: nil},
		{ID: "real", Doc: &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}},
	}

	matches := s.ScreenApplicants(context.Background(), applicants, job)

	require.Len(t, matches, 2)
	assert.Equal(t, "real", matches[0].ApplicantID)
	assert.Equal(t, "ghost", matches[1].ApplicantID)
	assert.Equal(t, 0, matches[1].Score)
}

func TestScreenApplicants_StableTies(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	job := &types.JobRecord{ID: "j1", Title: "go", Description: "", SkillsCSV: "go"}
	doc := &types.ParsedDocument{Skills: []string{"go"}, RawText: "go"}
	applicants := []Applicant{
		{ID: "first", Doc: doc},
		{ID: "second", Doc: doc},
	}

	matches := s.ScreenApplicants(context.Background(), applicants, job)

	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].ApplicantID)
	assert.Equal(t, "second", matches[1].ApplicantID)
}

func TestScreenApplicants_Empty(t *testing.T) {
	s := newLexicalScorer(t, Options{})
	job := &types.JobRecord{ID: "j1", Title: "go", SkillsCSV: "go"}

	matches := s.ScreenApplicants(context.Background(), nil, job)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}
