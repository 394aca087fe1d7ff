package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/config"
)

// newTestServices builds a fully offline bundle: local-only extraction,
// lexical similarity, no cache directory and no course provider.
func newTestServices(t *testing.T) *Services {
	t.Helper()
	cfg := config.Default()
	cfg.ParseMode = config.ParseModeLocal
	cfg.CacheDir = ""
	svc := NewServices(context.Background(), &cfg, zap.NewNop())
	svc.Fetcher = nil
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func writeResumeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Skills: Go, Python\n"), 0o644))
	return path
}

func writeCatalogFile(t *testing.T) string {
	t.Helper()
	content := "title,url,skills\n" +
		"COBOL Fundamentals,https://courses.example/cobol,cobol\n" +
		"Fortran Basics,https://courses.example/fortran,\"fortran, hpc\"\n" +
		"React Patterns,https://courses.example/react,react\n"
	path := filepath.Join(t.TempDir(), "courses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// The first job is a non-match on purpose: the guidance branch measures the
// gap against the first feed row, not against the ranking winner.
const runJobsCSV = `title,description,skills,deadline,apply_url
Mainframe Operator,Operate legacy batch systems,"cobol, fortran",2026-09-01,https://jobs.example/mainframe
Backend Engineer,Build Go and Python services,"go, python",2026-10-01,https://jobs.example/backend
`

func runFixtureOptions(t *testing.T) RunOptions {
	t.Helper()
	return RunOptions{
		ResumePath:  writeResumeFile(t),
		JobsPath:    writeJobsFile(t, runJobsCSV),
		CatalogPath: writeCatalogFile(t),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	svc := newTestServices(t)

	report, err := Run(context.Background(), svc, runFixtureOptions(t))
	require.NoError(t, err)
	require.NotNil(t, report)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), report.GeneratedAt, time.Minute)
	assert.Equal(t, []string{"go", "python"}, report.ResumeSkills)
	assert.Equal(t, 2, report.JobCount)

	require.Len(t, report.Matches, 2)
	assert.Equal(t, "1", report.Matches[0].JobID)
	assert.Equal(t, "Backend Engineer", report.Matches[0].Title)
	assert.Equal(t, "https://jobs.example/backend", report.Matches[0].ApplyURL)
	assert.Equal(t, "Covers 100% JD skills; semantic 22%.", report.Matches[0].Feedback)
	assert.Equal(t, "0", report.Matches[1].JobID)
	assert.Equal(t, 0, report.Matches[1].Score)
	assert.Greater(t, report.Matches[0].Score, report.Matches[1].Score)

	assert.Equal(t, []string{"cobol", "fortran"}, report.MissingSkills)

	require.Len(t, report.Courses, 2)
	assert.Equal(t, "COBOL Fundamentals", report.Courses[0].Title)
	assert.Equal(t, "Fortran Basics", report.Courses[1].Title)
}

func TestRun_ProgressEvents(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)

	var mu sync.Mutex
	var events []ProgressEvent
	opts.OnProgress = func(event ProgressEvent) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	}

	report, err := Run(context.Background(), svc, opts)
	require.NoError(t, err)

	require.Len(t, events, 7)
	// Ingestion steps are sequential; the branch steps interleave.
	assert.Equal(t, StepResumeText, events[0].Step)
	assert.Equal(t, StepResumeDoc, events[1].Step)
	assert.Equal(t, StepJobs, events[2].Step)
	assert.Equal(t, StepReport, events[6].Step)

	steps := make(map[string]string, len(events))
	for _, event := range events {
		steps[event.Step] = event.Category
		assert.Equal(t, report.RunID, event.RunID)
	}
	assert.Equal(t, CategoryMatching, steps[StepJobMatches])
	assert.Equal(t, CategoryGuidance, steps[StepSkillGap])
	assert.Equal(t, CategoryGuidance, steps[StepCourses])
}

func TestRun_WritesReportArtifact(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)
	opts.OutputDir = t.TempDir()

	report, err := Run(context.Background(), svc, opts)
	require.NoError(t, err)

	path := filepath.Join(opts.OutputDir, "report_"+report.RunID+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored RunReport
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, report.RunID, stored.RunID)
	assert.Equal(t, report.Matches, stored.Matches)
	assert.Equal(t, report.MissingSkills, stored.MissingSkills)
}

func TestRun_TopJobsLimit(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)
	opts.JobsPath = writeJobsFile(t, runJobsCSV+
		"Platform Engineer,Run Go platforms,go,2026-11-01,https://jobs.example/platform\n")
	opts.TopJobs = 1

	report, err := Run(context.Background(), svc, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, report.JobCount)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "Backend Engineer", report.Matches[0].Title)
}

func TestRun_EmptyJobFeed(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)
	opts.JobsPath = writeJobsFile(t, "title,description,skills,deadline,apply_url\n")

	report, err := Run(context.Background(), svc, opts)
	require.NoError(t, err)

	assert.Equal(t, 0, report.JobCount)
	assert.Empty(t, report.Matches)
	assert.Empty(t, report.MissingSkills)
	assert.Empty(t, report.Courses)
}

func TestRun_MissingResumeFile(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)
	opts.ResumePath = filepath.Join(t.TempDir(), "absent.txt")

	_, err := Run(context.Background(), svc, opts)
	assert.ErrorContains(t, err, "resume ingestion failed")
}

func TestRun_MissingJobsFile(t *testing.T) {
	svc := newTestServices(t)
	opts := runFixtureOptions(t)
	opts.JobsPath = filepath.Join(t.TempDir(), "absent.csv")

	_, err := Run(context.Background(), svc, opts)
	assert.ErrorContains(t, err, "loading jobs failed")
}
