package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// maxWarmupJobs caps how many job texts are handed to the embedder.
	maxWarmupJobs = 100
	// warmupTopSkills is how many high-frequency feed skills seed the
	// course prefetch.
	warmupTopSkills = 6
	// maxWarmupCourses caps the candidates pushed through the ranking path.
	maxWarmupCourses = 20
	// warmupCourseTopK is the shortlist width used for the ranking warmup.
	warmupCourseTopK = 5
)

// defaultWarmupSkills seed the course prefetch when the job feed carries no
// skills at all.
var defaultWarmupSkills = []string{"python", "sql", "react"}

// WarmupReport summarizes what a warmup pass touched.
type WarmupReport struct {
	JobTexts       int      `json:"job_texts"`
	EncodedTexts   int      `json:"encoded_texts"`
	TopSkills      []string `json:"top_skills"`
	FetchedCourses int      `json:"fetched_courses"`
	RankedCourses  int      `json:"ranked_courses"`
}

// Warmup pre-pays the cold-start costs of a fresh deployment: it loads the
// embedder and encodes current job texts, prefetches course candidates for
// the feed's most frequent skills, and pushes them through the ranking path
// so the first real request hits warm caches. Every phase degrades
// independently; Warmup itself cannot fail.
func Warmup(ctx context.Context, svc *Services, jobs []types.JobRecord) *WarmupReport {
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &WarmupReport{}

	capped := jobs
	if len(capped) > maxWarmupJobs {
		capped = capped[:maxWarmupJobs]
	}
	texts := make([]string, len(capped))
	for i, job := range capped {
		texts[i] = job.Text()
	}
	report.JobTexts = len(texts)
	report.EncodedTexts = svc.Engine.Warmup(ctx, texts)

	report.TopSkills = topJobSkills(jobs, warmupTopSkills)
	if len(report.TopSkills) == 0 {
		report.TopSkills = defaultWarmupSkills
	}

	if svc.Fetcher == nil {
		logger.Debug("no course fetcher configured; skipping course warmup")
		return report
	}

	fetched := svc.Fetcher.Fetch(ctx, report.TopSkills)
	if len(fetched) > maxWarmupCourses {
		fetched = fetched[:maxWarmupCourses]
	}
	report.FetchedCourses = len(fetched)
	if len(fetched) == 0 {
		return report
	}

	docs := make([]embedding.Document, len(fetched))
	for i, course := range fetched {
		docs[i] = embedding.Document{ID: strconv.Itoa(i), Text: course.CourseText()}
	}
	ranked := svc.Engine.BestMatches(ctx, strings.Join(report.TopSkills, " "), docs, warmupCourseTopK)
	report.RankedCourses = len(ranked)

	logger.Debug("warmup complete",
		zap.Int("job_texts", report.JobTexts),
		zap.Int("encoded_texts", report.EncodedTexts),
		zap.Int("fetched_courses", report.FetchedCourses))
	return report
}

// topJobSkills counts canonical skill frequency across the whole feed and
// returns the n most common, ties alphabetical.
func topJobSkills(jobs []types.JobRecord, n int) []string {
	counts := make(map[string]int)
	for _, job := range jobs {
		for _, skill := range parsing.NormalizeSkills(job.Skills()) {
			counts[skill]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	skills := make([]string, 0, len(counts))
	for skill := range counts {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		if counts[skills[i]] != counts[skills[j]] {
			return counts[skills[i]] > counts[skills[j]]
		}
		return skills[i] < skills[j]
	})
	if len(skills) > n {
		skills = skills[:n]
	}
	return skills
}
