// Package pipeline orchestrates end-to-end matching runs: resume ingestion,
// entity extraction, job ranking, skill-gap analysis and course
// recommendation, with progress reporting and a JSON report artifact.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/courses"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Step and category names used in progress events and run reports.
const (
	CategoryIngestion = "ingestion"
	CategoryMatching  = "matching"
	CategoryGuidance  = "guidance"
	CategoryReport    = "report"
)

const (
	StepResumeText = "resume_text"
	StepResumeDoc  = "resume_entities"
	StepJobs       = "jobs_loaded"
	StepJobMatches = "job_matches"
	StepSkillGap   = "skill_gap"
	StepCourses    = "course_recommendations"
	StepReport     = "run_report"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. The matching
// and guidance branches run concurrently, so the callback must be safe to
// call from two goroutines.
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	ResumePath  string
	JobsPath    string
	CatalogPath string
	TopJobs     int
	TopCourses  int
	OutputDir   string
	Verbose     bool
	OnProgress  ProgressCallback
}

// RunReport is the artifact a run produces: everything the matching and
// guidance branches found, under one run ID.
type RunReport struct {
	RunID         string           `json:"run_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	ResumePath    string           `json:"resume_path"`
	ResumeSkills  []string         `json:"resume_skills"`
	JobCount      int              `json:"job_count"`
	Matches       []types.JobMatch `json:"matches"`
	MissingSkills []string         `json:"missing_skills"`
	Courses       []types.Course   `json:"courses"`
}

// matchBranchResult holds the output of the job matching branch
type matchBranchResult struct {
	Matches []types.JobMatch
}

// guidanceBranchResult holds the output of the skill-gap and course branch
type guidanceBranchResult struct {
	MissingSkills []string
	Courses       []types.Course
}

// logPrefix is used to distinguish concurrent log output
type logPrefix string

const (
	prefixMatching logPrefix = "[Matching] "
	prefixGuidance logPrefix = "[Guidance] "
)

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

// Run executes the full matching pipeline and returns the run report. The
// matching and guidance branches run in parallel once the inputs are
// loaded. An unwritable report directory degrades to a warning; every
// input failure aborts the run.
func Run(ctx context.Context, svc *Services, opts RunOptions) (*RunReport, error) {
	printer := observability.NewPrinter(os.Stdout)
	runID := uuid.New().String()

	if opts.TopCourses <= 0 {
		opts.TopCourses = courses.DefaultTopN
	}

	fmt.Printf("Step 1/6: Ingesting resume from file: %s...\n", opts.ResumePath)
	resumeText, _, err := ingestion.IngestFromFile(opts.ResumePath)
	if err != nil {
		return nil, fmt.Errorf("resume ingestion failed: %w", err)
	}
	emitProgress(&opts, runID, StepResumeText, CategoryIngestion,
		fmt.Sprintf("Ingested and cleaned resume from %s", opts.ResumePath), nil)

	fmt.Printf("Step 2/6: Extracting resume entities...\n")
	resumeDoc := svc.Parser.Parse(ctx, resumeText, parsing.DocKindResume)
	if opts.Verbose {
		printer.PrintParsedDocument("resume", resumeDoc)
	}
	emitProgress(&opts, runID, StepResumeDoc, CategoryIngestion,
		fmt.Sprintf("Extracted %d skills and %d experience entries",
			len(resumeDoc.Skills), len(resumeDoc.Experience)), resumeDoc)

	fmt.Printf("Step 3/6: Loading jobs from %s...\n", opts.JobsPath)
	jobs, err := LoadJobs(opts.JobsPath)
	if err != nil {
		return nil, fmt.Errorf("loading jobs failed: %w", err)
	}
	emitProgress(&opts, runID, StepJobs, CategoryIngestion,
		fmt.Sprintf("Loaded %d job records", len(jobs)), nil)

	// =========================================================================
	// PARALLEL EXECUTION: Matching Branch + Guidance Branch
	// =========================================================================
	fmt.Printf("\n🚀 Starting parallel execution of Matching and Guidance branches...\n\n")

	g, gCtx := errgroup.WithContext(ctx)

	var matchResult *matchBranchResult
	var guidanceResult *guidanceBranchResult
	var matchMu, guideMu sync.Mutex // Protect result assignments

	// Matching Branch (Step 4)
	g.Go(func() error {
		result, err := runMatchBranch(gCtx, svc, &opts, runID, resumeDoc, jobs)
		if err != nil {
			return fmt.Errorf("matching branch failed: %w", err)
		}
		matchMu.Lock()
		matchResult = result
		matchMu.Unlock()
		return nil
	})

	// Guidance Branch (Step 5)
	g.Go(func() error {
		result, err := runGuidanceBranch(gCtx, svc, &opts, runID, resumeDoc, jobs)
		if err != nil {
			return fmt.Errorf("guidance branch failed: %w", err)
		}
		guideMu.Lock()
		guidanceResult = result
		guideMu.Unlock()
		return nil
	})

	// Wait for both branches to complete
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Printf("\n✅ Both branches completed.\n\n")
	// =========================================================================

	if opts.Verbose {
		printer.PrintJobMatches(matchResult.Matches)
		printer.PrintSkillGap(guidanceResult.MissingSkills)
		printer.PrintCourses(guidanceResult.Courses)
	}

	report := &RunReport{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		ResumePath:    opts.ResumePath,
		ResumeSkills:  resumeDoc.Skills,
		JobCount:      len(jobs),
		Matches:       matchResult.Matches,
		MissingSkills: guidanceResult.MissingSkills,
		Courses:       guidanceResult.Courses,
	}

	fmt.Printf("Step 6/6: Writing run report...\n")
	if opts.OutputDir != "" {
		path, err := writeReport(opts.OutputDir, report)
		if err != nil {
			fmt.Printf("Warning: Failed to write run report: %v\n", err)
		} else {
			fmt.Printf("Report written to %s\n", path)
		}
	}
	emitProgress(&opts, runID, StepReport, CategoryReport,
		fmt.Sprintf("Matched %d jobs, %d missing skills, %d courses",
			len(report.Matches), len(report.MissingSkills), len(report.Courses)), nil)

	fmt.Printf("Done! Matched %d jobs for %s.\n", len(report.Matches), filepath.Base(opts.ResumePath))
	return report, nil
}

// runMatchBranch executes Step 4: ranking every job against the resume
func runMatchBranch(ctx context.Context, svc *Services, opts *RunOptions, runID string, resume *types.ParsedDocument, jobs []types.JobRecord) (*matchBranchResult, error) {
	prefix := prefixMatching

	fmt.Printf("%sStep 4/6: Ranking %d jobs...\n", prefix, len(jobs))
	matches := svc.Scorer.RankJobs(ctx, resume, jobs)
	if opts.TopJobs > 0 && len(matches) > opts.TopJobs {
		matches = matches[:opts.TopJobs]
	}
	emitProgress(opts, runID, StepJobMatches, CategoryMatching,
		fmt.Sprintf("Ranked %d jobs", len(jobs)), matches)

	fmt.Printf("%s✅ Matching branch complete.\n", prefix)
	return &matchBranchResult{Matches: matches}, nil
}

// runGuidanceBranch executes Step 5: skill-gap analysis and course
// recommendation. The gap is measured against the first job in the feed,
// not the best-scored one; rankings are still being computed on the other
// branch when this one starts.
func runGuidanceBranch(ctx context.Context, svc *Services, opts *RunOptions, runID string, resume *types.ParsedDocument, jobs []types.JobRecord) (*guidanceBranchResult, error) {
	prefix := prefixGuidance

	fmt.Printf("%sStep 5/6: Analyzing skill gap...\n", prefix)
	missing := []string{}
	if len(jobs) > 0 {
		missing = svc.Scorer.SkillGap(ctx, resume.Skills, jobs[0].Skills())
	}
	emitProgress(opts, runID, StepSkillGap, CategoryGuidance,
		fmt.Sprintf("Found %d missing skills", len(missing)), missing)

	fmt.Printf("%sStep 5a/6: Recommending courses...\n", prefix)
	courseList := []types.Course{}
	if len(missing) > 0 {
		courseList = svc.Recommender(opts.CatalogPath).Recommend(ctx, missing, opts.TopCourses)
	}
	emitProgress(opts, runID, StepCourses, CategoryGuidance,
		fmt.Sprintf("Recommended %d courses", len(courseList)), courseList)

	fmt.Printf("%s✅ Guidance branch complete.\n", prefix)
	return &guidanceBranchResult{MissingSkills: missing, Courses: courseList}, nil
}

// writeReport writes the report as indented JSON under dir, named by run
// ID, and returns the file path.
func writeReport(dir string, report *RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.json", report.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run report: %w", err)
	}
	return path, nil
}
