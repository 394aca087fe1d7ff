package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/ranking"
)

// screenParseWorkers bounds concurrent resume extraction; PDF conversion is
// memory-hungry enough that unbounded fan-out hurts on large directories.
const screenParseWorkers = 4

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a directory of applicant resumes against one job",
	Long: `Parses every resume in a directory concurrently and scores each against the
selected job from the feed. Results are listed best first; applicant IDs are
the resume file names without extension.

Files with unsupported extensions are skipped. Resumes that fail extraction
are kept with a zero score so nobody silently drops out of the screen.`,
	RunE: runScreen,
}

var (
	screenConfigPath string
	screenJobs       string
	screenJobID      string
	screenDir        string
	screenOut        string
	screenVerbose    bool
)

func init() {
	screenCmd.Flags().StringVar(&screenConfigPath, "config", "", "Path to config.json (flags override file values)")
	screenCmd.Flags().StringVarP(&screenJobs, "jobs", "j", "", "Path to jobs CSV feed (required)")
	screenCmd.Flags().StringVar(&screenJobID, "job-id", "", "ID of the job to screen against (required)")
	screenCmd.Flags().StringVarP(&screenDir, "resumes", "d", "", "Directory of applicant resume files (required)")
	screenCmd.Flags().StringVarP(&screenOut, "out", "o", "", "Write screening results JSON to this file")
	screenCmd.Flags().BoolVarP(&screenVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = screenCmd.MarkFlagRequired("jobs")
	_ = screenCmd.MarkFlagRequired("job-id")
	_ = screenCmd.MarkFlagRequired("resumes")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(screenConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = screenVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	jobs, err := pipeline.LoadJobs(screenJobs)
	if err != nil {
		return fmt.Errorf("failed to load job feed: %w", err)
	}
	job, err := findJob(jobs, screenJobID)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(screenDir)
	if err != nil {
		return fmt.Errorf("failed to read resumes directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(screenDir, entry.Name()))
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files found in %s", screenDir)
	}

	applicants := parseApplicants(ctx, svc, paths)
	if len(applicants) == 0 {
		return fmt.Errorf("no readable resumes found in %s", screenDir)
	}

	matches := svc.Scorer.ScreenApplicants(ctx, applicants, job)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintApplicants(matches)
	} else {
		for i, m := range matches {
			fmt.Fprintf(os.Stdout, "%2d. %s (score %d)\n", i+1, m.ApplicantID, m.Score)
			if m.Feedback != "" {
				fmt.Fprintf(os.Stdout, "      %s\n", m.Feedback)
			}
		}
	}

	if screenOut != "" {
		if err := writeJSON(screenOut, matches); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Results written to: %s\n", screenOut)
	}

	fmt.Fprintf(os.Stdout, "Successfully screened %d applicants against %q\n", len(matches), job.Title)

	return nil
}

// parseApplicants extracts and parses resume files concurrently, preserving
// directory order. Unsupported formats are dropped; extraction failures keep
// the applicant with no parsed document, which scores zero downstream.
func parseApplicants(ctx context.Context, svc *pipeline.Services, paths []string) []ranking.Applicant {
	slots := make([]ranking.Applicant, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(screenParseWorkers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			text, _, err := ingestion.IngestFromFile(path)
			if errors.Is(err, ingestion.ErrUnsupportedFormat) {
				svc.Logger.Warn("skipping file with unsupported format", zap.String("file", filepath.Base(path)))
				return nil
			}
			id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if err != nil {
				fmt.Printf("Warning: Failed to read resume %s: %v\n", filepath.Base(path), err)
				slots[i] = ranking.Applicant{ID: id, ResumePath: path}
				return nil
			}
			slots[i] = ranking.Applicant{
				ID:         id,
				ResumePath: path,
				Doc:        svc.Parser.Parse(gctx, text, parsing.DocKindResume),
			}
			return nil
		})
	}
	// Workers report problems as warnings, never as errors.
	_ = g.Wait()

	applicants := make([]ranking.Applicant, 0, len(slots))
	for _, a := range slots {
		if a.ID != "" {
			applicants = append(applicants, a)
		}
	}
	return applicants
}
