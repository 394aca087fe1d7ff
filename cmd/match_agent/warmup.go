package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var warmupCmd = &cobra.Command{
	Use:   "warmup",
	Short: "Pre-warm embedding and course caches from a job feed",
	Long: `Encodes job feed texts into the embedding cache and pre-fetches courses for
the most frequent feed skills, so the first real match or dashboard request
does not pay cold-start latency. Safe to run without any remote services
configured; unavailable stages are skipped.`,
	RunE: runWarmup,
}

var (
	warmupConfigPath string
	warmupJobs       string
	warmupVerbose    bool
)

func init() {
	warmupCmd.Flags().StringVar(&warmupConfigPath, "config", "", "Path to config.json (flags override file values)")
	warmupCmd.Flags().StringVarP(&warmupJobs, "jobs", "j", "", "Path to jobs CSV feed (required)")
	warmupCmd.Flags().BoolVarP(&warmupVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = warmupCmd.MarkFlagRequired("jobs")

	rootCmd.AddCommand(warmupCmd)
}

func runWarmup(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(warmupConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = warmupVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	jobs, err := pipeline.LoadJobs(warmupJobs)
	if err != nil {
		return fmt.Errorf("failed to load job feed: %w", err)
	}

	report := pipeline.Warmup(ctx, svc, jobs)

	fmt.Fprintf(os.Stdout, "Encoded %d of %d job texts\n", report.EncodedTexts, report.JobTexts)
	fmt.Fprintf(os.Stdout, "Top skills: %s\n", strings.Join(report.TopSkills, ", "))
	fmt.Fprintf(os.Stdout, "Courses fetched: %d, ranked: %d\n", report.FetchedCourses, report.RankedCourses)
	fmt.Fprintf(os.Stdout, "Successfully warmed up matching caches\n")

	return nil
}
