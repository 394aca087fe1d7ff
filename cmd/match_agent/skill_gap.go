package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var skillGapCmd = &cobra.Command{
	Use:   "skill-gap",
	Short: "List job skills missing from a resume",
	Long: `Parses a resume and compares its canonical skills against the skills of one
job from the feed. Skills the job asks for that the resume does not cover are
listed in the job's order; feed recommend-courses with them to close the gap.`,
	RunE: runSkillGap,
}

var (
	skillGapConfigPath string
	skillGapResume     string
	skillGapJobs       string
	skillGapJobID      string
	skillGapOut        string
	skillGapVerbose    bool
)

func init() {
	skillGapCmd.Flags().StringVar(&skillGapConfigPath, "config", "", "Path to config.json (flags override file values)")
	skillGapCmd.Flags().StringVarP(&skillGapResume, "resume", "r", "", "Path to resume file (required)")
	skillGapCmd.Flags().StringVarP(&skillGapJobs, "jobs", "j", "", "Path to jobs CSV feed (required)")
	skillGapCmd.Flags().StringVar(&skillGapJobID, "job-id", "", "ID of the job to compare against (required)")
	skillGapCmd.Flags().StringVarP(&skillGapOut, "out", "o", "", "Write skill gap JSON to this file")
	skillGapCmd.Flags().BoolVarP(&skillGapVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = skillGapCmd.MarkFlagRequired("resume")
	_ = skillGapCmd.MarkFlagRequired("jobs")
	_ = skillGapCmd.MarkFlagRequired("job-id")

	rootCmd.AddCommand(skillGapCmd)
}

// skillGapReport is the JSON artifact shape for --out.
type skillGapReport struct {
	JobID         string   `json:"job_id"`
	JobTitle      string   `json:"job_title"`
	MissingSkills []string `json:"missing_skills"`
}

func runSkillGap(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(skillGapConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = skillGapVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	jobs, err := pipeline.LoadJobs(skillGapJobs)
	if err != nil {
		return fmt.Errorf("failed to load job feed: %w", err)
	}
	job, err := findJob(jobs, skillGapJobID)
	if err != nil {
		return err
	}

	text, _, err := ingestion.IngestFromFile(skillGapResume)
	if err != nil {
		return fmt.Errorf("failed to ingest resume: %w", err)
	}
	doc := svc.Parser.Parse(ctx, text, parsing.DocKindResume)

	missing := svc.Scorer.SkillGap(ctx, doc.Skills, job.Skills())

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintSkillGap(missing)
	} else if len(missing) == 0 {
		fmt.Fprintf(os.Stdout, "No skill gap: the resume covers every skill %q asks for\n", job.Title)
	} else {
		fmt.Fprintf(os.Stdout, "Missing %d skills for %q: %s\n", len(missing), job.Title, strings.Join(missing, ", "))
	}

	if skillGapOut != "" {
		report := skillGapReport{JobID: job.ID, JobTitle: job.Title, MissingSkills: missing}
		if err := writeJSON(skillGapOut, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Skill gap written to: %s\n", skillGapOut)
	}

	return nil
}
