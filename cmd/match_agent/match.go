package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank a job feed against one resume",
	Long: `Parses a resume, loads a CSV job feed, and scores every job against the
resume. Scores combine canonical skill coverage with semantic similarity and
are listed best first.`,
	RunE: runMatch,
}

var (
	matchConfigPath string
	matchResume     string
	matchJobs       string
	matchTop        int
	matchOut        string
	matchVerbose    bool
)

func init() {
	matchCmd.Flags().StringVar(&matchConfigPath, "config", "", "Path to config.json (flags override file values)")
	matchCmd.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to resume file (required)")
	matchCmd.Flags().StringVarP(&matchJobs, "jobs", "j", "", "Path to jobs CSV feed (required)")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "Keep only the top N matches (0 keeps all)")
	matchCmd.Flags().StringVarP(&matchOut, "out", "o", "", "Write ranked matches JSON to this file")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = matchCmd.MarkFlagRequired("resume")
	_ = matchCmd.MarkFlagRequired("jobs")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(matchConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = matchVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	text, _, err := ingestion.IngestFromFile(matchResume)
	if err != nil {
		return fmt.Errorf("failed to ingest resume: %w", err)
	}
	doc := svc.Parser.Parse(ctx, text, parsing.DocKindResume)

	jobs, err := pipeline.LoadJobs(matchJobs)
	if err != nil {
		return fmt.Errorf("failed to load job feed: %w", err)
	}

	matches := svc.Scorer.RankJobs(ctx, doc, jobs)
	if matchTop > 0 && len(matches) > matchTop {
		matches = matches[:matchTop]
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(os.Stdout)
		printer.PrintParsedDocument("Resume", doc)
		printer.PrintJobMatches(matches)
	} else {
		printMatchLines(os.Stdout, matches)
	}

	if matchOut != "" {
		if err := writeJSON(matchOut, matches); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Matches written to: %s\n", matchOut)
	}

	fmt.Fprintf(os.Stdout, "Successfully matched %d jobs against %s\n", len(matches), filepath.Base(matchResume))

	return nil
}
