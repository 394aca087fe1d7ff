package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full matching pipeline end-to-end",
	Long: `Orchestrates the entire matching process: resume ingestion -> entity
extraction -> job feed loading -> parallel matching and guidance branches ->
run report.

The matching branch ranks every job against the resume. The guidance branch
measures the skill gap and recommends courses to close it. A JSON run report
is written to the output directory.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runResume      string
	runJobs        string
	runCatalog     string
	runTopJobs     int
	runTopCourses  int
	runOut         string
	runVerbose     bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json (flags override file values)")
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to resume file (required)")
	runCommand.Flags().StringVarP(&runJobs, "jobs", "j", "", "Path to jobs CSV feed (required)")
	runCommand.Flags().StringVar(&runCatalog, "catalog", "data/courses.csv", "Path to the local course catalog CSV")
	runCommand.Flags().IntVar(&runTopJobs, "top-jobs", 0, "Keep only the top N matches in the report (0 keeps all)")
	runCommand.Flags().IntVar(&runTopCourses, "top-courses", 0, "Number of courses to recommend (0 uses the default)")
	runCommand.Flags().StringVarP(&runOut, "out", "o", "output", "Directory for the run report artifact")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = runCommand.MarkFlagRequired("resume")
	_ = runCommand.MarkFlagRequired("jobs")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := pipeline.Run(ctx, svc, pipeline.RunOptions{
		ResumePath:  runResume,
		JobsPath:    runJobs,
		CatalogPath: runCatalog,
		TopJobs:     runTopJobs,
		TopCourses:  runTopCourses,
		OutputDir:   runOut,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return err
	}

	printMatchLines(os.Stdout, report.Matches)
	if len(report.MissingSkills) > 0 {
		fmt.Fprintf(os.Stdout, "Skill gap: %s\n", strings.Join(report.MissingSkills, ", "))
	}
	for _, course := range report.Courses {
		fmt.Fprintf(os.Stdout, "Course: %s (%s)\n", course.Title, course.URL)
	}

	return nil
}
