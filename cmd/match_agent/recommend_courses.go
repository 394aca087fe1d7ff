package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/courses"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend-courses",
	Short: "Recommend courses covering a list of skills",
	Long: `Recommends courses for the given skills, typically the output of skill-gap.
Candidates come from the local catalog and, when a provider is configured,
from the course provider API; they are ranked by semantic relevance against
the skill list.`,
	RunE: runRecommendCourses,
}

var (
	recommendConfigPath string
	recommendSkills     string
	recommendCatalog    string
	recommendTop        int
	recommendOut        string
	recommendVerbose    bool
)

func init() {
	recommendCmd.Flags().StringVar(&recommendConfigPath, "config", "", "Path to config.json (flags override file values)")
	recommendCmd.Flags().StringVarP(&recommendSkills, "skills", "s", "", "Comma-separated skills to find courses for (required)")
	recommendCmd.Flags().StringVar(&recommendCatalog, "catalog", "data/courses.csv", "Path to the local course catalog CSV")
	recommendCmd.Flags().IntVar(&recommendTop, "top", courses.DefaultTopN, "Number of courses to recommend")
	recommendCmd.Flags().StringVarP(&recommendOut, "out", "o", "", "Write recommendations JSON to this file")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = recommendCmd.MarkFlagRequired("skills")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommendCourses(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	skills := parsing.NormalizeSkills(strings.Split(recommendSkills, ","))
	if len(skills) == 0 {
		return fmt.Errorf("--skills contains no usable skill names")
	}

	cfg, err := resolveConfig(recommendConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = recommendVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	recommendations := svc.Recommender(recommendCatalog).Recommend(ctx, skills, recommendTop)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintCourses(recommendations)
	} else if len(recommendations) == 0 {
		fmt.Fprintf(os.Stdout, "No courses found for: %s\n", strings.Join(skills, ", "))
	} else {
		for i, course := range recommendations {
			fmt.Fprintf(os.Stdout, "%2d. %s\n      %s\n", i+1, course.Title, course.URL)
		}
	}

	if recommendOut != "" {
		if err := writeJSON(recommendOut, recommendations); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Recommendations written to: %s\n", recommendOut)
	}

	fmt.Fprintf(os.Stdout, "Successfully recommended %d courses for %d skills\n", len(recommendations), len(skills))

	return nil
}
