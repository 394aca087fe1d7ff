package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
)

var parseJobCmd = &cobra.Command{
	Use:   "parse-job",
	Short: "Extract structured entities from a job description file",
	Long: `Reads a job description file, extracts its text, and parses it into required
skills and keywords with canonical skill names. Use ingest-job first to turn a
job posting URL into a text file.`,
	RunE: runParseJob,
}

var (
	parseJobConfigPath string
	parseJobIn         string
	parseJobOut        string
	parseJobMode       string
	parseJobVerbose    bool
)

func init() {
	parseJobCmd.Flags().StringVar(&parseJobConfigPath, "config", "", "Path to config.json (flags override file values)")
	parseJobCmd.Flags().StringVarP(&parseJobIn, "in", "i", "", "Path to job description file (required)")
	parseJobCmd.Flags().StringVarP(&parseJobOut, "out", "o", "", "Write parsed document JSON to this file (prints to stdout when omitted)")
	parseJobCmd.Flags().StringVar(&parseJobMode, "mode", "", "Extraction mode: local-only, remote-only, or blended")
	parseJobCmd.Flags().BoolVarP(&parseJobVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = parseJobCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseJobCmd)
}

func runParseJob(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(parseJobConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mode") {
		cfg.ParseMode = config.ParseMode(parseJobMode)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = parseJobVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogJSON, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	text, _, err := ingestion.IngestFromFile(parseJobIn)
	if err != nil {
		return fmt.Errorf("failed to ingest job description: %w", err)
	}

	parser := parsing.NewParser(ctx, &cfg, logger)
	defer func() { _ = parser.Close() }()

	doc := parser.Parse(ctx, text, parsing.DocKindJob)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintParsedDocument("Job", doc)
	}

	if parseJobOut == "" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal parsed document: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", data)
		return nil
	}

	if err := writeJSON(parseJobOut, doc); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Successfully parsed job description (%d skills, %d keywords)\n",
		len(doc.Skills), len(doc.Keywords))
	fmt.Fprintf(os.Stdout, "Output written to: %s\n", parseJobOut)

	return nil
}
