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

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Extract structured entities from a resume file",
	Long: `Reads a resume (txt, md, pdf, docx, doc, odt, rtf, html), extracts its text,
and parses it into skills, experience, and education entries with canonical
skill names.

The extraction mode follows the configuration: local heuristics by default,
the generative extractor when an API key is configured, or both blended.`,
	RunE: runParseResume,
}

var (
	parseResumeConfigPath string
	parseResumeIn         string
	parseResumeOut        string
	parseResumeMode       string
	parseResumeVerbose    bool
)

func init() {
	parseResumeCmd.Flags().StringVar(&parseResumeConfigPath, "config", "", "Path to config.json (flags override file values)")
	parseResumeCmd.Flags().StringVarP(&parseResumeIn, "in", "i", "", "Path to resume file (required)")
	parseResumeCmd.Flags().StringVarP(&parseResumeOut, "out", "o", "", "Write parsed document JSON to this file (prints to stdout when omitted)")
	parseResumeCmd.Flags().StringVar(&parseResumeMode, "mode", "", "Extraction mode: local-only, remote-only, or blended")
	parseResumeCmd.Flags().BoolVarP(&parseResumeVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = parseResumeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(parseResumeConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mode") {
		cfg.ParseMode = config.ParseMode(parseResumeMode)
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = parseResumeVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogJSON, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	text, _, err := ingestion.IngestFromFile(parseResumeIn)
	if err != nil {
		return fmt.Errorf("failed to ingest resume: %w", err)
	}

	parser := parsing.NewParser(ctx, &cfg, logger)
	defer func() { _ = parser.Close() }()

	doc := parser.Parse(ctx, text, parsing.DocKindResume)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintParsedDocument("Resume", doc)
	}

	if parseResumeOut == "" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal parsed document: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", data)
		return nil
	}

	if err := writeJSON(parseResumeOut, doc); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Successfully parsed resume (%d skills, %d experience, %d education)\n",
		len(doc.Skills), len(doc.Experience), len(doc.Education))
	fmt.Fprintf(os.Stdout, "Output written to: %s\n", parseResumeOut)

	return nil
}
