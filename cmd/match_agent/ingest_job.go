package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/ingestion"
)

var ingestJobCmd = &cobra.Command{
	Use:   "ingest-job",
	Short: "Ingest a job posting from a text file or URL",
	Long: `Ingest a job posting from either a text file or URL, clean the content, and
write cleaned text with metadata. URL fetches detect the job board platform
for content extraction and are served from the page cache on repeat runs.`,
	RunE: runIngestJob,
}

var (
	ingestJobConfigPath string
	ingestJobTextFile   string
	ingestJobURL        string
	ingestJobOut        string
	ingestJobBrowser    bool
	ingestJobVerbose    bool
)

func init() {
	ingestJobCmd.Flags().StringVar(&ingestJobConfigPath, "config", "", "Path to config.json (flags override file values)")
	ingestJobCmd.Flags().StringVarP(&ingestJobTextFile, "text-file", "t", "", "Path to text file containing job posting")
	ingestJobCmd.Flags().StringVarP(&ingestJobURL, "url", "u", "", "URL to fetch job posting from")
	ingestJobCmd.Flags().StringVarP(&ingestJobOut, "out", "o", "", "Output directory (required)")
	ingestJobCmd.Flags().BoolVar(&ingestJobBrowser, "browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	ingestJobCmd.Flags().BoolVarP(&ingestJobVerbose, "verbose", "v", false, "Print detailed progress information")

	_ = ingestJobCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(ingestJobCmd)
}

func runIngestJob(cmd *cobra.Command, _ []string) error {
	// Validate mutually exclusive flags
	if ingestJobTextFile == "" && ingestJobURL == "" {
		return fmt.Errorf("either --text-file or --url must be provided")
	}
	if ingestJobTextFile != "" && ingestJobURL != "" {
		return fmt.Errorf("--text-file and --url are mutually exclusive; provide only one")
	}

	cfg, err := resolveConfig(ingestJobConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("browser") {
		cfg.UseBrowser = ingestJobBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = ingestJobVerbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	var cleanedText string
	var metadata *ingestion.Metadata

	// Ingest from either text file or URL
	if ingestJobTextFile != "" {
		cleanedText, metadata, err = ingestion.IngestFromFile(ingestJobTextFile)
		if err != nil {
			return fmt.Errorf("failed to ingest from file: %w", err)
		}
	} else {
		var fetcher *fetch.CachedFetcher
		if cfg.CacheDir != "" {
			fetcherCfg := fetch.DefaultCachedFetcherConfig()
			fetcherCfg.CacheDir = cfg.CacheDir
			fetcher = fetch.NewCachedFetcher(fetcherCfg)
		}
		cleanedText, metadata, err = ingestion.IngestFromURL(ctx, ingestJobURL, fetcher, cfg.UseBrowser, cfg.Verbose)
		if err != nil {
			return fmt.Errorf("failed to ingest from URL: %w", err)
		}
	}

	// Write output files
	if err := ingestion.WriteOutput(ingestJobOut, "job_posting", cleanedText, metadata); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Successfully ingested job posting\n")
	fmt.Fprintf(os.Stdout, "Cleaned text: %s/job_posting.cleaned.txt\n", ingestJobOut)
	fmt.Fprintf(os.Stdout, "Metadata: %s/job_posting.meta.json\n", ingestJobOut)

	return nil
}
