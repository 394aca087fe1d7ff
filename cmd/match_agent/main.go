// Package main provides the entry point for the resume matching agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "match_agent",
	Short: "Resume-to-job matching and course recommendation agent",
	Long: `match_agent ranks job postings against a resume, screens applicant resumes
against a job posting, measures skill gaps, and recommends courses to close them.

Scores blend canonical skill coverage with semantic similarity. Remote services
(embeddings, reranker, generative scoring, course providers) are all optional:
when one is unreachable the agent degrades to local heuristics and keeps going.`,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
