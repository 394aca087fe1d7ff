package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/types"
)

// resolveConfig builds the effective configuration for a command: defaults,
// then the optional --config file, then environment overrides. Flag overrides
// are applied by each command afterwards, so flags win over everything.
func resolveConfig(path string) (config.Config, error) {
	if path == "" {
		return config.FromEnv(), nil
	}
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := *loaded
	cfg.ApplyEnv()
	return cfg, nil
}

// buildServices wires the shared service bundle for a command run. The
// returned cleanup closes the parser and any remote clients.
func buildServices(ctx context.Context, cfg *config.Config) (*pipeline.Services, func(), error) {
	logger, err := observability.NewLogger(cfg.LogJSON, cfg.Verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	svc := pipeline.NewServices(ctx, cfg, logger)
	cleanup := func() {
		_ = svc.Close()
		_ = logger.Sync()
	}
	return svc, cleanup, nil
}

// findJob locates a job record by ID in a loaded feed.
func findJob(jobs []types.JobRecord, id string) (*types.JobRecord, error) {
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job %q not found in feed (%d jobs loaded)", id, len(jobs))
}

// writeJSON writes v as indented JSON, creating parent directories as needed.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// printMatchLines renders ranked job matches as a compact numbered list.
func printMatchLines(w io.Writer, matches []types.JobMatch) {
	for i, m := range matches {
		fmt.Fprintf(w, "%2d. %s (score %d)\n", i+1, m.Title, m.Score)
		if m.Feedback != "" {
			fmt.Fprintf(w, "      %s\n", m.Feedback)
		}
	}
}
