package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// getBinaryPath returns the path to the match_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "match_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}

// offlineEnv returns the current environment with remote-service and scoring
// overrides cleared, so CLI tests run deterministic local scoring with no
// network access regardless of the developer's .env.
func offlineEnv() []string {
	blocked := []string{
		"GEMINI_API_KEY=",
		"EMBEDDINGS_URL=",
		"RERANK_URL=",
		"USE_REMOTE_MATCH=",
		"PARSE_MODE=",
		"CACHE_DIR=",
		"COVERAGE_WEIGHT=",
		"REMOTE_BLEND_WEIGHT=",
	}
	var env []string
	for _, kv := range os.Environ() {
		skip := false
		for _, prefix := range blocked {
			if strings.HasPrefix(kv, prefix) {
				skip = true
				break
			}
		}
		if !skip {
			env = append(env, kv)
		}
	}
	return env
}
