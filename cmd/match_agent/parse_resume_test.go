package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/types"
)

func TestParseResumeCommand_WritesArtifact(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	resumePath := filepath.Join(tmpDir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Jane Doe\n\nSkills: Go, Python\n"), 0o644))
	outPath := filepath.Join(tmpDir, "parsed.json")

	cmd := exec.Command(binaryPath, "parse-resume", "--in", resumePath, "--out", outPath)
	cmd.Dir = tmpDir
	cmd.Env = offlineEnv()
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	assert.Contains(t, string(output), "Successfully parsed resume")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc types.ParsedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc.Skills, "go")
	assert.Contains(t, doc.Skills, "python")
}

func TestParseResumeCommand_PrintsJSONWithoutOut(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	resumePath := filepath.Join(tmpDir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Skills: Go\n"), 0o644))

	cmd := exec.Command(binaryPath, "parse-resume", "--in", resumePath)
	cmd.Dir = tmpDir
	cmd.Env = offlineEnv()
	// Logs go to stderr, so stdout is exactly the document JSON.
	stdout, err := cmd.Output()
	require.NoError(t, err)

	var doc types.ParsedDocument
	require.NoError(t, json.Unmarshal(stdout, &doc), string(stdout))
	assert.Contains(t, doc.Skills, "go")
}

func TestParseResumeCommand_MissingInput(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "parse-resume")
	cmd.Dir = t.TempDir()
	cmd.Env = offlineEnv()
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required")
}
