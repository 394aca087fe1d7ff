package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand_EndToEnd(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tmpDir := t.TempDir()
	resumePath := filepath.Join(tmpDir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Skills: Go, Python\n"), 0o644))
	jobsPath := filepath.Join(tmpDir, "jobs.csv")
	// The resume covers the whole feed, so the guidance branch has no gap and
	// never reaches out to the course provider.
	feed := "title,description,skills,deadline,apply_url,hr_id\n" +
		"Backend Engineer,Build Go and Python services,\"go, python\",2026-10-15,https://jobs.example/backend,hr-2\n"
	require.NoError(t, os.WriteFile(jobsPath, []byte(feed), 0o644))
	outDir := filepath.Join(tmpDir, "reports")

	cmd := exec.Command(binaryPath, "run", "--resume", resumePath, "--jobs", jobsPath, "--out", outDir)
	cmd.Dir = tmpDir
	cmd.Env = offlineEnv()
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	got := string(output)
	assert.Contains(t, got, "Done! Matched 1 jobs for resume.txt.")
	assert.Contains(t, got, "Backend Engineer (score")

	reports, err := filepath.Glob(filepath.Join(outDir, "report_*.json"))
	require.NoError(t, err)
	require.Len(t, reports, 1)
}

func TestRunCommand_FlagValidation(t *testing.T) {
	binaryPath := getBinaryPath(t)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --resume",
			args:        []string{"run", "--jobs", "jobs.csv"},
			errorString: "required",
		},
		{
			name:        "Missing --jobs",
			args:        []string{"run", "--resume", "resume.txt"},
			errorString: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			cmd.Dir = t.TempDir()
			cmd.Env = offlineEnv()
			output, err := cmd.CombinedOutput()

			assert.Error(t, err)
			assert.Contains(t, string(output), tt.errorString)
		})
	}
}
