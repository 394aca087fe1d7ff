package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/resume-matcher/internal/types"
)

func TestPrintParsedDocument(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	doc := &types.ParsedDocument{
		Skills:     []string{"python", "sql", "docker", "aws", "linux", "git", "react"},
		Experience: []string{"5 years backend development"},
		Education:  []string{"bachelor of science"},
		Keywords:   []string{"backend", "api"},
	}
	printer.PrintParsedDocument("parsed resume", doc)

	out := buf.String()
	assert.Contains(t, out, "PARSED RESUME")
	assert.Contains(t, out, "python")
	assert.Contains(t, out, "... and 2 more")
	assert.Contains(t, out, "bachelor of science")
	assert.Contains(t, out, "backend, api")
}

func TestPrintParsedDocument_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintParsedDocument("resume", nil)
	assert.Empty(t, buf.String())
}

func TestPrintJobMatches(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	matches := []types.JobMatch{
		{JobID: "0", Title: "Backend Engineer", Score: 82, Feedback: "Covers 66% JD skills; semantic 70%."},
		{JobID: "1", Title: "Data Analyst", Score: 41, Feedback: "Covers 20% JD skills; semantic 55%."},
	}
	printer.PrintJobMatches(matches)

	out := buf.String()
	assert.Contains(t, out, "RANKED JOB MATCHES")
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Score: 82")
	assert.Contains(t, out, "Total jobs matched: 2")
}

func TestPrintSkillGap_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkillGap(nil)
	assert.Contains(t, buf.String(), "No missing skills detected.")
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("abc", 10))
	assert.Equal(t, "abcde...", TruncateForLog("abcdefghij", 5))
	assert.Equal(t, "", TruncateForLog("abc", 0))
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 10))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(false, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	jsonLogger, err := NewLogger(true, false)
	require.NoError(t, err)
	require.NotNil(t, jsonLogger)
	assert.False(t, jsonLogger.Core().Enabled(zapcore.DebugLevel))
}
