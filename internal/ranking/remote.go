package ranking

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/prompts"
	"github.com/jonathan/resume-matcher/internal/schemas"
)

// maxAssessChars caps how much of each document is sent to the model. Resume
// and job text beyond this adds tokens without changing the assessment.
const maxAssessChars = 4000

// RemoteScorer asks a generative model for match assessments and skill-gap
// analyses. Responses are schema-validated before use; anything off-schema is
// an error so callers fall back to their local signal.
type RemoteScorer struct {
	client llm.Client
	logger *zap.Logger
}

// NewRemoteScorer wraps an LLM client for generative scoring.
func NewRemoteScorer(client llm.Client, logger *zap.Logger) *RemoteScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteScorer{client: client, logger: logger}
}

// matchAssessment mirrors the JSON contract of the score-resume-job prompt.
type matchAssessment struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// skillGapResponse mirrors the JSON contract of the skill-gap prompt.
type skillGapResponse struct {
	MissingSkills []string `json:"missing_skills"`
}

// Assess scores a resume against a job description, returning a 0-100 score
// and a short feedback line (possibly empty).
func (r *RemoteScorer) Assess(ctx context.Context, resumeText, jobText string) (float64, string, error) {
	template := prompts.MustGet("matching.json", "score-resume-job")
	prompt := prompts.Format(template, map[string]string{
		"Resume": truncateText(resumeText, maxAssessChars),
		"Job":    truncateText(jobText, maxAssessChars),
	})

	content, err := r.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, "", fmt.Errorf("remote match assessment failed: %w", err)
	}

	cleaned := llm.CleanJSONBlock(content)
	if err := schemas.Validate(schemas.MatchAssessment, cleaned); err != nil {
		return 0, "", fmt.Errorf("match assessment response off-schema: %w", err)
	}

	var assessment matchAssessment
	if err := json.Unmarshal([]byte(cleaned), &assessment); err != nil {
		return 0, "", fmt.Errorf("failed to parse match assessment (content: %s): %w", cleaned, err)
	}

	score := assessment.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	r.logger.Debug("remote match assessment",
		zap.Float64("score", score),
		zap.Bool("has_feedback", assessment.Feedback != ""))

	return score, assessment.Feedback, nil
}

// SkillGap asks the model which of the job's skills the resume lacks. The
// returned list is canonicalized; an off-schema or failed response is an
// error and the caller should fall back to the local set difference.
func (r *RemoteScorer) SkillGap(ctx context.Context, resumeSkills, jobSkills []string) ([]string, error) {
	template := prompts.MustGet("matching.json", "skill-gap")
	prompt := prompts.Format(template, map[string]string{
		"ResumeSkills": joinSkills(resumeSkills),
		"JobSkills":    joinSkills(jobSkills),
	})

	content, err := r.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("remote skill gap analysis failed: %w", err)
	}

	cleaned := llm.CleanJSONBlock(content)
	if err := schemas.Validate(schemas.SkillGap, cleaned); err != nil {
		return nil, fmt.Errorf("skill gap response off-schema: %w", err)
	}

	var gap skillGapResponse
	if err := json.Unmarshal([]byte(cleaned), &gap); err != nil {
		return nil, fmt.Errorf("failed to parse skill gap (content: %s): %w", cleaned, err)
	}

	return parsing.NormalizeSkills(gap.MissingSkills), nil
}

func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

func joinSkills(skills []string) string {
	out := ""
	for _, skill := range parsing.NormalizeSkills(skills) {
		if out != "" {
			out += ", "
		}
		out += skill
	}
	return out
}
