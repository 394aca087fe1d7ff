// Package ranking scores parsed resumes against job descriptions and
// orchestrates batch matching: ranking job feeds for one candidate,
// screening applicant pools for one opening, and skill-gap analysis.
package ranking

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	// DefaultCoverageWeight is the share of the composite score carried by
	// skill coverage; the remainder is carried by semantic similarity.
	DefaultCoverageWeight = 0.65

	// DefaultRemoteBlendWeight is the share of the blended score carried by
	// the remote assessment when remote match scoring is enabled.
	DefaultRemoteBlendWeight = 0.4
)

// Coverage returns the fraction of the target's skills covered by the
// candidate, as set cardinality over canonical skill names. A target with no
// skills yields 0.0: an empty requirement carries no evidence of fit.
func Coverage(candidateSkills, targetSkills []string) float64 {
	target := parsing.NormalizeSkills(targetSkills)
	if len(target) == 0 {
		return 0.0
	}
	have := parsing.SkillSet(candidateSkills)
	matched := 0
	for _, skill := range target {
		if have[skill] {
			matched++
		}
	}
	return float64(matched) / float64(len(target))
}

// CompositeScore combines coverage and semantic similarity (both 0-1) into a
// 0-100 integer. When both signals are zero the score is exactly 0 rather
// than a rounding artifact.
func CompositeScore(coverage, semantic, coverageWeight float64) int {
	if coverage == 0 && semantic == 0 {
		return 0
	}
	score := int(math.Round(100 * (coverageWeight*coverage + (1-coverageWeight)*semantic)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Feedback renders the one-line explanation attached to every local match
// result. Percentages are truncated, not rounded, so the text never
// overstates either signal.
func Feedback(coverage, semantic float64) string {
	return fmt.Sprintf("Covers %d%% JD skills; semantic %d%%.", int(coverage*100), int(semantic*100))
}

// Scorer computes match results for resume/job pairs. Semantic similarity
// comes from the embedding engine (or its lexical fallback); an optional
// remote scorer refines results when a generative credential is configured.
type Scorer struct {
	engine    *embedding.Engine
	remote    *RemoteScorer
	useRemote bool
	w         float64
	blend     float64
	logger    *zap.Logger
}

// Options configures a Scorer. Zero-valued weights fall back to the package
// defaults, matching how the configuration layer fills unset fields.
type Options struct {
	// CoverageWeight is the coverage share of the composite score.
	CoverageWeight float64
	// RemoteBlendWeight is the remote share of the blended score.
	RemoteBlendWeight float64
	// UseRemoteMatch enables remote re-scoring of match results. Skill-gap
	// analysis uses the remote scorer whenever one is present, regardless
	// of this flag.
	UseRemoteMatch bool
	// Remote performs generative assessments; nil when no credential is
	// configured.
	Remote *RemoteScorer
	Logger *zap.Logger
}

// NewScorer builds a Scorer around the given embedding engine.
func NewScorer(engine *embedding.Engine, opts Options) *Scorer {
	w := opts.CoverageWeight
	if w == 0 {
		w = DefaultCoverageWeight
	}
	blend := opts.RemoteBlendWeight
	if blend == 0 {
		blend = DefaultRemoteBlendWeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		engine:    engine,
		remote:    opts.Remote,
		useRemote: opts.UseRemoteMatch && opts.Remote != nil,
		w:         w,
		blend:     blend,
		logger:    logger,
	}
}

// Score computes the match result for a single resume/job pair. When remote
// match scoring is enabled the local result is blended with the generative
// assessment; any remote failure leaves the local result untouched.
func (s *Scorer) Score(ctx context.Context, resume *types.ParsedDocument, job *types.JobRecord) types.MatchResult {
	coverage := Coverage(resume.Skills, job.Skills())
	semantic := s.Semantic(ctx, resume.SkillsQuery(), job.ID, job.Text())
	result := s.compose(coverage, semantic)
	if s.useRemote {
		result = s.applyRemote(ctx, resume, job, result)
	}
	return result
}

// Semantic returns the 0-1 semantic similarity between a query and a single
// target text, 0.0 when the engine returns nothing.
func (s *Scorer) Semantic(ctx context.Context, query, targetID, targetText string) float64 {
	items := s.engine.BestMatches(ctx, query, []embedding.Document{{ID: targetID, Text: targetText}}, 1)
	if len(items) == 0 {
		return 0.0
	}
	return items[0].Score
}

// compose assembles the local match result from the two signals. Both the
// single-pair and batch paths go through here so a job scores identically
// whichever way it arrives.
func (s *Scorer) compose(coverage, semantic float64) types.MatchResult {
	return types.MatchResult{
		Score:    CompositeScore(coverage, semantic, s.w),
		Feedback: Feedback(coverage, semantic),
		Coverage: coverage,
		Semantic: semantic,
	}
}

// applyRemote blends the remote assessment into a local result. The remote
// feedback replaces the local line when the model produced one.
func (s *Scorer) applyRemote(ctx context.Context, resume *types.ParsedDocument, job *types.JobRecord, local types.MatchResult) types.MatchResult {
	remoteScore, remoteFeedback, err := s.remote.Assess(ctx, resume.SkillsQuery(), job.Text())
	if err != nil {
		s.logger.Warn("remote match scoring failed; keeping local score",
			zap.String("job_id", job.ID),
			zap.Error(err))
		return local
	}
	blended := local
	blended.Score = clampScore(int(math.Round(s.blend*remoteScore + (1-s.blend)*float64(local.Score))))
	if remoteFeedback != "" {
		blended.Feedback = remoteFeedback
	}
	blended.RemoteScored = true
	return blended
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
