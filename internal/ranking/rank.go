package ranking

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/types"
)

// maxRemoteRescore bounds how many of the top-ranked jobs are re-scored
// remotely. Re-scoring the tail would spend model calls on jobs that cannot
// reach the top anyway.
const maxRemoteRescore = 10

// RankJobs scores every job against one resume and returns matches sorted by
// score descending (ties keep input order). Semantic similarity for the whole
// feed comes from a single batched engine call; when remote match scoring is
// enabled, only the provisional top jobs are re-scored before the final sort.
func (s *Scorer) RankJobs(ctx context.Context, resume *types.ParsedDocument, jobs []types.JobRecord) []types.JobMatch {
	matches := make([]types.JobMatch, 0, len(jobs))
	if len(jobs) == 0 {
		return matches
	}

	query := resume.SkillsQuery()
	semanticByID := s.batchSemantic(ctx, query, jobs)

	// Index jobs by position so the remote pass can recover the record
	// behind a match after sorting.
	jobIndex := make(map[string]int, len(jobs))
	locals := make(map[string]types.MatchResult, len(jobs))
	for i, job := range jobs {
		jobIndex[job.ID] = i
		semantic, ok := semanticByID[job.ID]
		if !ok {
			// The batch dropped this job (duplicate ID or engine
			// truncation); score it on its own.
			semantic = s.Semantic(ctx, query, job.ID, job.Text())
		}
		result := s.compose(Coverage(resume.Skills, job.Skills()), semantic)
		locals[job.ID] = result
		matches = append(matches, types.JobMatch{
			JobID:    job.ID,
			Title:    job.Title,
			Score:    result.Score,
			Feedback: result.Feedback,
			ApplyURL: job.ApplyURL,
		})
	}

	sortMatchesDesc(matches)

	if s.useRemote {
		rescored := 0
		limit := maxRemoteRescore
		if limit > len(matches) {
			limit = len(matches)
		}
		for i := 0; i < limit; i++ {
			select {
			case <-ctx.Done():
				s.logger.Warn("remote re-scoring interrupted",
					zap.Int("rescored", rescored),
					zap.Error(ctx.Err()))
				sortMatchesDesc(matches)
				return matches
			default:
			}
			job := jobs[jobIndex[matches[i].JobID]]
			blended := s.applyRemote(ctx, resume, &job, locals[matches[i].JobID])
			if blended.RemoteScored {
				matches[i].Score = blended.Score
				matches[i].Feedback = blended.Feedback
				rescored++
			}
		}
		if rescored > 0 {
			sortMatchesDesc(matches)
		}
		s.logger.Debug("remote re-scoring complete", zap.Int("rescored", rescored))
	}

	return matches
}

// ScreenApplicants scores every parsed applicant resume against one job and
// returns matches sorted by score descending (ties keep input order).
func (s *Scorer) ScreenApplicants(ctx context.Context, applicants []Applicant, job *types.JobRecord) []types.ApplicantMatch {
	matches := make([]types.ApplicantMatch, 0, len(applicants))
	for _, applicant := range applicants {
		doc := applicant.Doc
		if doc == nil {
			doc = types.NewParsedDocument()
		}
		result := s.Score(ctx, doc, job)
		matches = append(matches, types.ApplicantMatch{
			ApplicantID: applicant.ID,
			ResumePath:  applicant.ResumePath,
			Score:       result.Score,
			Feedback:    result.Feedback,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Applicant pairs a parsed resume with its identity for screening.
type Applicant struct {
	ID         string
	ResumePath string
	Doc        *types.ParsedDocument
}

// batchSemantic ranks all job texts against the query in one engine call and
// returns similarity keyed by job ID.
func (s *Scorer) batchSemantic(ctx context.Context, query string, jobs []types.JobRecord) map[string]float64 {
	docs := make([]embedding.Document, len(jobs))
	for i, job := range jobs {
		docs[i] = embedding.Document{ID: job.ID, Text: job.Text()}
	}
	items := s.engine.BestMatches(ctx, query, docs, len(jobs))
	semanticByID := make(map[string]float64, len(items))
	for _, item := range items {
		semanticByID[item.ID] = item.Score
	}
	return semanticByID
}

func sortMatchesDesc(matches []types.JobMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
