package ranking

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/parsing"
)

// LocalSkillGap returns the job's canonical skills absent from the resume, in
// the job's skill order. Always non-nil.
func LocalSkillGap(resumeSkills, jobSkills []string) []string {
	have := parsing.SkillSet(resumeSkills)
	missing := make([]string, 0)
	for _, skill := range parsing.NormalizeSkills(jobSkills) {
		if !have[skill] {
			missing = append(missing, skill)
		}
	}
	return missing
}

// SkillGap returns the skills the resume is missing for the job. When a
// remote scorer is present its judgment is preferred (it catches synonyms
// and transferable skills the set difference cannot); any remote failure
// falls back to the local set difference.
func (s *Scorer) SkillGap(ctx context.Context, resumeSkills, jobSkills []string) []string {
	if s.remote != nil {
		missing, err := s.remote.SkillGap(ctx, resumeSkills, jobSkills)
		if err == nil {
			return missing
		}
		s.logger.Warn("remote skill gap failed; using set difference", zap.Error(err))
	}
	return LocalSkillGap(resumeSkills, jobSkills)
}
