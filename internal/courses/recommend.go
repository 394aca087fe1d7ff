package courses

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Recommender serves course recommendations for a list of missing skills.
// With a fetcher configured it ranks external candidates semantically; the
// local CSV catalog covers the no-fetcher case and every fetch that comes
// back empty.
type Recommender struct {
	catalogPath string
	fetcher     *Fetcher
	engine      *embedding.Engine
	logger      *zap.Logger
}

// NewRecommender builds a Recommender. fetcher may be nil (catalog only);
// engine is required when a fetcher is set.
func NewRecommender(catalogPath string, fetcher *Fetcher, engine *embedding.Engine, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		catalogPath: catalogPath,
		fetcher:     fetcher,
		engine:      engine,
		logger:      logger,
	}
}

// Recommend returns up to topN courses for the given missing skills. External
// candidates are ranked against the joined skill query and scored 0-100;
// catalog recommendations are unscored.
func (r *Recommender) Recommend(ctx context.Context, skills []string, topN int) []types.Course {
	cleaned := cleanSkills(skills)
	if len(cleaned) == 0 {
		return []types.Course{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	if r.fetcher == nil || r.engine == nil {
		return r.RecommendLocal(cleaned, topN)
	}

	candidates := r.fetcher.Fetch(ctx, cleaned)
	if len(candidates) == 0 {
		r.logger.Debug("no external course candidates; using local catalog")
		return r.RecommendLocal(cleaned, topN)
	}

	return rankCourses(ctx, r.engine, cleaned, candidates, topN)
}

// RecommendLocal recommends from the CSV catalog only.
func (r *Recommender) RecommendLocal(skills []string, topN int) []types.Course {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return recommendFromCatalog(r.catalogPath, skills, topN, r.logger)
}

// rankCourses orders candidates by semantic similarity to the joined skill
// query and attaches 0-100 scores.
func rankCourses(ctx context.Context, engine *embedding.Engine, skills []string, candidates []types.Course, topN int) []types.Course {
	query := strings.Join(skills, " ")
	docs := make([]embedding.Document, len(candidates))
	for i, course := range candidates {
		docs[i] = embedding.Document{ID: strconv.Itoa(i), Text: course.CourseText()}
	}

	ranked := engine.BestMatches(ctx, query, docs, topN)
	picks := make([]types.Course, 0, len(ranked))
	for _, item := range ranked {
		i, err := strconv.Atoi(item.ID)
		if err != nil || i < 0 || i >= len(candidates) {
			continue
		}
		course := candidates[i]
		course.Score = int(math.Round(item.Score * 100))
		picks = append(picks, course)
	}
	return picks
}
