package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/courses"
	"github.com/jonathan/resume-matcher/internal/embedding"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/ranking"
)

// Services bundles the long-lived components a matching run needs: the
// entity parser, the similarity engine, the scorer and the course fetcher.
// One bundle serves any number of operations. Construction never fails; a
// missing credential or unreachable service only narrows what runs remotely.
type Services struct {
	Parser  *parsing.Parser
	Engine  *embedding.Engine
	Scorer  *ranking.Scorer
	Fetcher *courses.Fetcher
	Store   *cache.Store
	Logger  *zap.Logger

	client llm.Client
}

// NewServices wires the component graph from configuration.
func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &Services{Logger: logger}
	svc.Parser = parsing.NewParser(ctx, cfg, logger)
	svc.Engine = embedding.NewEngine(embedding.Config{
		URL:            cfg.EmbeddingsURL,
		Model:          cfg.EmbeddingsModel,
		PreselectFloor: cfg.RerankPreselect,
		UseReranker:    cfg.UseReranker,
		RerankURL:      cfg.RerankURL,
		RerankerModel:  cfg.RerankerModel,
		Timeout:        cfg.RemoteTimeout,
	}, logger)

	var remote *ranking.RemoteScorer
	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
		if err != nil {
			logger.Warn("LLM client unavailable; match scoring stays local",
				zap.Error(err))
		} else {
			svc.client = client
			remote = ranking.NewRemoteScorer(client, logger)
		}
	}
	svc.Scorer = ranking.NewScorer(svc.Engine, ranking.Options{
		CoverageWeight:    cfg.CoverageWeight,
		RemoteBlendWeight: cfg.RemoteBlendWeight,
		UseRemoteMatch:    cfg.UseRemoteMatch,
		Remote:            remote,
		Logger:            logger,
	})

	if cfg.CacheDir != "" {
		svc.Store = cache.NewStore(cfg.CacheDir)
	}
	svc.Fetcher = courses.NewFetcher(courses.FetchOptions{
		Store:   svc.Store,
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	})

	return svc
}

// Recommender builds a course recommender over the given catalog file. The
// fetcher, engine and logger come from the bundle; only the catalog path
// varies per run.
func (s *Services) Recommender(catalogPath string) *courses.Recommender {
	return courses.NewRecommender(catalogPath, s.Fetcher, s.Engine, s.Logger)
}

// Close releases the remote clients held by the bundle.
func (s *Services) Close() error {
	err := s.Parser.Close()
	if s.client != nil {
		if cerr := s.client.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
