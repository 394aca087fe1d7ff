package embedding

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/rerank"
	"github.com/jonathan/resume-matcher/internal/types"
)

// defaultModels is the fallback chain tried after any configured model.
var defaultModels = []string{
	"BAAI/bge-base-en-v1.5",
	"all-MiniLM-L6-v2",
}

const (
	defaultPreselect = 50
	maxWarmupTexts   = 16
)

// Document is one ranking candidate.
type Document struct {
	ID   string
	Text string
}

// Config wires an Engine. Empty URL fields disable the corresponding phase.
type Config struct {
	// URL is the base of an OpenAI-compatible embeddings server. Empty
	// means no embedding service; every ranking uses the lexical fallback.
	URL string
	// Model is the preferred embedding model, tried before the built-in
	// candidate list.
	Model string
	// APIKey authenticates against managed embedding endpoints. Optional.
	APIKey string
	// PreselectFloor is the minimum shortlist width handed to the
	// reranker. Defaults to 50.
	PreselectFloor int
	// UseReranker enables the cross-encoder phase when RerankURL is set.
	UseReranker bool
	// RerankURL is the base of a rerank server. Empty disables reranking.
	RerankURL string
	// RerankerModel names the cross-encoder, for logging.
	RerankerModel string
	// Timeout bounds each HTTP call. Defaults to 30s.
	Timeout time.Duration
}

type loadState int

const (
	loadNotAttempted loadState = iota
	loadSucceeded
	loadFailed
)

// Engine ranks candidate texts against a query. The embedder and reranker
// are loaded lazily, at most once per Engine: a failed load is remembered
// and never retried, so a process without inference services pays the probe
// cost once and runs on lexical similarity thereafter.
type Engine struct {
	cfg    Config
	client *Client
	logger *zap.Logger

	mu          sync.Mutex
	embedState  loadState
	model       string
	reranker    rerank.Reranker
	rerankState loadState
}

// NewEngine builds an Engine from cfg. Construction is cheap; all loading
// happens on first use.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PreselectFloor <= 0 {
		cfg.PreselectFloor = defaultPreselect
	}
	e := &Engine{cfg: cfg, logger: logger}
	if cfg.URL != "" {
		e.client = NewClient(cfg.URL, cfg.APIKey, cfg.Timeout)
	}
	if cfg.UseReranker && cfg.RerankURL != "" {
		e.reranker = rerank.NewHTTPReranker(cfg.RerankURL, cfg.RerankerModel, cfg.Timeout)
	}
	return e
}

// BestMatches ranks candidates against query and returns the top topK as
// RankedItems with scores in [0,1], sorted descending, ties in input order.
//
// Phase 1 embeds the query and every candidate in one batch and scores by
// normalized dot product; without a usable embedding model it scores by
// Jaccard token overlap instead. Phase 2 optionally reranks the preselected
// shortlist with a cross-encoder; any failure there keeps the Phase 1 order.
func (e *Engine) BestMatches(ctx context.Context, query string, candidates []Document, topK int) []types.RankedItem {
	if len(candidates) == 0 || topK <= 0 {
		return []types.RankedItem{}
	}

	preselect := topK
	if preselect < e.cfg.PreselectFloor {
		preselect = e.cfg.PreselectFloor
	}
	if preselect > len(candidates) {
		preselect = len(candidates)
	}

	items := e.coarseRank(ctx, query, candidates)
	items = items[:preselect]
	items = e.rerankShortlist(ctx, query, items)

	if topK > len(items) {
		topK = len(items)
	}
	return items[:topK]
}

// coarseRank scores every candidate and returns them sorted descending.
func (e *Engine) coarseRank(ctx context.Context, query string, candidates []Document) []types.RankedItem {
	items := make([]types.RankedItem, len(candidates))

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	for _, c := range candidates {
		texts = append(texts, c.Text)
	}

	if vecs, ok := e.embedBatch(ctx, texts); ok {
		qv := normalize(vecs[0])
		for i, c := range candidates {
			items[i] = types.RankedItem{
				ID:    c.ID,
				Text:  c.Text,
				Score: clamp01(dot(qv, normalize(vecs[i+1]))),
			}
		}
	} else {
		for i, c := range candidates {
			items[i] = types.RankedItem{ID: c.ID, Text: c.Text, Score: Jaccard(query, c.Text)}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items
}

// rerankShortlist rescores items with the cross-encoder, min-max rescaled to
// [0,1]. Shortlists under two items and any reranker failure keep the
// incoming order; a failure also permanently disables the reranker for this
// Engine.
func (e *Engine) rerankShortlist(ctx context.Context, query string, items []types.RankedItem) []types.RankedItem {
	if len(items) < 2 {
		return items
	}
	r := e.activeReranker()
	if r == nil {
		return items
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Text
	}
	raw, err := r.Rerank(ctx, query, texts)
	if err != nil || len(raw) != len(items) {
		e.disableReranker(err)
		return items
	}

	lo, hi := raw[0], raw[0]
	for _, s := range raw[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	den := hi - lo
	if den == 0 {
		den = 1
	}

	rescored := make([]types.RankedItem, len(items))
	copy(rescored, items)
	for i := range rescored {
		rescored[i].Score = (raw[i] - lo) / den
	}
	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].Score > rescored[j].Score
	})
	return rescored
}

// Warmup forces the embedder to load and encodes up to 16 of the given
// texts, returning how many were encoded. Returns 0 when no embedding model
// is available; used to pre-pay cold-start cost outside the request path.
func (e *Engine) Warmup(ctx context.Context, texts []string) int {
	if _, ok := e.ensureEmbedder(ctx); !ok {
		return 0
	}
	if len(texts) > maxWarmupTexts {
		texts = texts[:maxWarmupTexts]
	}
	if len(texts) == 0 {
		return 0
	}
	if _, ok := e.embedBatch(ctx, texts); !ok {
		return 0
	}
	return len(texts)
}

// embedBatch embeds texts with the loaded model. ok is false when no model
// is available or this batch failed; the caller falls back to lexical
// scoring for the batch.
func (e *Engine) embedBatch(ctx context.Context, texts []string) ([][]float32, bool) {
	model, ok := e.ensureEmbedder(ctx)
	if !ok {
		return nil, false
	}
	vecs, err := e.client.Embed(ctx, model, texts)
	if err != nil {
		e.logger.Warn("embedding batch failed; scoring batch lexically",
			zap.String("model", model),
			zap.Error(err))
		return nil, false
	}
	return vecs, true
}

// ensureEmbedder resolves the embedding model exactly once: candidates are
// probed in order and the first that responds is kept for the process
// lifetime. When every candidate fails the failure itself is kept, so later
// calls skip straight to the lexical fallback.
func (e *Engine) ensureEmbedder(ctx context.Context) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.embedState {
	case loadSucceeded:
		return e.model, true
	case loadFailed:
		return "", false
	}

	if e.client == nil {
		e.embedState = loadFailed
		e.logger.Debug("no embeddings endpoint configured; using lexical similarity")
		return "", false
	}

	for _, model := range e.candidateModels() {
		if _, err := e.client.Embed(ctx, model, []string{"warmup"}); err != nil {
			e.logger.Warn("embedding model unavailable",
				zap.String("model", model),
				zap.Error(err))
			continue
		}
		e.model = model
		e.embedState = loadSucceeded
		e.logger.Info("embedding model ready", zap.String("model", model))
		return model, true
	}

	e.embedState = loadFailed
	e.logger.Warn("no embedding model loadable; using lexical similarity")
	return "", false
}

func (e *Engine) candidateModels() []string {
	models := make([]string, 0, len(defaultModels)+1)
	if e.cfg.Model != "" {
		models = append(models, e.cfg.Model)
	}
	for _, m := range defaultModels {
		if m != e.cfg.Model {
			models = append(models, m)
		}
	}
	return models
}

func (e *Engine) activeReranker() rerank.Reranker {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reranker == nil || e.rerankState == loadFailed {
		return nil
	}
	return e.reranker
}

func (e *Engine) disableReranker(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rerankState == loadFailed {
		return
	}
	e.rerankState = loadFailed
	e.logger.Warn("reranker unavailable; keeping coarse ranking", zap.Error(err))
}

func normalize(v []float32) []float64 {
	out := make([]float64, len(v))
	var norm float64
	for i, x := range v {
		out[i] = float64(x)
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range out {
		out[i] /= norm
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
