// Package rerank scores (query, document) pairs with a cross-encoder served
// over HTTP. Rerankers refine a coarse shortlist; callers fall back to their
// original ordering on any error.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultModel is the cross-encoder used when none is configured.
const DefaultModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"

// Reranker scores candidate texts against a query. Scores are raw model
// outputs; callers rescale. Results are positional: score i belongs to
// texts[i].
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
	ModelName() string
}

// HTTPReranker talks to a text-embeddings-inference style rerank endpoint:
// POST {base}/rerank with {"query","texts"} returning [{"index","score"}].
type HTTPReranker struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewHTTPReranker builds a reranker client. model is informational for this
// endpoint style (the served model is fixed server-side) and falls back to
// DefaultModel when empty.
func NewHTTPReranker(baseURL, model string, timeout time.Duration) *HTTPReranker {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPReranker{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rerank scores every text against query. The returned slice is aligned
// with texts; a response that does not cover every input is an error.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank API returned status: %d", resp.StatusCode)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	covered := 0
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(texts) {
			return nil, fmt.Errorf("rerank result index %d out of range", res.Index)
		}
		if !seen[res.Index] {
			seen[res.Index] = true
			covered++
		}
		scores[res.Index] = res.Score
	}
	if covered != len(texts) {
		return nil, fmt.Errorf("rerank response covered %d of %d texts", covered, len(texts))
	}
	return scores, nil
}

// ModelName returns the model identifier for logging.
func (r *HTTPReranker) ModelName() string {
	return r.model
}
