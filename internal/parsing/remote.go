package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/types"
)

// maxPromptChars caps how much document text is sent to the model. Long
// documents carry their signal up front; tails are boilerplate.
const maxPromptChars = 4000

// parseCacheKind namespaces extraction results in the cache store.
const parseCacheKind = "parse"

// RemoteExtractor extracts entities with an LLM. Results are cached by
// document kind and text, so repeat parses of the same input never reach
// the API.
type RemoteExtractor struct {
	client llm.Client
	store  *cache.Store
	logger *zap.Logger
}

// NewRemoteExtractor wires an extractor over client. store may be nil to
// disable caching; logger may be nil for silence.
func NewRemoteExtractor(client llm.Client, store *cache.Store, logger *zap.Logger) *RemoteExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteExtractor{client: client, store: store, logger: logger}
}

// Extract sends text to the model and decodes the structured response. On
// any failure it returns the canonical empty document alongside the error,
// so callers that ignore the error still hold a safe value.
func (e *RemoteExtractor) Extract(ctx context.Context, text string, kind DocKind) (*types.ParsedDocument, error) {
	empty := types.NewParsedDocument()
	if strings.TrimSpace(text) == "" {
		return empty, nil
	}

	key := cache.Key(string(kind), text)
	if e.store != nil {
		var doc types.ParsedDocument
		if e.store.Get(parseCacheKind, key, &doc) {
			doc.Normalize()
			doc.RawText = text
			e.logger.Debug("extraction cache hit", zap.String("kind", string(kind)))
			return &doc, nil
		}
	}

	truncated := text
	if len(truncated) > maxPromptChars {
		truncated = truncated[:maxPromptChars]
	}
	prompt := llm.BuildExtractionPrompt(llm.DocumentEntitiesSchema(string(kind)), truncated)

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return empty, &APICallError{Message: "entity extraction", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	if verr := schemas.Validate(schemas.ParsedDocument, cleaned); verr != nil {
		// Diagnostic only: coercion below tolerates shape drift.
		e.logger.Debug("extraction response off-schema", zap.Error(verr))
	}

	doc, err := decodeEntityResponse(cleaned)
	if err != nil {
		e.logger.Warn("undecodable extraction response",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return empty, err
	}

	if e.store != nil {
		// Cache entities only; RawText would duplicate the input on disk.
		if perr := e.store.Put(parseCacheKind, key, doc); perr != nil {
			e.logger.Warn("extraction cache write failed", zap.Error(perr))
		}
	}
	doc.RawText = text
	return doc, nil
}

// decodeEntityResponse turns a cleaned model response into a document.
// Each entity field is coerced independently: a missing key or a non-list
// value yields an empty list rather than failing the whole response.
func decodeEntityResponse(cleaned string) (*types.ParsedDocument, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &ParseError{Message: "invalid JSON in extraction response", Cause: err}
	}

	doc := types.NewParsedDocument()
	doc.Skills = NormalizeSkills(coerceStringList(payload["skills"]))
	doc.Experience = coerceStringList(payload["experience"])
	doc.Education = coerceStringList(payload["education"])
	doc.Keywords = coerceStringList(payload["keywords"])
	return doc, nil
}

// coerceStringList converts a decoded JSON value to a string slice. Any
// value that is not a list becomes an empty list; non-string elements and
// blank strings are dropped.
func coerceStringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
