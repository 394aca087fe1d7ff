// Package parsing turns raw resume and job-description text into structured
// entities. Three strategies share one output shape: a vocabulary-driven
// local heuristic, a generative-text remote extractor, and a blend of the
// two. The local strategy is the floor every other strategy degrades to.
package parsing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/types"
)

// DocKind tells the extractor what sort of document it is reading. The
// value is interpolated into prompts and cache keys, so the two kinds never
// share either.
type DocKind string

const (
	DocKindResume DocKind = "resume"
	DocKindJob    DocKind = "job description"
)

// Extractor is a single entity-extraction strategy.
type Extractor interface {
	Extract(ctx context.Context, text string, kind DocKind) (*types.ParsedDocument, error)
}

// Parser is the entry point for entity extraction. It resolves the
// configured parse mode against credential presence, owns the LLM client
// for the remote path, and guarantees Parse never fails: every error path
// degrades to the local heuristic or, in remote-only mode, to the canonical
// empty document.
type Parser struct {
	mode    config.ParseMode
	local   *LocalExtractor
	remote  Extractor
	client  llm.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewParser builds a parser from configuration. A remote-capable mode
// without a working client degrades to local-only with a logged warning
// rather than an error; construction always succeeds.
func NewParser(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{
		mode:    cfg.ResolveParseMode(),
		local:   NewLocalExtractor(nil),
		timeout: cfg.RemoteTimeout,
		logger:  logger,
	}
	if p.mode == config.ParseModeLocal {
		return p
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		logger.Warn("LLM client unavailable; extraction degrades to local-only",
			zap.Error(err))
		p.mode = config.ParseModeLocal
		return p
	}
	p.client = client

	var store *cache.Store
	if cfg.CacheDir != "" {
		store = cache.NewStore(cfg.CacheDir)
	}
	p.remote = NewRemoteExtractor(client, store, logger)
	return p
}

// Mode reports the resolved extraction mode.
func (p *Parser) Mode() config.ParseMode {
	return p.mode
}

// Parse extracts entities from text. It never fails: remote errors fall
// back to the local result in blended mode and to the empty document in
// remote-only mode.
func (p *Parser) Parse(ctx context.Context, text string, kind DocKind) *types.ParsedDocument {
	switch p.mode {
	case config.ParseModeRemote:
		doc, err := p.remoteExtract(ctx, text, kind)
		if err != nil {
			p.logger.Warn("remote extraction failed",
				zap.String("kind", string(kind)),
				zap.Error(err))
			return types.NewParsedDocument()
		}
		return doc

	case config.ParseModeBlended:
		localDoc, _ := p.local.Extract(ctx, text, kind)
		remoteDoc, err := p.remoteExtract(ctx, text, kind)
		if err != nil {
			p.logger.Warn("remote extraction failed; keeping local result",
				zap.String("kind", string(kind)),
				zap.Error(err))
			return localDoc
		}
		return BlendDocuments(localDoc, remoteDoc)

	default:
		doc, _ := p.local.Extract(ctx, text, kind)
		return doc
	}
}

func (p *Parser) remoteExtract(ctx context.Context, text string, kind DocKind) (*types.ParsedDocument, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.remote.Extract(ctx, text, kind)
}

// Close releases the LLM client, if one was created.
func (p *Parser) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
