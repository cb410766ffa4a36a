package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.Engine = (*Engine)(nil)

// Ensure EngineBuilder implements the interface.
var _ driving.EngineFactory = (*EngineBuilder)(nil)

// Engine binds the indexing and query pipelines to one configuration.
type Engine struct {
	cfg      domain.EngineConfig
	indexer  *IndexService
	queries  *QueryService
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService

	closeOnce sync.Once
	closeErr  error
}

// Reindex rebuilds the vector index from the workspace.
func (e *Engine) Reindex(ctx context.Context) (*domain.IndexReport, error) {
	return e.indexer.Reindex(ctx)
}

// AnswerQuestion answers a question using the configured number of chunks.
func (e *Engine) AnswerQuestion(ctx context.Context, question string) (*domain.QueryResult, error) {
	return e.queries.AnswerQuestion(ctx, question)
}

// Answer answers a question using k chunks. k <= 0 uses the configured default.
func (e *Engine) Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	return e.queries.Answer(ctx, question, k)
}

// Status reports whether an index is available and how it was built.
func (e *Engine) Status(ctx context.Context) (*domain.IndexStatus, error) {
	status := &domain.IndexStatus{Config: e.cfg}
	if !e.index.Exists(ctx) {
		return status, nil
	}
	manifest, err := e.index.Manifest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			return status, nil
		}
		return nil, err
	}
	status.Ready = true
	status.Manifest = manifest
	return status, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() domain.EngineConfig {
	return e.cfg
}

// Close releases the index connection and model clients.
// Closing twice is a no-op.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		var errs []error
		if e.index != nil {
			errs = append(errs, e.index.Close())
		}
		if e.embedder != nil {
			errs = append(errs, e.embedder.Close())
		}
		if e.llm != nil {
			errs = append(errs, e.llm.Close())
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}

// EngineDeps holds the constructors an EngineBuilder wires together.
// They are injected so the core never imports concrete adapters.
type EngineDeps struct {
	// NewEmbedder creates the embedding backend for a configuration.
	NewEmbedder func(cfg domain.EngineConfig) (driven.EmbeddingService, error)

	// NewLLM creates the answer model for a configuration.
	// A domain.ErrMissingCredential result is deferred until a question is asked.
	NewLLM func(cfg domain.EngineConfig) (driven.LLMService, error)

	// OpenIndex attaches to the vector index in a directory.
	OpenIndex driven.VectorIndexOpener

	// Loaders maps file extensions to format loaders.
	Loaders driven.LoaderRegistry

	// NewPipeline builds the chunking pipeline.
	NewPipeline func(cfg domain.PipelineConfig) (driven.PostProcessorPipeline, error)

	// Prompts supplies the answer templates. Optional.
	Prompts driven.PromptStore
}

// EngineBuilder builds engines from configuration.
type EngineBuilder struct {
	deps EngineDeps
}

// NewEngineBuilder creates an engine builder.
func NewEngineBuilder(deps EngineDeps) *EngineBuilder {
	return &EngineBuilder{deps: deps}
}

// Build creates an engine for cfg. Every engine owns a fresh index connection.
func (b *EngineBuilder) Build(_ context.Context, cfg domain.EngineConfig) (driving.Engine, error) {
	return b.BuildEngine(cfg)
}

// BuildEngine is Build returning the concrete engine.
func (b *EngineBuilder) BuildEngine(cfg domain.EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.deps.NewEmbedder == nil || b.deps.NewLLM == nil || b.deps.OpenIndex == nil ||
		b.deps.Loaders == nil || b.deps.NewPipeline == nil {
		return nil, fmt.Errorf("%w: engine dependencies are incomplete", domain.ErrConfiguration)
	}

	logger.Section("Engine")
	logger.Debug("Provider: %s, workspace: %s, index: %s", cfg.Provider, cfg.WorkspaceDir, cfg.IndexDir)

	pipeline, err := b.deps.NewPipeline(cfg.PipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: build pipeline: %w", domain.ErrConfiguration, err)
	}

	embedder, err := b.deps.NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	llm, llmErr := b.deps.NewLLM(cfg)
	if llmErr != nil {
		if !errors.Is(llmErr, domain.ErrMissingCredential) {
			_ = embedder.Close()
			return nil, llmErr
		}
		logger.Debug("Answer model unavailable: %v", llmErr)
		llm = nil
	}

	index, err := b.deps.OpenIndex(cfg.IndexDir)
	if err != nil {
		_ = embedder.Close()
		if llm != nil {
			_ = llm.Close()
		}
		return nil, err
	}

	swapMu := &sync.RWMutex{}

	loader := NewDocumentLoader(b.deps.Loaders,
		WithExclude(cfg.Exclude),
		WithRecursive(cfg.Recursive),
		WithIndexDir(cfg.IndexDir),
	)
	indexer := NewIndexService(loader, pipeline, embedder, index, IndexServiceConfig{
		Workspace: cfg.WorkspaceDir,
		BatchSize: cfg.EmbedBatchSize,
		Workers:   cfg.EmbedWorkers,
		Timeout:   cfg.RequestTimeout,
	}, swapMu)

	composer := NewAnswerComposer(llm, llmErr, cfg.RequestTimeout)
	if b.deps.Prompts != nil {
		composer.SetPromptStore(b.deps.Prompts)
	}
	retriever := NewRetriever(embedder, index, cfg.TopK, cfg.RequestTimeout)

	return &Engine{
		cfg:      cfg,
		indexer:  indexer,
		queries:  NewQueryService(retriever, composer, swapMu),
		index:    index,
		embedder: embedder,
		llm:      llm,
	}, nil
}
