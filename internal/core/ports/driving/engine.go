package driving

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// Engine is the assistant as seen by presentation layers.
// An engine is bound to one immutable configuration.
type Engine interface {
	// Reindex rebuilds the vector index from the workspace.
	// Concurrent calls fail fast with domain.ErrIndexingInProgress.
	Reindex(ctx context.Context) (*domain.IndexReport, error)

	// AnswerQuestion answers a question from the indexed documents.
	AnswerQuestion(ctx context.Context, question string) (*domain.QueryResult, error)

	// Status reports whether an index is available.
	Status(ctx context.Context) (*domain.IndexStatus, error)

	// Config returns the configuration the engine was built with.
	Config() domain.EngineConfig

	// Close releases the engine's resources.
	Close() error
}

// EngineFactory builds engines from configuration.
type EngineFactory interface {
	// Build creates an engine for the given configuration.
	Build(ctx context.Context, cfg domain.EngineConfig) (Engine, error)
}
