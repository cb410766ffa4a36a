package driven

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// PostProcessor is one stage of the chunking pipeline. The first stage is
// handed nil chunks and splits the document's segments; later stages
// receive the previous stage's output and may filter or rewrite it.
type PostProcessor interface {
	// Name identifies the stage in pipeline configuration and errors.
	Name() string

	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a loaded document into indexable chunks.
type PostProcessorPipeline interface {
	// Process returns the document's chunks in ascending position order.
	// Blank chunks are never returned.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
