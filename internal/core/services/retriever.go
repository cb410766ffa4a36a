package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Retriever finds the chunks most similar to a query.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
	timeout  time.Duration
}

// NewRetriever creates a retriever. topK is the default number of chunks
// returned when a caller passes k <= 0.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, topK int, timeout time.Duration) *Retriever {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		timeout:  timeout,
	}
}

// Retrieve embeds query and returns up to k chunks by ascending distance.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		k = r.topK
	}

	if !r.index.Exists(ctx) {
		return nil, fmt.Errorf("%w: run a reindex first", domain.ErrIndexNotReady)
	}

	manifest, err := r.index.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if manifest.Model != "" && manifest.Model != r.embedder.ModelName() {
		return nil, fmt.Errorf("%w: index was built with %s but the embedder is %s, reindex to rebuild",
			domain.ErrIndexNotReady, manifest.Model, r.embedder.ModelName())
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vector, err := r.embedder.Embed(callCtx, query)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, fmt.Errorf("%w: embedding timed out: %w", domain.ErrProviderUnavailable, err)
		}
		return nil, err
	}

	hits, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		logger.Debug("Hit %s (distance %.4f)", hit.Entry.ID, hit.Distance)
		chunks = append(chunks, hit.Entry.Chunk)
	}
	return chunks, nil
}
