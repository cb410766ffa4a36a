package ai

import (
	"context"
	"sync"

	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// DefaultCacheSize is the number of vectors kept by a CachedEmbedder.
const DefaultCacheSize = 4096

// Ensure CachedEmbedder implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedder)(nil)

// CachedEmbedder memoises vectors by text for the lifetime of the process.
// Repeated texts within a session always map to the same vector, even when
// the backend is not deterministic. Returned vectors are shared and must
// not be modified.
type CachedEmbedder struct {
	inner driven.EmbeddingService
	limit int

	mu      sync.Mutex
	vectors map[string][]float32
	order   []string
}

// NewCachedEmbedder wraps inner with a cache of at most limit vectors.
// When full, the oldest entries are evicted first.
func NewCachedEmbedder(inner driven.EmbeddingService, limit int) *CachedEmbedder {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &CachedEmbedder{
		inner:   inner,
		limit:   limit,
		vectors: make(map[string][]float32),
	}
}

// Embed returns the cached vector for text or asks the backend.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch sends only uncached texts to the backend.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	seen := make(map[string]int)

	c.mu.Lock()
	for i, text := range texts {
		if v, ok := c.vectors[text]; ok {
			out[i] = v
			continue
		}
		if _, dup := seen[text]; !dup {
			seen[text] = len(missing)
			missing = append(missing, text)
		}
		missingIdx = append(missingIdx, i)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for j, text := range missing {
		c.storeLocked(text, fresh[j])
	}
	c.mu.Unlock()

	for _, i := range missingIdx {
		out[i] = fresh[seen[texts[i]]]
	}
	return out, nil
}

func (c *CachedEmbedder) storeLocked(text string, vector []float32) {
	if _, ok := c.vectors[text]; ok {
		return
	}
	for len(c.order) >= c.limit {
		delete(c.vectors, c.order[0])
		c.order = c.order[1:]
	}
	c.vectors[text] = vector
	c.order = append(c.order, text)
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}

// Dimensions returns the backend vector size.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// ModelName returns the backend model name.
func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }

// Ping checks the backend.
func (c *CachedEmbedder) Ping(ctx context.Context) error { return c.inner.Ping(ctx) }

// Close releases the backend.
func (c *CachedEmbedder) Close() error { return c.inner.Close() }
