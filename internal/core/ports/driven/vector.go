package driven

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// VectorIndex persists chunks with their embeddings and answers exact
// nearest-neighbour queries by cosine distance.
type VectorIndex interface {
	// Replace atomically swaps the full contents of the index.
	// Readers observe either the previous or the new contents, never a mix.
	Replace(ctx context.Context, entries []domain.IndexEntry, manifest domain.IndexManifest) error

	// Upsert adds entries or replaces existing ones with the same chunk ID.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Query returns up to k hits ordered by ascending distance.
	// Ties are broken by insertion order. k larger than the index
	// returns every entry.
	Query(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// Lookup returns stored entries for the given chunk IDs.
	// Missing IDs are absent from the result.
	Lookup(ctx context.Context, ids []string) (map[string]domain.IndexEntry, error)

	// Exists reports whether a persisted index is present.
	Exists(ctx context.Context) bool

	// Manifest returns the persisted manifest.
	// Returns domain.ErrIndexNotReady when no index exists.
	Manifest(ctx context.Context) (*domain.IndexManifest, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Entry is the matched chunk.
	Entry domain.IndexEntry

	// Distance is the cosine distance (1 - cosine similarity).
	Distance float64
}

// Similarity returns the cosine similarity of the hit.
func (h VectorHit) Similarity() float64 {
	return 1 - h.Distance
}

// VectorIndexOpener attaches to the index persisted in a directory.
// Opening never modifies stored contents.
type VectorIndexOpener func(dir string) (VectorIndex, error)
