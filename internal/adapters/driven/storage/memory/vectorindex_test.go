package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

func entry(id string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk: domain.Chunk{ID: id, Source: "/w/" + id + ".txt", Content: id, Embedding: vec},
		Model: "test",
	}
}

func TestVectorIndex_NotReadyUntilReplace(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	assert.False(t, idx.Exists(ctx))
	_, err := idx.Manifest(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)

	require.NoError(t, idx.Replace(ctx, nil, domain.IndexManifest{Model: "test"}))
	assert.True(t, idx.Exists(ctx))

	m, err := idx.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Chunks)
	assert.False(t, m.BuiltAt.IsZero())
}

func TestVectorIndex_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{
		entry("far", 0, 1),
		entry("tie-first", 1, 1),
		entry("near", 1, 0),
		entry("tie-second", 1, 1),
	}, domain.IndexManifest{Model: "test"}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "near", hits[0].Entry.ID)
	assert.Equal(t, "tie-first", hits[1].Entry.ID)
	assert.Equal(t, "tie-second", hits[2].Entry.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity(), 1e-9)

	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestVectorIndex_QueryBounds(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{entry("a", 1, 0), entry("b", 0, 1)}, domain.IndexManifest{}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = idx.Query(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_ReplaceDiscardsPrevious(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{entry("old", 1, 0)}, domain.IndexManifest{}))
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{entry("new", 1, 0)}, domain.IndexManifest{}))

	found, err := idx.Lookup(ctx, []string{"old", "new"})
	require.NoError(t, err)
	assert.NotContains(t, found, "old")
	assert.Contains(t, found, "new")

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorIndex_UpsertKeepsSeq(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{entry("a", 1, 0), entry("b", 1, 0)}, domain.IndexManifest{}))

	updated := entry("a", 1, 0)
	updated.Content = "changed"
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{updated, entry("c", 1, 0)}))

	found, err := idx.Lookup(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, "changed", found["a"].Content)
	assert.Equal(t, int64(0), found["a"].Seq)
	assert.Equal(t, int64(2), found["c"].Seq)

	m, err := idx.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Chunks)
}

func TestVectorIndex_SkipsMismatchedDimensions(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Replace(ctx, []domain.IndexEntry{entry("a", 1, 0, 0), entry("b", 1, 0)}, domain.IndexManifest{}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Entry.ID)
}
