package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

func seedIndex(t *testing.T, index *memory.VectorIndex, model string, contents ...string) {
	t.Helper()
	entries := make([]domain.IndexEntry, len(contents))
	for i, c := range contents {
		entries[i] = domain.IndexEntry{
			Chunk: domain.Chunk{ID: c, Source: "/work/doc.txt", Position: i, Content: c, Embedding: hashVector(c)},
			Model: model,
		}
	}
	require.NoError(t, index.Replace(context.Background(), entries, domain.IndexManifest{Model: model, Dimensions: testDimensions}))
}

func TestRetriever_Retrieve(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed",
		"Brahma's favorite color is blue.",
		"The quarterly report covers revenue.",
		"Lunch is served at noon.",
		"Revenue grew in every region.",
	)
	r := NewRetriever(newHashEmbedder(), index, 2, 0)

	chunks, err := r.Retrieve(context.Background(), "What is Brahma's favorite color?", 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Brahma's favorite color is blue.", chunks[0].Content)

	chunks, err = r.Retrieve(context.Background(), "revenue report", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "The quarterly report covers revenue.", chunks[0].Content)
}

func TestRetriever_KLargerThanIndex(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed", "one", "two")
	r := NewRetriever(newHashEmbedder(), index, 3, 0)

	chunks, err := r.Retrieve(context.Background(), "one", 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestRetriever_EmptyIndex(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed")
	r := NewRetriever(newHashEmbedder(), index, 3, 0)

	chunks, err := r.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetriever_NotReady(t *testing.T) {
	r := NewRetriever(newHashEmbedder(), memory.NewVectorIndex(), 3, 0)

	_, err := r.Retrieve(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestRetriever_ModelMismatch(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "other-model", "one")
	embedder := newHashEmbedder()
	r := NewRetriever(embedder, index, 3, 0)

	_, err := r.Retrieve(context.Background(), "one", 0)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Zero(t, embedder.batches.Load())
}

func TestRetriever_EmbedError(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed", "one")
	embedder := newHashEmbedder()
	embedder.err = domain.ErrModelError
	r := NewRetriever(embedder, index, 3, 0)

	_, err := r.Retrieve(context.Background(), "one", 0)
	assert.ErrorIs(t, err, domain.ErrModelError)
}
