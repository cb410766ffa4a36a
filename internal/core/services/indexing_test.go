package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/loaders"
	"github.com/custodia-labs/brahma/internal/postprocessors"
)

type indexFixture struct {
	dir      string
	embedder *hashEmbedder
	index    *memory.VectorIndex
	service  *IndexService
}

func newIndexFixture(t *testing.T, cfg IndexServiceConfig) *indexFixture {
	t.Helper()
	dir := t.TempDir()
	cfg.Workspace = dir

	pipeline, err := postprocessors.NewDefaultPipeline(domain.PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {"chunk_size": 40, "overlap": 5},
		},
	})
	require.NoError(t, err)

	embedder := newHashEmbedder()
	index := memory.NewVectorIndex()
	loader := NewDocumentLoader(loaders.NewDefaultRegistry())

	return &indexFixture{
		dir:      dir,
		embedder: embedder,
		index:    index,
		service:  NewIndexService(loader, pipeline, embedder, index, cfg, nil),
	}
}

func (f *indexFixture) entries(t *testing.T) []domain.IndexEntry {
	t.Helper()
	hits, err := f.index.Query(context.Background(), hashVector("x"), 1000)
	require.NoError(t, err)
	entries := make([]domain.IndexEntry, len(hits))
	for i, h := range hits {
		entries[i] = h.Entry
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

func TestIndexService_Reindex(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "colour.txt", "Brahma's favorite color is blue.")
	writeFile(t, f.dir, "report.md", "The quarterly report covers revenue growth across every region in detail.")
	writeFile(t, f.dir, "broken.txt", string([]byte{0xff, 0xfe}))

	report, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Segments)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.SkippedFiles, 1)
	assert.Equal(t, "broken.txt", filepath.Base(report.SkippedFiles[0].Path))
	assert.Greater(t, report.Chunks, 2)
	assert.Equal(t, report.Chunks, report.Embedded)
	assert.Zero(t, report.Reused)

	require.True(t, f.index.Exists(context.Background()))
	manifest, err := f.index.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hash-embed", manifest.Model)
	assert.Equal(t, testDimensions, manifest.Dimensions)
	assert.Equal(t, report.Chunks, manifest.Chunks)
	assert.Equal(t, 2, manifest.Documents)
}

func TestIndexService_ReindexIsIdempotent(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Brahma's favorite color is blue. It has been blue for many years now.")
	writeFile(t, f.dir, "b.txt", "Another document with entirely different words inside it.")

	first, err := f.service.Reindex(context.Background())
	require.NoError(t, err)
	before := f.entries(t)

	second, err := f.service.Reindex(context.Background())
	require.NoError(t, err)
	after := f.entries(t)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Zero(t, second.Embedded)
	assert.Equal(t, second.Chunks, second.Reused)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Chunk, after[i].Chunk)
	}
}

func TestIndexService_ReindexTracksChanges(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "keep.txt", "This file never changes.")
	writeFile(t, f.dir, "edit.txt", "Original text.")
	removed := writeFile(t, f.dir, "gone.txt", "This file will be deleted.")

	_, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	writeFile(t, f.dir, "edit.txt", "Edited text.")
	require.NoError(t, os.Remove(removed))

	report, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 1, report.Reused)

	contents := map[string]bool{}
	for _, e := range f.entries(t) {
		contents[e.Content] = true
	}
	assert.Equal(t, map[string]bool{"This file never changes.": true, "Edited text.": true}, contents)
}

func TestIndexService_ModelChangeReembeds(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Some content.")

	_, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	f.embedder.model = "hash-embed-v2"
	report, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Embedded)
	assert.Zero(t, report.Reused)
	manifest, err := f.index.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hash-embed-v2", manifest.Model)
}

func TestIndexService_EmptyWorkspaceLeavesIndexUntouched(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})

	report, err := f.service.Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Documents)
	assert.Zero(t, report.Chunks)
	assert.False(t, f.index.Exists(context.Background()))

	writeFile(t, f.dir, "a.txt", "Some content.")
	_, err = f.service.Reindex(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "a.txt")))

	_, err = f.service.Reindex(context.Background())
	require.NoError(t, err)
	count, err := f.index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexService_Batches(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{BatchSize: 2, Workers: 2})
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		writeFile(t, f.dir, name, "Document "+name)
	}

	report, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Embedded)
	assert.Equal(t, int32(3), f.embedder.batches.Load())
	assert.Equal(t, int32(5), f.embedder.texts.Load())

	for _, e := range f.entries(t) {
		assert.Equal(t, hashVector(e.Content), e.Embedding, "vector order restored for %s", e.Content)
	}
}

func TestIndexService_EmbedFailureKeepsPreviousIndex(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Original content.")

	_, err := f.service.Reindex(context.Background())
	require.NoError(t, err)

	writeFile(t, f.dir, "a.txt", "Changed content.")
	f.embedder.err = domain.ErrProviderUnavailable

	_, err = f.service.Reindex(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexingFailed)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	entries := f.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "Original content.", entries[0].Content)
}

// shortVectors returns vectors of the wrong count.
type shortVectors struct {
	*hashEmbedder
}

func (s shortVectors) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)-1), nil
}

func TestIndexService_VectorCountMismatch(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Some content.")

	pipeline, err := postprocessors.NewDefaultPipeline(domain.DefaultPipelineConfig())
	require.NoError(t, err)
	service := NewIndexService(NewDocumentLoader(loaders.NewDefaultRegistry()), pipeline,
		shortVectors{f.embedder}, f.index, IndexServiceConfig{Workspace: f.dir}, nil)

	_, err = service.Reindex(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexingFailed)
	assert.ErrorIs(t, err, domain.ErrModelError)
	assert.False(t, f.index.Exists(context.Background()))
}

func TestIndexService_ConcurrentReindexRejected(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Some content.")

	f.embedder.started = make(chan struct{})
	f.embedder.release = make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.service.Reindex(context.Background())
	}()

	select {
	case <-f.embedder.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first reindex never started embedding")
	}

	_, err := f.service.Reindex(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexingInProgress)

	close(f.embedder.release)
	wg.Wait()
	assert.NoError(t, firstErr)
}

func TestIndexService_Cancelled(t *testing.T) {
	f := newIndexFixture(t, IndexServiceConfig{})
	writeFile(t, f.dir, "a.txt", "Some content.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Reindex(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, f.index.Exists(context.Background()))
}

func TestDedupeChunks(t *testing.T) {
	chunks := []domain.Chunk{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}}
	got := dedupeChunks(chunks)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
