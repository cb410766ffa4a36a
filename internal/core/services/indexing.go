package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// IndexService rebuilds the vector index from the workspace.
type IndexService struct {
	loader   *DocumentLoader
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	index    driven.VectorIndex

	workspace string
	batchSize int
	workers   int
	timeout   time.Duration

	// writeMu admits a single reindex at a time.
	writeMu sync.Mutex

	// swapMu is shared with queries. Reindex holds it only while swapping
	// the index contents.
	swapMu *sync.RWMutex
}

// IndexServiceConfig holds the tunables of an IndexService.
type IndexServiceConfig struct {
	Workspace string
	BatchSize int
	Workers   int
	Timeout   time.Duration
}

// NewIndexService creates an indexing service.
// swapMu may be nil when no queries share the index.
func NewIndexService(
	loader *DocumentLoader,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg IndexServiceConfig,
	swapMu *sync.RWMutex,
) *IndexService {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = domain.DefaultEmbedBatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = domain.DefaultEmbedWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultRequestTimeout
	}
	if swapMu == nil {
		swapMu = &sync.RWMutex{}
	}
	return &IndexService{
		loader:    loader,
		pipeline:  pipeline,
		embedder:  embedder,
		index:     index,
		workspace: cfg.Workspace,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		timeout:   cfg.Timeout,
		swapMu:    swapMu,
	}
}

// Reindex loads, chunks and embeds every document in the workspace and
// replaces the index contents with the result.
// Chunks whose content is unchanged keep their stored vectors.
func (s *IndexService) Reindex(ctx context.Context) (*domain.IndexReport, error) {
	if !s.writeMu.TryLock() {
		return nil, domain.ErrIndexingInProgress
	}
	defer s.writeMu.Unlock()

	start := time.Now()
	logger.Section("Reindex")

	docs, loadReport, err := s.loader.Load(ctx, s.workspace)
	if err != nil {
		return nil, err
	}

	report := &domain.IndexReport{
		Files:        loadReport.Files,
		Documents:    len(docs),
		Segments:     loadReport.Segments,
		Skipped:      len(loadReport.Failed),
		SkippedFiles: loadReport.Failed,
	}

	if len(docs) == 0 {
		logger.Info("No documents found in %s, index left unchanged", s.workspace)
		report.Elapsed = time.Since(start)
		return report, nil
	}

	done := logger.Timed("chunk")
	chunks, err := s.chunk(ctx, docs)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexingFailed, err)
	}
	logger.Debug("Chunked %d documents into %d chunks", len(docs), len(chunks))

	entries, pending, err := s.reuse(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexingFailed, err)
	}
	report.Reused = len(chunks) - len(pending)
	report.Embedded = len(pending)

	if err := s.embed(ctx, entries, pending); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexingFailed, err)
	}

	manifest := domain.IndexManifest{
		Model:      s.embedder.ModelName(),
		Dimensions: dimensionsOf(entries, s.embedder.Dimensions()),
		Documents:  len(docs),
	}

	s.swapMu.Lock()
	err = s.index.Replace(ctx, entries, manifest)
	s.swapMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexingFailed, err)
	}

	report.Chunks = len(entries)
	report.Elapsed = time.Since(start)
	logger.Info("Indexed %d chunks from %d documents, %d segments (%d embedded, %d reused, %d skipped) in %s",
		report.Chunks, report.Documents, report.Segments, report.Embedded, report.Reused, report.Skipped,
		report.Elapsed.Round(time.Millisecond))

	return report, nil
}

// chunk runs the post-processing pipeline over every document.
// Documents are processed in load order so chunk order is stable.
func (s *IndexService) chunk(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", docs[i].Path, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return dedupeChunks(chunks), nil
}

// reuse builds the entry list and returns the positions that still need
// a vector. A stored vector is reused when it was produced by the current
// model for identical content.
func (s *IndexService) reuse(ctx context.Context, chunks []domain.Chunk) ([]domain.IndexEntry, []int, error) {
	model := s.embedder.ModelName()

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}

	stored := map[string]domain.IndexEntry{}
	if s.index.Exists(ctx) {
		var err error
		stored, err = s.index.Lookup(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("lookup stored vectors: %w", err)
		}
	}

	entries := make([]domain.IndexEntry, len(chunks))
	var pending []int
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{Chunk: c, Model: model}
		prev, ok := stored[c.ID]
		if ok && prev.Model == model && prev.ContentHash == c.ContentHash && len(prev.Embedding) > 0 {
			entries[i].Embedding = prev.Embedding
			continue
		}
		pending = append(pending, i)
	}
	return entries, pending, nil
}

// embed fills in vectors for the pending entries using a bounded pool of
// concurrent batch requests. The first failure cancels the rest.
func (s *IndexService) embed(ctx context.Context, entries []domain.IndexEntry, pending []int) error {
	if len(pending) == 0 {
		return nil
	}
	logger.Debug("Embedding %d chunks in batches of %d with %d workers", len(pending), s.batchSize, s.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(pending); start += s.batchSize {
		end := min(start+s.batchSize, len(pending))
		batch := pending[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, pos := range batch {
				texts[i] = entries[pos].Content
			}

			callCtx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			vectors, err := s.embedder.EmbedBatch(callCtx, texts)
			if err != nil {
				if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrProviderUnavailable) {
					return fmt.Errorf("%w: embedding timed out: %w", domain.ErrProviderUnavailable, err)
				}
				return err
			}
			if len(vectors) != len(texts) {
				return fmt.Errorf("%w: embedder returned %d vectors for %d texts",
					domain.ErrModelError, len(vectors), len(texts))
			}
			for i, pos := range batch {
				if len(vectors[i]) == 0 {
					return fmt.Errorf("%w: empty vector for chunk %s", domain.ErrModelError, entries[pos].ID)
				}
				entries[pos].Embedding = vectors[i]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	dims := len(entries[pending[0]].Embedding)
	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: mixed vector dimensions %d and %d", domain.ErrModelError, dims, len(e.Embedding))
		}
	}
	return nil
}

// dedupeChunks drops repeated chunk IDs, keeping the first.
// Identical text at the same origin produces the same ID.
func dedupeChunks(chunks []domain.Chunk) []domain.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0]
	for _, c := range chunks {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func dimensionsOf(entries []domain.IndexEntry, fallback int) int {
	if len(entries) > 0 && len(entries[0].Embedding) > 0 {
		return len(entries[0].Embedding)
	}
	return fallback
}
