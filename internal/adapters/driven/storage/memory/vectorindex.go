// Package memory provides in-process implementations of driven ports.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/vectormath"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// It follows the same ordering rules as the durable index.
type VectorIndex struct {
	mu       sync.RWMutex
	entries  []domain.IndexEntry
	byID     map[string]int
	manifest *domain.IndexManifest
	nextSeq  int64
	closed   bool
}

// NewVectorIndex creates a new, not yet built, in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		byID: make(map[string]int),
	}
}

// Replace swaps the full contents of the index.
func (v *VectorIndex) Replace(_ context.Context, entries []domain.IndexEntry, manifest domain.IndexManifest) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("vector index closed")
	}

	v.entries = make([]domain.IndexEntry, 0, len(entries))
	v.byID = make(map[string]int, len(entries))
	v.nextSeq = 0
	v.insertLocked(entries)

	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = time.Now()
	}
	manifest.Chunks = len(v.entries)
	v.manifest = &manifest
	return nil
}

// Upsert adds entries or replaces those with the same chunk ID.
func (v *VectorIndex) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("vector index closed")
	}
	v.insertLocked(entries)
	if v.manifest != nil {
		v.manifest.Chunks = len(v.entries)
	}
	return nil
}

// insertLocked stores entries, keeping the sequence of replaced entries.
func (v *VectorIndex) insertLocked(entries []domain.IndexEntry) {
	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		if i, ok := v.byID[e.ID]; ok {
			e.Seq = v.entries[i].Seq
			v.entries[i] = e
			continue
		}
		e.Seq = v.nextSeq
		v.nextSeq++
		v.byID[e.ID] = len(v.entries)
		v.entries = append(v.entries, e)
	}
}

// Query returns up to k entries nearest to vector.
func (v *VectorIndex) Query(_ context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.entries))
	for _, e := range v.entries {
		if len(e.Embedding) != len(vector) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Entry:    e,
			Distance: vectormath.CosineDistance(vector, e.Embedding),
		})
	}
	return vectormath.TopK(hits, k), nil
}

// Lookup returns stored entries for the given IDs.
func (v *VectorIndex) Lookup(_ context.Context, ids []string) (map[string]domain.IndexEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	found := make(map[string]domain.IndexEntry, len(ids))
	for _, id := range ids {
		if i, ok := v.byID[id]; ok {
			found[id] = v.entries[i]
		}
	}
	return found, nil
}

// Exists reports whether Replace has been called.
func (v *VectorIndex) Exists(_ context.Context) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.manifest != nil
}

// Manifest returns the manifest of the last Replace.
func (v *VectorIndex) Manifest(_ context.Context) (*domain.IndexManifest, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.manifest == nil {
		return nil, domain.ErrIndexNotReady
	}
	m := *v.manifest
	return &m, nil
}

// Count returns the number of stored entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Close marks the index closed. Reads keep working on the last contents.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}
