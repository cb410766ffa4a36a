package vectormath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 1},
		{"empty", nil, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func hit(id string, seq int64, distance float64) driven.VectorHit {
	return driven.VectorHit{
		Entry:    domain.IndexEntry{Chunk: domain.Chunk{ID: id}, Seq: seq},
		Distance: distance,
	}
}

func TestTopK_OrdersByDistanceThenSeq(t *testing.T) {
	hits := []driven.VectorHit{
		hit("c", 2, 0.5),
		hit("a", 0, 0.1),
		hit("d", 3, 0.5),
		hit("b", 1, 0.5),
	}

	got := TopK(hits, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Entry.ID)
	assert.Equal(t, "b", got[1].Entry.ID)
	assert.Equal(t, "c", got[2].Entry.ID)
}

func TestTopK_Bounds(t *testing.T) {
	hits := []driven.VectorHit{hit("a", 0, 0.2), hit("b", 1, 0.1)}

	assert.Len(t, TopK(hits, 10), 2)
	assert.Empty(t, TopK(hits, 0))
	assert.Empty(t, TopK(hits, -1))
	assert.Empty(t, TopK(nil, 3))
}
