// Package vectormath provides the exact distance and ranking rules shared by
// the vector index adapters.
package vectormath

import (
	"math"
	"sort"

	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// CosineDistance returns 1 - cos(a, b).
// Vectors of different length or with zero magnitude are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// TopK orders hits by ascending distance, breaking ties by insertion order,
// and truncates to k. k <= 0 yields no hits; k beyond the length keeps all.
func TopK(hits []driven.VectorHit, k int) []driven.VectorHit {
	if k <= 0 {
		return []driven.VectorHit{}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entry.Seq < hits[j].Entry.Seq
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
