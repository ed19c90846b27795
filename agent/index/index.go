// Package index implements the in-memory embedding index backing FAQ
// retrieval: inner product over L2-normalized vectors, which equals cosine
// similarity.
package index

import (
	"fmt"
	"math"
	"sort"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

type Hit struct {
	ID       string
	Position int // insertion order in the corpus
	Score    float32
}

// Index is immutable after Build; concurrent queries need no locking.
// A corpus change requires a full rebuild and swap by the caller.
type Index struct {
	dim     int
	ids     []string
	vectors [][]float32
}

// Build constructs an index from the FAQ corpus. All embeddings must share
// one dimension; an empty corpus yields a valid empty index.
func Build(entries []contractx.FAQEntry) (*Index, error) {
	ix := &Index{
		ids:     make([]string, 0, len(entries)),
		vectors: make([][]float32, 0, len(entries)),
	}

	for i, entry := range entries {
		if len(entry.Embedding) == 0 {
			return nil, fmt.Errorf("%w: entry id=%s has no embedding", contractx.ErrValidation, entry.ID)
		}
		if ix.dim == 0 {
			ix.dim = len(entry.Embedding)
		}
		if len(entry.Embedding) != ix.dim {
			return nil, fmt.Errorf("%w: entry %d id=%s has dim=%d, index dim=%d",
				contractx.ErrDimensionMismatch, i, entry.ID, len(entry.Embedding), ix.dim)
		}
		ix.ids = append(ix.ids, entry.ID)
		ix.vectors = append(ix.vectors, normalize(entry.Embedding))
	}

	return ix, nil
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.ids)
}

func (ix *Index) Dimension() int {
	if ix == nil {
		return 0
	}
	return ix.dim
}

// Query returns up to k hits ordered by descending score, ties broken by
// corpus insertion order. An empty index returns an empty result, never an
// error.
func (ix *Index) Query(vector []float32, k int) ([]Hit, error) {
	if ix == nil || len(ix.ids) == 0 {
		return nil, nil
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query dim=%d, index dim=%d",
			contractx.ErrDimensionMismatch, len(vector), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	query := normalize(vector)
	hits := make([]Hit, 0, len(ix.ids))
	for i, vec := range ix.vectors {
		hits = append(hits, Hit{
			ID:       ix.ids[i],
			Position: i,
			Score:    dot(query, vec),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
