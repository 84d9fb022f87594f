// Package vector holds the similarity maths shared by the in-process
// vector stores.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero magnitude have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ranker accumulates scored records and returns the best k.
type Ranker struct {
	query   []float32
	results []domain.QueryResult
}

// NewRanker creates a ranker for the given query vector.
func NewRanker(query []float32) *Ranker {
	return &Ranker{query: query}
}

// Add scores a record against the query.
func (r *Ranker) Add(rec domain.Record) {
	r.results = append(r.results, domain.QueryResult{
		Record:     rec,
		Similarity: Cosine(r.query, rec.Embedding),
	})
}

// Top returns up to k results, highest similarity first. Ties keep the
// order in which records were added. k <= 0 returns an empty slice.
func (r *Ranker) Top(k int) []domain.QueryResult {
	if k <= 0 {
		return []domain.QueryResult{}
	}
	sort.SliceStable(r.results, func(i, j int) bool {
		return r.results[i].Similarity > r.results[j].Similarity
	})
	if len(r.results) > k {
		return r.results[:k]
	}
	out := r.results
	if out == nil {
		out = []domain.QueryResult{}
	}
	return out
}

// Clone returns a copy of v.
func Clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// CloneMetadata returns a shallow copy of m.
func CloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
