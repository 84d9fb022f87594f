package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRanker_Top(t *testing.T) {
	r := NewRanker([]float32{1, 0})
	r.Add(domain.Record{ID: "far", Embedding: []float32{0, 1}})
	r.Add(domain.Record{ID: "near", Embedding: []float32{1, 0}})
	r.Add(domain.Record{ID: "mid", Embedding: []float32{1, 1}})

	top := r.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "near", top[0].Record.ID)
	assert.Equal(t, "mid", top[1].Record.ID)
	assert.Greater(t, top[0].Similarity, top[1].Similarity)
}

func TestRanker_TopFewerThanK(t *testing.T) {
	r := NewRanker([]float32{1})
	r.Add(domain.Record{ID: "only", Embedding: []float32{1}})

	assert.Len(t, r.Top(5), 1)
}

func TestRanker_TopNonPositiveK(t *testing.T) {
	r := NewRanker([]float32{1})
	r.Add(domain.Record{ID: "a", Embedding: []float32{1}})

	top := r.Top(0)
	assert.NotNil(t, top)
	assert.Empty(t, top)
}

func TestRanker_Empty(t *testing.T) {
	top := NewRanker([]float32{1}).Top(3)
	assert.NotNil(t, top)
	assert.Empty(t, top)
}

func TestClone(t *testing.T) {
	src := []float32{1, 2}
	dst := Clone(src)
	dst[0] = 9
	assert.Equal(t, float32(1), src[0])
	assert.Nil(t, Clone(nil))

	meta := map[string]any{"a": 1}
	cp := CloneMetadata(meta)
	cp["a"] = 2
	assert.Equal(t, 1, meta["a"])
	assert.Nil(t, CloneMetadata(nil))
}
