package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall/internal/adapter/store"
	"recall/internal/domain"
)

// axisEmbedder maps a handful of known words onto fixed axes so
// similarity in tests is fully predictable.
type axisEmbedder struct {
	axes map[string]int
	dim  int
}

func newAxisEmbedder(words ...string) *axisEmbedder {
	axes := make(map[string]int, len(words))
	for i, w := range words {
		axes[w] = i
	}
	return &axisEmbedder{axes: axes, dim: len(words)}
}

func (e *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dim)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			if axis, ok := e.axes[w]; ok {
				vec[axis]++
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (e *axisEmbedder) Dimension() int    { return e.dim }
func (e *axisEmbedder) ModelName() string { return "axis-test" }

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("backend down")
}
func (failingEmbedder) Dimension() int    { return 2 }
func (failingEmbedder) ModelName() string { return "failing" }

func TestVectorRequiresEmbedder(t *testing.T) {
	_, err := NewVector(store.NewMemoryIndexStore(), nil)
	assert.Error(t, err)
}

func TestVectorEmptyIndex(t *testing.T) {
	vec, err := NewVector(store.NewMemoryIndexStore(), newAxisEmbedder("cat", "dog"))
	require.NoError(t, err)

	hits, err := vec.Search(ctx, "cat", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorSimilarityOrdering(t *testing.T) {
	vec, err := NewVector(store.NewMemoryIndexStore(), newAxisEmbedder("cat", "dog", "fish"))
	require.NoError(t, err)

	require.NoError(t, vec.Add(ctx, []domain.Chunk{
		{ID: "cats:0", DocID: "cats", Seq: 0, Text: "cat cat dog"},
		{ID: "dogs:0", DocID: "dogs", Seq: 0, Text: "dog dog fish"},
	}))

	hits, err := vec.Search(ctx, "cat", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "cats:0", hits[0].ChunkID)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	// Scores are positive similarities, monotone with relevance.
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestVectorTransientSearchFailure(t *testing.T) {
	st := store.NewMemoryIndexStore()
	good, err := NewVector(st, newAxisEmbedder("cat", "dog"))
	require.NoError(t, err)
	require.NoError(t, good.Add(ctx, []domain.Chunk{
		{ID: "a:0", DocID: "a", Seq: 0, Text: "cat"},
	}))

	broken, err := NewVector(st, failingEmbedder{})
	require.NoError(t, err)
	_, err = broken.Search(ctx, "cat", 5)
	assert.Error(t, err)
}

func TestVectorPersistenceRoundTrip(t *testing.T) {
	st := store.NewMemoryIndexStore()
	emb := newAxisEmbedder("cat", "dog")

	first, err := NewVector(st, emb)
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, []domain.Chunk{
		{ID: "a:0", DocID: "a", Seq: 0, Text: "cat"},
		{ID: "b:0", DocID: "b", Seq: 0, Text: "dog"},
	}))

	// A fresh adapter over the same store warms from persisted vectors.
	second, err := NewVector(st, emb)
	require.NoError(t, err)
	hits, err := second.Search(ctx, "dog", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b:0", hits[0].ChunkID)
}
