package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"recall/internal/domain"
	"recall/internal/port"
)

// Vector is the dense backend: embeddings searched by brute-force cosine
// similarity. The full vector set lives in memory, warmed from the
// IndexStore at construction; writes go to both.
type Vector struct {
	embedder port.Embedder
	store    port.IndexStore

	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewVector builds the dense backend. Any failure here (no embedder, bad
// dimension, unreadable persisted state) is a construction failure the
// caller turns into lexical-only degradation.
func NewVector(store port.IndexStore, embedder port.Embedder) (*Vector, error) {
	if embedder == nil {
		return nil, errors.New("no embedder configured")
	}
	dim := embedder.Dimension()
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}

	items, err := store.LoadVectors()
	if err != nil {
		return nil, fmt.Errorf("loading persisted vectors: %w", err)
	}

	v := &Vector{
		embedder: embedder,
		store:    store,
		vectors:  make(map[string][]float32, len(items)),
	}
	for _, item := range items {
		if len(item.Vector) != dim {
			continue // stale entries from a different model
		}
		v.vectors[item.ID] = item.Vector
	}
	return v, nil
}

func (v *Vector) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := v.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(chunks))
	}

	items := make([]port.VectorItem, len(chunks))
	for i, c := range chunks {
		items[i] = port.VectorItem{ID: c.ID, Vector: embeddings[i]}
	}
	if err := v.store.PutVectors(items); err != nil {
		return err
	}

	v.mu.Lock()
	for _, item := range items {
		v.vectors[item.ID] = item.Vector
	}
	v.mu.Unlock()
	return nil
}

// Search embeds the query and ranks by similarity. Cosine distance is
// converted to 1/(1+d) so scores are positive and increase with
// relevance.
func (v *Vector) Search(ctx context.Context, query string, topK int) ([]domain.Hit, error) {
	v.mu.RLock()
	empty := len(v.vectors) == 0
	v.mu.RUnlock()
	if empty {
		return nil, nil
	}

	embeddings, err := v.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, nil
	}
	queryVec := embeddings[0]

	v.mu.RLock()
	hits := make([]domain.Hit, 0, len(v.vectors))
	for id, vec := range v.vectors {
		distance := 1 - cosineSimilarity(queryVec, vec)
		hits = append(hits, domain.Hit{ChunkID: id, Score: 1 / (1 + distance)})
	}
	v.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
