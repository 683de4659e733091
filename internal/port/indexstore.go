package port

import "recall/internal/domain"

// IndexStore persists the derived state both index adapters build:
// postings and corpus stats for the lexical side, embedding vectors for
// the vector side. Chunk text itself lives only in the Repository.
type IndexStore interface {
	// ApplyBatch writes one ingestion's worth of lexical state
	// atomically: new postings are appended to existing terms.
	ApplyBatch(batch IndexBatch) error

	GetPostings(term string) ([]domain.Posting, error)

	// ChunkLength returns the token count recorded for a chunk, or 0
	// if unknown.
	ChunkLength(chunkID string) (int, error)

	Stats() (domain.Stats, error)

	PutVectors(items []VectorItem) error

	// LoadVectors returns every stored vector. Called once at adapter
	// construction to warm the in-memory search set.
	LoadVectors() ([]VectorItem, error)

	Close() error
}

// IndexBatch is the unit ApplyBatch writes in one transaction.
type IndexBatch struct {
	Lengths  map[string]int              // chunk id -> token count
	Postings map[string][]domain.Posting // term -> postings to append
	Stats    domain.Stats                // replacement corpus stats
}

// VectorItem is one stored embedding.
type VectorItem struct {
	ID     string
	Vector []float32
}
