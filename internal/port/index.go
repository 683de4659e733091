package port

import (
	"context"

	"recall/internal/domain"
)

// Index is the uniform capability contract both retrieval backends
// implement. The orchestrator never inspects which backend it holds.
type Index interface {
	// Add makes chunks searchable. An empty input is a no-op. Re-adding
	// an id that is already indexed is undefined; callers must ensure
	// ids are fresh.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to topK hits ordered by descending relevance.
	// Scores are in the backend's native scale, but always increase
	// monotonically with relevance. An empty index returns an empty
	// slice, never an error.
	Search(ctx context.Context, query string, topK int) ([]domain.Hit, error)
}
