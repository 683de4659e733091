package port

import "recall/internal/domain"

// Repository is the canonical store for documents, chunks and
// conversation messages. It is the single owner of chunk text; the
// index adapters only hold copies of ids and derived state.
type Repository interface {
	// DocumentExists reports whether a document id is already present.
	DocumentExists(docID string) (bool, error)

	// SaveDocument persists a document together with all of its chunks
	// in one atomic write: either everything lands or nothing does.
	SaveDocument(doc domain.Document, chunks []domain.Chunk) error

	// GetDocument returns a document or domain.ErrNotFound.
	GetDocument(docID string) (domain.Document, error)

	// ListChunks returns a document's chunks ordered by seq ascending.
	ListChunks(docID string) ([]domain.Chunk, error)

	// SaveMessage appends one conversation turn.
	SaveMessage(msg domain.Message) error

	// GetSessionMessages returns a session's messages ordered by
	// creation time ascending.
	GetSessionMessages(sessionID string) ([]domain.Message, error)

	Close() error
}
