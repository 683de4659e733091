package domain

import "time"

// Document is the canonical record of one ingested text. Documents are
// append-only: once created they are never mutated in place.
type Document struct {
	ID        string
	Corpus    string
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// Chunk is a contiguous slice of a document's text, the unit that gets
// indexed and retrieved. Its ID is always "{doc id}:{seq}".
type Chunk struct {
	ID    string
	DocID string
	Seq   int
	Text  string
}

// Message is one conversation turn inside a session. Append-only,
// ordered by CreatedAt within the session.
type Message struct {
	ID                string
	SessionID         string
	Role              string
	RawContent        string
	NormalizedContent string
	Metadata          map[string]string
	CreatedAt         time.Time
}

// Hit is a raw (chunk id, score) pair returned by an index backend,
// ordered by descending relevance in the backend's own scale.
type Hit struct {
	ChunkID string
	Score   float64
}

// SearchResult is a fused, resolved result. ScoreLexical/ScoreVector are
// nil when the corresponding backend did not contribute to this hit.
type SearchResult struct {
	DocID        string            `json:"doc_id"`
	ChunkID      string            `json:"chunk_id"`
	Text         string            `json:"text"`
	Score        float64           `json:"score"`
	ScoreLexical *float64          `json:"score_lexical,omitempty"`
	ScoreVector  *float64          `json:"score_vector,omitempty"`
	Metadata     map[string]string `json:"metadata"`
}

// Posting records one chunk's term frequency for a term.
type Posting struct {
	ChunkID string
	TF      int
}

// Stats holds corpus-level counters the lexical scorer needs.
type Stats struct {
	TotalChunks int
	TotalTokens int
	AvgChunkLen float64
}
