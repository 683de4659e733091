package index

import (
	"context"
	"math"
	"sort"
	"sync"

	"recall/internal/adapter/analyzer"
	"recall/internal/domain"
	"recall/internal/port"
)

// Lexical is the term-matching backend: a BM25 scorer over postings held
// in an IndexStore. The write mutex keeps the stats read-modify-write
// atomic when ingests run concurrently.
type Lexical struct {
	store     port.IndexStore
	tokenizer *analyzer.Tokenizer
	k1        float64
	b         float64

	writeMu sync.Mutex
}

func NewLexical(store port.IndexStore, tokenizer *analyzer.Tokenizer, k1, b float64) *Lexical {
	if k1 <= 0 {
		k1 = 1.2
	}
	if b < 0 || b > 1 {
		b = 0.75
	}
	return &Lexical{store: store, tokenizer: tokenizer, k1: k1, b: b}
}

func (l *Lexical) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	stats, err := l.store.Stats()
	if err != nil {
		return err
	}

	batch := port.IndexBatch{
		Lengths:  make(map[string]int, len(chunks)),
		Postings: make(map[string][]domain.Posting),
	}
	for _, c := range chunks {
		tokens := l.tokenizer.Tokenize(c.Text)
		batch.Lengths[c.ID] = len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, n := range tf {
			batch.Postings[term] = append(batch.Postings[term], domain.Posting{ChunkID: c.ID, TF: n})
		}

		stats.TotalChunks++
		stats.TotalTokens += len(tokens)
	}
	if stats.TotalChunks > 0 {
		stats.AvgChunkLen = float64(stats.TotalTokens) / float64(stats.TotalChunks)
	}
	batch.Stats = stats

	return l.store.ApplyBatch(batch)
}

func (l *Lexical) Search(_ context.Context, query string, topK int) ([]domain.Hit, error) {
	queryTokens := l.tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	stats, err := l.store.Stats()
	if err != nil {
		return nil, err
	}
	if stats.TotalChunks == 0 {
		return nil, nil
	}
	avgDl := stats.AvgChunkLen
	if avgDl == 0 {
		avgDl = 1
	}

	scores := make(map[string]float64)
	lengths := make(map[string]int)

	for _, term := range queryTokens {
		postings, err := l.store.GetPostings(term)
		if err != nil {
			continue
		}

		n := float64(len(postings))
		N := float64(stats.TotalChunks)
		idf := math.Log((N-n+0.5)/(n+0.5) + 1)

		for _, posting := range postings {
			if _, ok := lengths[posting.ChunkID]; !ok {
				dl, err := l.store.ChunkLength(posting.ChunkID)
				if err != nil {
					continue
				}
				lengths[posting.ChunkID] = dl
			}

			dl := float64(lengths[posting.ChunkID])
			tf := float64(posting.TF)
			scores[posting.ChunkID] += idf * (tf * (l.k1 + 1)) / (tf + l.k1*(1-l.b+l.b*dl/avgDl))
		}
	}

	hits := make([]domain.Hit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, domain.Hit{ChunkID: id, Score: score})
	}
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
