package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"recall/config"
	"recall/internal/domain"
)

// fusedHit accumulates per-backend normalized scores for one chunk while
// candidate lists are merged.
type fusedHit struct {
	chunkID string
	lexical *float64
	vector  *float64
	fused   float64
	order   int
}

// Search runs the configured retrieval modes, fuses normalized scores
// and resolves chunk ids against the canonical store. A failing backend
// contributes zero hits; it never fails the call.
func (m *Memory) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTopK, topK)
	}

	wantLex := m.cfg.HasMode(config.ModeLexical)
	wantVec := m.cfg.HasMode(config.ModeVector)
	if wantVec && !m.vectorAvailable {
		m.log.Warn().Msg("vector mode requested but unavailable, using lexical only")
		wantVec = false
		wantLex = true
	}

	fetch := topK * m.cfg.Retrieve.Fanout
	if fetch < topK {
		fetch = topK
	}

	var lexHits, vecHits []domain.Hit
	if wantLex {
		hits, err := m.lexical.Search(ctx, query, fetch)
		if err != nil {
			m.log.Warn().Err(err).Msg("lexical search failed, contributing no candidates")
		} else {
			lexHits = hits
		}
	}
	if wantVec {
		hits, err := m.vector.Search(ctx, query, fetch)
		if err != nil {
			m.log.Warn().Err(err).Msg("vector search failed, contributing no candidates")
		} else {
			vecHits = hits
		}
	}

	merged := fuse(lexHits, vecHits, wantLex && wantVec, m.cfg.Retrieve.Alpha)
	return m.resolve(merged, topK)
}

// fuse max-normalizes each candidate list to [0,1] and combines them as
// alpha*vector + (1-alpha)*lexical, a missing side scoring zero. Ties
// keep first-seen order, lexical candidates first. In single-mode runs
// the normalized score passes through unweighted.
func fuse(lexHits, vecHits []domain.Hit, hybrid bool, alpha float64) []fusedHit {
	lexNorm := maxScore(lexHits)
	vecNorm := maxScore(vecHits)

	byID := make(map[string]*fusedHit, len(lexHits)+len(vecHits))
	ordered := make([]*fusedHit, 0, len(lexHits)+len(vecHits))

	add := func(id string) *fusedHit {
		if h, ok := byID[id]; ok {
			return h
		}
		h := &fusedHit{chunkID: id, order: len(ordered)}
		byID[id] = h
		ordered = append(ordered, h)
		return h
	}

	for _, hit := range lexHits {
		score := hit.Score / lexNorm
		h := add(hit.ChunkID)
		h.lexical = &score
	}
	for _, hit := range vecHits {
		score := hit.Score / vecNorm
		h := add(hit.ChunkID)
		h.vector = &score
	}

	for _, h := range ordered {
		if hybrid {
			var lex, vec float64
			if h.lexical != nil {
				lex = *h.lexical
			}
			if h.vector != nil {
				vec = *h.vector
			}
			h.fused = alpha*vec + (1-alpha)*lex
		} else if h.lexical != nil {
			h.fused = *h.lexical
		} else if h.vector != nil {
			h.fused = *h.vector
		}
	}

	out := make([]fusedHit, len(ordered))
	for i, h := range ordered {
		out[i] = *h
	}
	sortFused(out)
	return out
}

func maxScore(hits []domain.Hit) float64 {
	max := 0.0
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// sortFused orders by fused score descending; equal scores keep
// first-seen insertion order so results are deterministic across runs.
func sortFused(hits []fusedHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].fused != hits[j].fused {
			return hits[i].fused > hits[j].fused
		}
		return hits[i].order < hits[j].order
	})
}

// resolve maps fused candidates back to stored chunk text. Candidates
// the canonical store no longer knows are skipped, not surfaced.
func (m *Memory) resolve(hits []fusedHit, topK int) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, topK)
	chunkCache := make(map[string]map[string]domain.Chunk)

	for _, hit := range hits {
		if len(results) == topK {
			break
		}

		docID, _, ok := strings.Cut(hit.chunkID, ":")
		if !ok {
			m.log.Debug().Str("chunk_id", hit.chunkID).Msg("malformed chunk id in index, skipping")
			continue
		}

		chunks, ok := chunkCache[docID]
		if !ok {
			listed, err := m.repo.ListChunks(docID)
			if err != nil {
				m.log.Debug().Err(err).Str("doc_id", docID).Msg("indexed document missing from store, skipping")
				chunkCache[docID] = map[string]domain.Chunk{}
				continue
			}
			chunks = make(map[string]domain.Chunk, len(listed))
			for _, c := range listed {
				chunks[c.ID] = c
			}
			chunkCache[docID] = chunks
		}

		chunk, ok := chunks[hit.chunkID]
		if !ok {
			m.log.Debug().Str("chunk_id", hit.chunkID).Msg("indexed chunk missing from store, skipping")
			continue
		}

		results = append(results, domain.SearchResult{
			DocID:        docID,
			ChunkID:      hit.chunkID,
			Text:         chunk.Text,
			Score:        hit.fused,
			ScoreLexical: hit.lexical,
			ScoreVector:  hit.vector,
			Metadata:     map[string]string{},
		})
	}
	return results, nil
}
