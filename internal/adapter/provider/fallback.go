package provider

import (
	"context"
	"crypto/sha256"
)

// HashEmbedder is the deterministic no-credentials fallback: a vector
// derived from the SHA-256 digest of the text. Useless for semantics,
// but keeps the dense path alive and fully reproducible.
type HashEmbedder struct {
	dim int
}

const DefaultHashDimension = 256

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		digest := sha256.Sum256([]byte(text))
		vec := make([]float32, e.dim)
		for j := 0; j < e.dim; j++ {
			b := digest[j%len(digest)]
			vec[j] = (float32(b) - 128) / 128
		}
		out[i] = vec
	}
	return out, nil
}

func (e *HashEmbedder) Dimension() int    { return e.dim }
func (e *HashEmbedder) ModelName() string { return "hash-fallback" }

// TruncateSummarizer is the no-credentials summary fallback: the input
// cut to a bounded length with a continuation marker.
type TruncateSummarizer struct {
	limit int
}

const DefaultSummaryLimit = 512

func NewTruncateSummarizer(limit int) *TruncateSummarizer {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	return &TruncateSummarizer{limit: limit}
}

func (s *TruncateSummarizer) Summarize(_ context.Context, text string) (string, error) {
	runes := []rune(text)
	if len(runes) <= s.limit {
		return text, nil
	}
	return string(runes[:s.limit]) + "...", nil
}

func (s *TruncateSummarizer) ModelName() string { return "truncate-fallback" }
