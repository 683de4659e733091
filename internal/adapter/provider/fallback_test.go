package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	emb := NewHashEmbedder(256)

	first, err := emb.Embed(context.Background(), []string{"the cat sat"})
	require.NoError(t, err)
	second, err := emb.Embed(context.Background(), []string{"the cat sat"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHashEmbedderShape(t *testing.T) {
	emb := NewHashEmbedder(64)

	vecs, err := emb.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, vec := range vecs {
		assert.Len(t, vec, 64)
		for _, v := range vec {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestTruncateSummarizerShortText(t *testing.T) {
	s := NewTruncateSummarizer(512)

	out, err := s.Summarize(context.Background(), "short text")
	require.NoError(t, err)
	assert.Equal(t, "short text", out)
}

func TestTruncateSummarizerLongText(t *testing.T) {
	s := NewTruncateSummarizer(512)

	long := strings.Repeat("x", 600)
	out, err := s.Summarize(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 512)+"...", out)
}
