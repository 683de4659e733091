package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall/config"
	"recall/internal/adapter/provider"
	"recall/internal/domain"
)

var ctx = context.Background()

// wordEmbedder maps known words onto fixed axes so similarity in tests
// is fully predictable.
type wordEmbedder struct {
	axes map[string]int
	dim  int
}

func newWordEmbedder(words ...string) *wordEmbedder {
	axes := make(map[string]int, len(words))
	for i, w := range words {
		axes[w] = i
	}
	return &wordEmbedder{axes: axes, dim: len(words)}
}

func (e *wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dim)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			if axis, ok := e.axes[strings.Trim(w, ".,!?")]; ok {
				vec[axis]++
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (e *wordEmbedder) Dimension() int    { return e.dim }
func (e *wordEmbedder) ModelName() string { return "word-test" }

// deadEmbedder reports an unusable dimension, which fails dense backend
// construction.
type deadEmbedder struct{}

func (deadEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("unreachable")
}
func (deadEmbedder) Dimension() int    { return 0 }
func (deadEmbedder) ModelName() string { return "dead" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.Provider.APIKeyEnv = "RECALL_TEST_API_KEY"
	return cfg
}

func newMemory(t *testing.T, cfg *config.Config) *Memory {
	t.Helper()
	m, err := New(cfg,
		WithEmbedder(newWordEmbedder("cats", "dogs", "pets", "mat")),
		WithSummarizer(provider.NewTruncateSummarizer(0)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestAddKnowledgeValidation(t *testing.T) {
	m := newMemory(t, testConfig(t))

	err := m.AddKnowledge(ctx, "", "some text", nil)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	err = m.AddKnowledge(ctx, "doc1", "", nil)
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestAddKnowledgeDuplicateLeavesStateIntact(t *testing.T) {
	m := newMemory(t, testConfig(t))

	require.NoError(t, m.AddKnowledge(ctx, "doc1", "dogs and cats are pets", nil))

	before, err := m.Search(ctx, "cats", 10)
	require.NoError(t, err)

	err = m.AddKnowledge(ctx, "doc1", "entirely different text", nil)
	assert.ErrorIs(t, err, domain.ErrDocumentExists)

	after, err := m.Search(ctx, "cats", 10)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	doc, err := m.GetKnowledge("doc1")
	require.NoError(t, err)
	assert.Equal(t, "dogs and cats are pets", doc.Corpus)
}

func TestGetKnowledgeNotFound(t *testing.T) {
	m := newMemory(t, testConfig(t))

	_, err := m.GetKnowledge("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationRoundTrip(t *testing.T) {
	m := newMemory(t, testConfig(t))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, m.AddConversation("s1", "user", "hello", nil, base))
	require.NoError(t, m.AddConversation("s1", "assistant", "hi there", nil, base.Add(time.Second)))
	require.NoError(t, m.AddConversation("s2", "user", "other session", nil, base))

	messages, err := m.GetConversation("s1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].RawContent)
	assert.Equal(t, "hi there", messages[1].RawContent)
	assert.NotEmpty(t, messages[0].ID)
}

func TestAddConversationValidation(t *testing.T) {
	m := newMemory(t, testConfig(t))

	assert.ErrorIs(t, m.AddConversation("", "user", "hello", nil, time.Time{}), domain.ErrMissingField)
	assert.ErrorIs(t, m.AddConversation("s1", "user", "", nil, time.Time{}), domain.ErrMissingField)
}

func TestCreateSummaryTargetValidation(t *testing.T) {
	m := newMemory(t, testConfig(t))

	_, err := m.CreateSummary(ctx, SummaryRequest{})
	assert.ErrorIs(t, err, domain.ErrSummaryTarget)

	_, err = m.CreateSummary(ctx, SummaryRequest{SessionID: "s1", DocID: "d1"})
	assert.ErrorIs(t, err, domain.ErrSummaryTarget)
}

func TestCreateSummaryEmptySession(t *testing.T) {
	m := newMemory(t, testConfig(t))

	_, err := m.CreateSummary(ctx, SummaryRequest{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSummaryFromSession(t *testing.T) {
	m := newMemory(t, testConfig(t))

	require.NoError(t, m.AddConversation("s1", "user", "what are pets", nil, time.Time{}))
	require.NoError(t, m.AddConversation("s1", "assistant", "dogs and cats", nil, time.Time{}))

	summary, err := m.CreateSummary(ctx, SummaryRequest{SessionID: "s1"})
	require.NoError(t, err)
	assert.Contains(t, summary, "user: what are pets")
	assert.Contains(t, summary, "assistant: dogs and cats")
}

func TestCreateSummaryFromDocument(t *testing.T) {
	m := newMemory(t, testConfig(t))

	require.NoError(t, m.AddKnowledge(ctx, "doc1", "dogs and cats are pets", nil))

	summary, err := m.CreateSummary(ctx, SummaryRequest{DocID: "doc1"})
	require.NoError(t, err)
	assert.Equal(t, "dogs and cats are pets", summary)
}

func TestOptimizeNotImplemented(t *testing.T) {
	m := newMemory(t, testConfig(t))

	assert.ErrorIs(t, m.Optimize("full"), domain.ErrNotImplemented)
}

func TestDegradedConstructionServesLexical(t *testing.T) {
	cfg := testConfig(t)
	m, err := New(cfg,
		WithEmbedder(deadEmbedder{}),
		WithSummarizer(provider.NewTruncateSummarizer(0)),
	)
	require.NoError(t, err)
	defer m.Close()

	assert.False(t, m.VectorAvailable())

	require.NoError(t, m.AddKnowledge(ctx, "doc1", "dogs and cats are pets", nil))

	// Hybrid config falls back to lexical-only instead of failing.
	results, err := m.Search(ctx, "cats", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc1", results[0].DocID)
	assert.Nil(t, results[0].ScoreVector)
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retrieve.Alpha = 1.5

	_, err := New(cfg, WithEmbedder(deadEmbedder{}))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
