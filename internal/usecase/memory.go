package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"recall/config"
	"recall/internal/adapter/analyzer"
	"recall/internal/adapter/chunker"
	"recall/internal/adapter/index"
	"recall/internal/adapter/provider"
	"recall/internal/adapter/store"
	"recall/internal/domain"
	"recall/internal/port"
)

// Memory is the public facade: ingestion, conversation logging, hybrid
// search and summarization over one canonical store and two retrieval
// backends. All operations are synchronous and blocking; Memory holds
// no mutable state beyond its configuration and adapter handles.
type Memory struct {
	cfg *config.Config
	log zerolog.Logger

	repo       port.Repository
	indexStore port.IndexStore
	chunker    port.Chunker
	lexical    port.Index
	vector     port.Index
	summarizer port.Summarizer

	// vectorAvailable is decided once at construction. Transient search
	// failures never flip it back.
	vectorAvailable bool
}

// Option overrides a constructor-built dependency, mainly for tests and
// embedders other than the OpenAI-compatible default.
type Option func(*options)

type options struct {
	logger     *zerolog.Logger
	repo       port.Repository
	indexStore port.IndexStore
	chunker    port.Chunker
	embedder   port.Embedder
	summarizer port.Summarizer
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.logger = &log }
}

func WithRepository(repo port.Repository) Option {
	return func(o *options) { o.repo = repo }
}

func WithIndexStore(st port.IndexStore) Option {
	return func(o *options) { o.indexStore = st }
}

func WithChunker(c port.Chunker) Option {
	return func(o *options) { o.chunker = c }
}

func WithEmbedder(e port.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

func WithSummarizer(s port.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

// New builds a Memory from configuration. A failing dense backend never
// fails construction: it is logged once and the instance serves
// lexical-only for its lifetime.
func New(cfg *config.Config, opts ...Option) (*Memory, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := zerolog.Nop()
	if o.logger != nil {
		log = *o.logger
	}

	m := &Memory{cfg: cfg, log: log}

	repo := o.repo
	if repo == nil {
		var err error
		repo, err = store.NewSQLiteRepository(config.DBPath(cfg.Storage.Dir))
		if err != nil {
			return nil, fmt.Errorf("opening canonical store: %w", err)
		}
	}
	m.repo = repo

	indexStore := o.indexStore
	if indexStore == nil {
		bolt, err := store.NewBoltIndexStore(config.IndexPath(cfg.Storage.Dir))
		if err != nil {
			log.Warn().Err(err).Msg("index store unavailable, starting with an empty in-memory index")
			indexStore = store.NewMemoryIndexStore()
		} else {
			indexStore = bolt
		}
	}
	m.indexStore = indexStore

	m.chunker = o.chunker
	if m.chunker == nil {
		m.chunker = chunker.NewWindow(cfg.Index.ChunkSize, cfg.Index.Overlap)
	}

	tokenizer := analyzer.NewTokenizer(cfg.Index.Stopwords)
	m.lexical = index.NewLexical(indexStore, tokenizer, cfg.Index.K1, cfg.Index.B)

	apiKey := os.Getenv(cfg.Provider.APIKeyEnv)
	settings := provider.Settings{
		APIKey:         apiKey,
		BaseURL:        cfg.Provider.BaseURL,
		Model:          cfg.Provider.Model,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		Dimension:      cfg.Provider.Dimension,
		Timeout:        time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}

	embedder := o.embedder
	if embedder == nil {
		if apiKey != "" {
			embedder = provider.NewOpenAIEmbedder(settings)
		} else {
			log.Warn().Msg("no API key configured, using deterministic hash embeddings")
			embedder = provider.NewHashEmbedder(cfg.Provider.Dimension)
		}
	}

	vec, err := index.NewVector(indexStore, embedder)
	if err != nil {
		log.Warn().Err(err).Msg("dense backend unavailable, serving lexical-only")
		m.vectorAvailable = false
	} else {
		m.vector = vec
		m.vectorAvailable = true
	}

	m.summarizer = o.summarizer
	if m.summarizer == nil {
		if apiKey != "" {
			m.summarizer = provider.NewOpenAISummarizer(settings)
		} else {
			m.summarizer = provider.NewTruncateSummarizer(provider.DefaultSummaryLimit)
		}
	}

	if cfg.Retrieve.Rerank == config.RerankLLM {
		log.Warn().Msg("llm rerank is not implemented, falling back to normalized-score fusion")
	}

	return m, nil
}

// VectorAvailable reports whether the dense backend survived
// construction.
func (m *Memory) VectorAvailable() bool {
	return m.vectorAvailable
}

// AddKnowledge ingests a document: chunk, persist atomically, then
// update every enabled index with the same chunk set.
func (m *Memory) AddKnowledge(ctx context.Context, docID, text string, metadata map[string]string) error {
	if docID == "" {
		return fmt.Errorf("%w: doc_id", domain.ErrMissingField)
	}
	if text == "" {
		return fmt.Errorf("%w: text", domain.ErrMissingField)
	}

	exists, err := m.repo.DocumentExists(docID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrDocumentExists, docID)
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	now := time.Now().UTC()
	doc := domain.Document{
		ID:        docID,
		Corpus:    text,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	pieces := m.chunker.Split(text)
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:    fmt.Sprintf("%s:%d", docID, i),
			DocID: docID,
			Seq:   i,
			Text:  piece,
		}
	}

	if err := m.repo.SaveDocument(doc, chunks); err != nil {
		return err
	}

	if err := m.lexical.Add(ctx, chunks); err != nil {
		return fmt.Errorf("updating lexical index: %w", err)
	}
	if m.vectorAvailable {
		if err := m.vector.Add(ctx, chunks); err != nil {
			return fmt.Errorf("updating dense index: %w", err)
		}
	}

	m.log.Debug().Str("doc_id", docID).Int("chunks", len(chunks)).Msg("document ingested")
	return nil
}

// AddConversation appends one conversation turn to a session. A zero ts
// means now.
func (m *Memory) AddConversation(sessionID, role, content string, metadata map[string]string, ts time.Time) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session_id", domain.ErrMissingField)
	}
	if content == "" {
		return fmt.Errorf("%w: content", domain.ErrMissingField)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return m.repo.SaveMessage(domain.Message{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Role:       role,
		RawContent: content,
		Metadata:   metadata,
		CreatedAt:  ts,
	})
}

// GetKnowledge returns an ingested document.
func (m *Memory) GetKnowledge(docID string) (domain.Document, error) {
	if docID == "" {
		return domain.Document{}, fmt.Errorf("%w: doc_id", domain.ErrMissingField)
	}
	return m.repo.GetDocument(docID)
}

// GetConversation returns a session's messages in insertion order.
func (m *Memory) GetConversation(sessionID string) ([]domain.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id", domain.ErrMissingField)
	}
	return m.repo.GetSessionMessages(sessionID)
}

// SummaryRequest names exactly one summarization target.
type SummaryRequest struct {
	SessionID string
	DocID     string
}

// CreateSummary condenses a session transcript or a document corpus.
func (m *Memory) CreateSummary(ctx context.Context, req SummaryRequest) (string, error) {
	if (req.SessionID == "") == (req.DocID == "") {
		return "", domain.ErrSummaryTarget
	}

	var text string
	if req.SessionID != "" {
		messages, err := m.repo.GetSessionMessages(req.SessionID)
		if err != nil {
			return "", err
		}
		if len(messages) == 0 {
			return "", fmt.Errorf("%w: session %s", domain.ErrNotFound, req.SessionID)
		}
		lines := make([]string, len(messages))
		for i, msg := range messages {
			lines[i] = msg.Role + ": " + msg.RawContent
		}
		text = strings.Join(lines, "\n")
	} else {
		doc, err := m.repo.GetDocument(req.DocID)
		if err != nil {
			return "", err
		}
		text = doc.Corpus
	}

	return m.summarizer.Summarize(ctx, text)
}

// Optimize is a documented extension point for the retrieval tuning
// workflow. It has no implementation.
func (m *Memory) Optimize(level string) error {
	return fmt.Errorf("%w: optimize level %q", domain.ErrNotImplemented, level)
}

// Close releases the underlying stores.
func (m *Memory) Close() error {
	var firstErr error
	if err := m.indexStore.Close(); err != nil {
		firstErr = err
	}
	if err := m.repo.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
