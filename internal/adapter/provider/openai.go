package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Settings configures the OpenAI-compatible provider pair. BaseURL may
// point at any compatible endpoint (LM Studio, Ollama, vLLM).
type Settings struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Dimension      int
	Timeout        time.Duration
}

const defaultTimeout = 30 * time.Second

func newClient(st Settings) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(st.APIKey)}
	if st.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(st.BaseURL))
	}
	return openai.NewClient(opts...)
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client  openai.Client
	model   string
	dim     int
	timeout time.Duration
}

func NewOpenAIEmbedder(st Settings) *OpenAIEmbedder {
	dim := st.Dimension
	if dim <= 0 {
		switch st.EmbeddingModel {
		case "text-embedding-3-large":
			dim = 3072
		default:
			dim = 1536
		}
	}
	timeout := st.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIEmbedder{
		client:  newClient(st),
		model:   st.EmbeddingModel,
		dim:     dim,
		timeout: timeout,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings request: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, data := range resp.Data {
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		out[data.Index] = vec
	}
	return out, nil
}

func (e *OpenAIEmbedder) Dimension() int    { return e.dim }
func (e *OpenAIEmbedder) ModelName() string { return e.model }

// OpenAISummarizer condenses text through the chat completions API.
type OpenAISummarizer struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAISummarizer(st Settings) *OpenAISummarizer {
	timeout := st.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAISummarizer{
		client:  newClient(st),
		model:   st.Model,
		timeout: timeout,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Summarize the provided content in concise form."),
			openai.UserMessage(text),
		},
		MaxTokens: openai.Int(256),
	})
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summarize request: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *OpenAISummarizer) ModelName() string { return s.model }
