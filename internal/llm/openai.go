package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIEmbeddingDimensions is the expected dimension of
	// embeddings from text-embedding-3-small.
	DefaultOpenAIEmbeddingDimensions = 1536
)

// OpenAIProvider implements the Provider interface for OpenAI models.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.APIKey),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete sends a prompt via the Chat Completions API.
// TopK has no OpenAI equivalent and is ignored.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   int(params.MaxOutputTokens),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.NewProviderError(ProviderOpenAI, http.StatusBadGateway, "empty response from model", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// OpenAIEmbedder implements the Embedder interface using OpenAI embeddings.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder creates a new OpenAI embedder.
func NewOpenAIEmbedder(config Config) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	model := openai.EmbeddingModel(config.EmbeddingModel)
	if model == "" {
		model = openai.SmallEmbedding3
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(config.APIKey),
		model:      model,
		dimensions: DefaultOpenAIEmbeddingDimensions,
	}, nil
}

// Embed returns the embedding vector for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.ErrMissingRequiredField
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, domain.NewProviderError(ProviderOpenAI, http.StatusBadGateway, "no embedding data returned", nil)
	}

	embedding := resp.Data[0].Embedding
	if e.dimensions > 0 && len(embedding) != e.dimensions {
		return nil, domain.NewProviderError(ProviderOpenAI, http.StatusBadGateway, "embedding has wrong dimensions", nil)
	}
	return embedding, nil
}

// wrapOpenAIError maps OpenAI SDK failures into the ProviderError family.
func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "request failed"
		}
		return domain.NewProviderError(ProviderOpenAI, apiErr.HTTPStatusCode, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(ProviderOpenAI, http.StatusGatewayTimeout, "request timed out", err)
	}
	return domain.NewProviderError(ProviderOpenAI, http.StatusBadGateway, "request failed", err)
}
