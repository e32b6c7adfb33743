package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// DefaultGeminiModel is the Gemini model used for clause analysis.
	DefaultGeminiModel = "gemini-1.5-flash"
	// DefaultGeminiEmbeddingModel is the Gemini model used for embeddings.
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

// GeminiProvider implements the Provider interface backed by the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, wrapGeminiError(err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Complete sends a prompt to Gemini and returns the text response.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	model := p.client.GenerativeModel(modelName)
	model.SetTemperature(params.Temperature)
	if params.TopP > 0 {
		model.SetTopP(params.TopP)
	}
	if params.TopK > 0 {
		model.SetTopK(params.TopK)
	}
	if params.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(params.MaxOutputTokens)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapGeminiError(err)
	}

	text := collectGeminiText(resp)
	if text == "" {
		return "", domain.NewProviderError(ProviderGemini, http.StatusBadGateway, "empty response from model", nil)
	}
	return text, nil
}

// GeminiEmbedder implements the Embedder interface backed by the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a new Gemini embedder.
func NewGeminiEmbedder(ctx context.Context, config Config) (*GeminiEmbedder, error) {
	if config.APIKey == "" {
		return nil, domain.ErrMissingCredentials
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, wrapGeminiError(err)
	}

	model := config.EmbeddingModel
	if model == "" {
		model = DefaultGeminiEmbeddingModel
	}

	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed returns the embedding vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, domain.ErrMissingRequiredField
	}

	em := e.client.EmbeddingModel(e.model)
	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, domain.NewProviderError(ProviderGemini, http.StatusBadGateway, "no embedding data returned", nil)
	}
	return resp.Embedding.Values, nil
}

// Close releases the underlying API client.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}

func (p *GeminiProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// wrapGeminiError maps Gemini SDK failures into the ProviderError family.
// A deadline hit is treated the same as the provider's own failure mode.
func wrapGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return domain.NewProviderError(ProviderGemini, gerr.Code, gerr.Message, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError(ProviderGemini, http.StatusGatewayTimeout, "request timed out", err)
	}
	return domain.NewProviderError(ProviderGemini, http.StatusBadGateway, "request failed", err)
}
