package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/clauselens/clauselens/internal/domain"
)

// Provider names understood by the factory.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewProvider creates a completion provider from config. The provider name
// defaults to Gemini. Rate limiting is applied when configured.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch normalizeProviderName(config.Provider) {
	case ProviderGemini:
		provider, err = NewGeminiProvider(ctx, config)
	case ProviderOpenAI:
		provider, err = NewOpenAIProvider(config)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration,
			fmt.Sprintf("unknown model provider: %q", config.Provider))
	}
	if err != nil {
		return nil, err
	}

	if config.RequestsPerSecond > 0 {
		provider = NewRateLimitedProvider(provider, config.RequestsPerSecond)
	}
	return provider, nil
}

// NewEmbedder creates an embedding provider from config.
func NewEmbedder(ctx context.Context, config Config) (Embedder, error) {
	var (
		embedder Embedder
		err      error
	)

	switch normalizeProviderName(config.Provider) {
	case ProviderGemini:
		embedder, err = NewGeminiEmbedder(ctx, config)
	case ProviderOpenAI:
		embedder, err = NewOpenAIEmbedder(config)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration,
			fmt.Sprintf("unknown embedding provider: %q", config.Provider))
	}
	if err != nil {
		return nil, err
	}

	if config.RequestsPerSecond > 0 {
		embedder = NewRateLimitedEmbedder(embedder, config.RequestsPerSecond)
	}
	return embedder, nil
}

func normalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderGemini
	}
	return name
}
