package llm

import "context"

// Params carries the generation parameters for a single completion request.
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultParams returns the generation parameters used for facet analysis.
func DefaultParams() Params {
	return Params{
		Temperature:     0.3,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// Provider defines the interface for text-completion model backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Embedder defines the interface for embedding model backends.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds model and embedding provider configuration.
type Config struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Model name (provider-specific; empty selects the provider default)
	Model string

	// EmbeddingModel name (provider-specific)
	EmbeddingModel string

	// APIKey for the selected provider
	APIKey string

	// Timeout for API requests, in seconds
	Timeout int

	// RequestsPerSecond caps outbound calls when > 0
	RequestsPerSecond float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Timeout:  60,
	}
}
