package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token-bucket limiter so
// outbound model calls stay under a configured request rate.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps provider with a limiter of rps requests per second.
func NewRateLimitedProvider(provider Provider, rps float64) *RateLimitedProvider {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   provider,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name returns the wrapped provider's name.
func (p *RateLimitedProvider) Name() string {
	return p.inner.Name()
}

// Complete waits for a limiter token, then delegates.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt, params)
}

// RateLimitedEmbedder wraps an Embedder with a token-bucket limiter.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder wraps embedder with a limiter of rps requests per second.
func NewRateLimitedEmbedder(embedder Embedder, rps float64) *RateLimitedEmbedder {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{
		inner:   embedder,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Embed waits for a limiter token, then delegates.
func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}
