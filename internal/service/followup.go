package service

import (
	"context"
	"strings"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/metrics"
	"github.com/clauselens/clauselens/internal/telemetry"
	gocache "github.com/patrickmn/go-cache"
)

const (
	answerCacheTTL     = 10 * time.Minute
	answerCacheCleanup = 15 * time.Minute
)

// FollowupService routes a follow-up question to one of three answering
// strategies: semantic-retrieval-augmented, plain full-context, or the
// legacy single-shot path.
type FollowupService struct {
	provider  llm.Provider
	embedder  llm.Embedder
	indexes   *IndexCache
	assembler *ContentAssembler
	answers   *gocache.Cache
	params    llm.Params
	retrieval RetrieveOptions
}

// NewFollowupService creates a FollowupService sharing the given index
// cache. The embedder may be nil when semantic retrieval is unavailable.
func NewFollowupService(provider llm.Provider, embedder llm.Embedder, indexes *IndexCache, assembler *ContentAssembler) *FollowupService {
	return &FollowupService{
		provider:  provider,
		embedder:  embedder,
		indexes:   indexes,
		assembler: assembler,
		answers:   gocache.New(answerCacheTTL, answerCacheCleanup),
		params:    llm.DefaultParams(),
		retrieval: DefaultRetrieveOptions(),
	}
}

// AnswerFollowup answers a question about a previously analyzed clause.
// The first matching rule of the decision table wins:
//
//  1. semantic retrieval enabled and facets provided: build or reuse the
//     index over (clause, facets), retrieve the top chunks, answer from the
//     retrieved context only, and attach retrieval metrics
//  2. advanced orchestration enabled: answer from the full clause text via
//     the richer prompt template, no retrieval
//  3. otherwise: the legacy single prompt
func (s *FollowupService) AnswerFollowup(ctx context.Context, question, clause string, facets *domain.AnalysisFacets, cfg domain.StrategyConfig) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, domain.NewDomainError(domain.ErrCodeValidation, "question cannot be empty")
	}
	if strings.TrimSpace(clause) == "" {
		return domain.Answer{}, domain.ErrEmptyClause
	}
	if s.provider == nil {
		return domain.Answer{}, domain.ErrMissingCredentials
	}

	ctx, span := telemetry.StartSpan(ctx, "FollowupService.AnswerFollowup", telemetry.SpanAttributes{
		Provider:  s.provider.Name(),
		Operation: "followup",
	})
	defer span.End()

	switch {
	case cfg.EnableSemanticRetrieval && facets != nil && s.embedder != nil:
		return s.answerSemantic(ctx, question, clause, *facets, cfg)
	case cfg.UseAdvancedOrchestration:
		prompt := advancedFollowupPrompt(clause, question)
		if !cfg.EnableAdvancedPrompts {
			prompt = legacyFollowupPrompt(clause, question)
		}
		text, err := s.complete(ctx, "followup_full_context", prompt)
		if err != nil {
			return domain.Answer{}, err
		}
		return domain.Answer{Text: text, Strategy: domain.StrategyFullContext}, nil
	default:
		text, err := s.complete(ctx, "followup_legacy", legacyFollowupPrompt(clause, question))
		if err != nil {
			return domain.Answer{}, err
		}
		return domain.Answer{Text: text, Strategy: domain.StrategyLegacy}, nil
	}
}

func (s *FollowupService) answerSemantic(ctx context.Context, question, clause string, facets domain.AnalysisFacets, cfg domain.StrategyConfig) (domain.Answer, error) {
	fingerprint := domain.Fingerprint(clause, facets)

	cacheKey := fingerprint + "\x00" + question
	if cached, ok := s.answers.Get(cacheKey); ok {
		metrics.AnswerCacheHits.Inc()
		return cached.(domain.Answer), nil
	}

	chunks := s.assembler.Assemble(clause, facets)
	ix, err := s.indexes.GetOrBuild(ctx, fingerprint, chunks, s.embedder)
	if err != nil {
		// Index construction has no fallback: the provider failure
		// propagates so the caller can present a retryable error.
		return domain.Answer{}, err
	}

	result := Retrieve(ctx, question, ix, s.retrieval)

	prompt := semanticFollowupPrompt(result.Summary, question)
	if !cfg.EnableAdvancedPrompts {
		prompt = legacyFollowupPrompt(result.Summary, question)
	}
	text, err := s.complete(ctx, "followup_semantic", prompt)
	if err != nil {
		return domain.Answer{}, err
	}

	answer := domain.Answer{
		Text:     text,
		Strategy: domain.StrategySemantic,
		Metrics: &domain.RetrievalMetrics{
			ChunksUsed:       len(result.Chunks),
			TotalAvailable:   result.TotalAvailable,
			AverageRelevance: result.AverageRelevance,
			Degraded:         result.Degraded,
		},
	}
	s.answers.Set(cacheKey, answer, gocache.DefaultExpiration)
	return answer, nil
}

func (s *FollowupService) complete(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()
	metrics.ModelCalls.WithLabelValues(s.provider.Name(), operation).Inc()

	text, err := s.provider.Complete(ctx, prompt, s.params)
	metrics.ModelCallDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelCallErrors.WithLabelValues(s.provider.Name(), operation).Inc()
		return "", err
	}
	return strings.TrimSpace(text), nil
}
