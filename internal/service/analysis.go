package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/metrics"
	"github.com/clauselens/clauselens/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBatch is the ceiling on clauses per batch request.
const DefaultMaxBatch = 10

// AnalysisSink receives successful analyses for best-effort persistence.
// Sink failures never surface as analysis failures.
type AnalysisSink interface {
	Enqueue(clause string, facets domain.AnalysisFacets)
}

// AnalysisService runs the three-facet clause analysis against a model
// provider and fans the same analysis out over batches of clauses.
type AnalysisService struct {
	provider llm.Provider
	sink     AnalysisSink
	params   llm.Params
}

// NewAnalysisService creates an AnalysisService. The sink may be nil when
// no persistence collaborator is configured.
func NewAnalysisService(provider llm.Provider, sink AnalysisSink) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		sink:     sink,
		params:   llm.DefaultParams(),
	}
}

// Analyze issues the three facet requests concurrently and assembles the
// combined result once all three settle. Malformed or invalid facet output
// degrades to an empty value; a provider failure on any facet propagates
// after the remaining facets finish.
func (s *AnalysisService) Analyze(ctx context.Context, clause string) (domain.AnalysisFacets, error) {
	if strings.TrimSpace(clause) == "" {
		return domain.AnalysisFacets{}, domain.ErrEmptyClause
	}
	if s.provider == nil {
		return domain.AnalysisFacets{}, domain.ErrMissingCredentials
	}

	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.Analyze", telemetry.SpanAttributes{
		Provider:  s.provider.Name(),
		Operation: "analyze",
	})
	defer span.End()

	var (
		wg       sync.WaitGroup
		facets   domain.AnalysisFacets
		errs     [3]error
		riskyRaw string
		refsRaw  string
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		text, err := s.complete(ctx, "simplify", simplifyPrompt(clause))
		facets.Explanation, errs[0] = strings.TrimSpace(text), err
	}()
	go func() {
		defer wg.Done()
		riskyRaw, errs[1] = s.complete(ctx, "risky_terms", riskyTermsPrompt(clause))
	}()
	go func() {
		defer wg.Done()
		refsRaw, errs[2] = s.complete(ctx, "legal_references", legalReferencesPrompt(clause))
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return domain.AnalysisFacets{}, err
		}
	}

	facets.RiskyTerms = decodeRiskyTerms(riskyRaw)
	facets.LegalReferences = decodeLegalReferences(refsRaw)

	if s.sink != nil {
		s.sink.Enqueue(clause, facets)
	}
	return facets, nil
}

// BatchOptions tunes batch analysis fan-out.
type BatchOptions struct {
	// MaxBatch caps how many clauses one batch may carry; defaults to 10.
	MaxBatch int
	// Concurrency bounds in-flight clause analyses; 0 means unbounded up
	// to the batch ceiling.
	Concurrency int
}

// BatchItem is the per-clause outcome of a batch analysis.
type BatchItem struct {
	Clause string
	Facets domain.AnalysisFacets
	Err    error
}

// AnalyzeBatch fans Analyze out over the clauses concurrently. The batch
// ceiling is enforced before any model call is issued; individual clause
// failures are surfaced per item.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, clauses []string, opts BatchOptions) ([]BatchItem, error) {
	if s.provider == nil {
		return nil, domain.ErrMissingCredentials
	}

	maxBatch := opts.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	if len(clauses) > maxBatch {
		return nil, domain.ErrBatchTooLarge
	}
	if len(clauses) == 0 {
		return []BatchItem{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "AnalysisService.AnalyzeBatch", telemetry.SpanAttributes{
		Provider:  s.provider.Name(),
		Operation: "analyze_batch",
	})
	defer span.End()

	items := make([]BatchItem, len(clauses))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, clause := range clauses {
		g.Go(func() error {
			facets, err := s.Analyze(gctx, clause)
			items[i] = BatchItem{Clause: clause, Facets: facets, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

// ProcessBatch gates batch analysis on the strategy toggles: both advanced
// orchestration and batch processing must be enabled, otherwise it fails
// with a configuration error naming the missing toggle before any model
// call is attempted.
func (s *AnalysisService) ProcessBatch(ctx context.Context, clauses []string, cfg domain.StrategyConfig) ([]BatchItem, error) {
	if !cfg.UseAdvancedOrchestration {
		return nil, domain.ErrOrchestrationOff
	}
	if !cfg.EnableBatchProcessing {
		return nil, domain.ErrBatchProcessingOff
	}
	return s.AnalyzeBatch(ctx, clauses, BatchOptions{})
}

func (s *AnalysisService) complete(ctx context.Context, operation, prompt string) (string, error) {
	start := time.Now()
	metrics.ModelCalls.WithLabelValues(s.provider.Name(), operation).Inc()

	text, err := s.provider.Complete(ctx, prompt, s.params)
	metrics.ModelCallDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelCallErrors.WithLabelValues(s.provider.Name(), operation).Inc()
		return "", err
	}
	return text, nil
}
