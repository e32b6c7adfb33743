package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/clauselens/clauselens/internal/domain"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider answers prompts by substring routing, the way the real
// facet prompts differ from each other.
type stubProvider struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	failOn    string
	calls     atomic.Int64
	prompts   []string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		responses: map[string]string{
			"Rewrite the following clause": "You agree to pay for everything.",
			"contract risk reviewer":       `[{"term":"indemnify","severity":"high","explanation":"shifts liability"}]`,
			"legal research assistant":     `[{"title":"UCC 2-719","url":"https://law.example.com/ucc/2-719","relevance":"limits remedies"}]`,
		},
	}
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, prompt string, params llm.Params) (string, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if p.err != nil && (p.failOn == "" || strings.Contains(prompt, p.failOn)) {
		return "", p.err
	}
	for marker, response := range p.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "default answer", nil
}

func (p *stubProvider) promptLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// recordingSink captures enqueued analyses.
type recordingSink struct {
	mu      sync.Mutex
	entries []domain.Analysis
}

func (s *recordingSink) Enqueue(clause string, facets domain.AnalysisFacets) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, domain.Analysis{Clause: clause, Facets: facets})
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestAnalysisService_Analyze_AllFacets(t *testing.T) {
	provider := newStubProvider()
	sink := &recordingSink{}
	svc := NewAnalysisService(provider, sink)

	facets, err := svc.Analyze(context.Background(), "Tenant shall indemnify landlord.")
	require.NoError(t, err)

	assert.Equal(t, "You agree to pay for everything.", facets.Explanation)
	require.Len(t, facets.RiskyTerms, 1)
	assert.Equal(t, "indemnify", facets.RiskyTerms[0].Term)
	require.Len(t, facets.LegalReferences, 1)
	assert.Equal(t, "UCC 2-719", facets.LegalReferences[0].Title)

	assert.Equal(t, int64(3), provider.calls.Load(), "one call per facet")
	assert.Equal(t, 1, sink.count())
}

func TestAnalysisService_Analyze_EmptyClause(t *testing.T) {
	svc := NewAnalysisService(newStubProvider(), nil)

	_, err := svc.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyClause)
}

func TestAnalysisService_Analyze_NoProvider(t *testing.T) {
	svc := NewAnalysisService(nil, nil)

	_, err := svc.Analyze(context.Background(), "some clause")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestAnalysisService_Analyze_FacetFailurePropagatesAfterAllSettle(t *testing.T) {
	provider := newStubProvider()
	provider.err = domain.NewProviderError("stub", 502, "backend down", nil)
	provider.failOn = "contract risk reviewer"
	sink := &recordingSink{}
	svc := NewAnalysisService(provider, sink)

	_, err := svc.Analyze(context.Background(), "clause text")
	require.Error(t, err)
	assert.True(t, domain.IsProviderError(err))

	// The other two facet requests still ran.
	assert.Equal(t, int64(3), provider.calls.Load())
	assert.Equal(t, 0, sink.count(), "failed analysis must not be persisted")
}

func TestAnalysisService_Analyze_MalformedFacetDegrades(t *testing.T) {
	provider := newStubProvider()
	provider.responses["contract risk reviewer"] = "sorry, no JSON from me today"
	svc := NewAnalysisService(provider, nil)

	facets, err := svc.Analyze(context.Background(), "clause text")
	require.NoError(t, err)
	assert.Empty(t, facets.RiskyTerms)
	assert.NotEmpty(t, facets.Explanation)
	require.Len(t, facets.LegalReferences, 1)
}

func TestAnalysisService_AnalyzeBatch_CeilingEnforcedBeforeAnyCall(t *testing.T) {
	provider := newStubProvider()
	svc := NewAnalysisService(provider, nil)

	clauses := make([]string, 11)
	for i := range clauses {
		clauses[i] = "clause"
	}

	_, err := svc.AnalyzeBatch(context.Background(), clauses, BatchOptions{})
	require.ErrorIs(t, err, domain.ErrBatchTooLarge)
	assert.Equal(t, int64(0), provider.calls.Load(), "no model call before the ceiling check")
}

func TestAnalysisService_AnalyzeBatch_PerItemOutcomes(t *testing.T) {
	provider := newStubProvider()
	svc := NewAnalysisService(provider, nil)

	items, err := svc.AnalyzeBatch(context.Background(), []string{"first clause", "", "third clause"}, BatchOptions{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	assert.Equal(t, "first clause", items[0].Clause)
	assert.NotEmpty(t, items[0].Facets.Explanation)

	assert.ErrorIs(t, items[1].Err, domain.ErrEmptyClause)

	assert.NoError(t, items[2].Err)
}

func TestAnalysisService_AnalyzeBatch_Empty(t *testing.T) {
	svc := NewAnalysisService(newStubProvider(), nil)

	items, err := svc.AnalyzeBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalysisService_ProcessBatch_Gating(t *testing.T) {
	provider := newStubProvider()
	svc := NewAnalysisService(provider, nil)

	cfg := domain.DefaultStrategyConfig()
	cfg.UseAdvancedOrchestration = false
	_, err := svc.ProcessBatch(context.Background(), []string{"clause"}, cfg)
	assert.ErrorIs(t, err, domain.ErrOrchestrationOff)

	cfg = domain.DefaultStrategyConfig()
	cfg.EnableBatchProcessing = false
	_, err = svc.ProcessBatch(context.Background(), []string{"clause"}, cfg)
	assert.ErrorIs(t, err, domain.ErrBatchProcessingOff)

	assert.Equal(t, int64(0), provider.calls.Load(), "gates run before any model call")

	items, err := svc.ProcessBatch(context.Background(), []string{"clause"}, domain.DefaultStrategyConfig())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAnalysisService_Analyze_PromptsCarryClause(t *testing.T) {
	provider := newStubProvider()
	svc := NewAnalysisService(provider, nil)

	clause := "a very specific clause marker 42"
	_, err := svc.Analyze(context.Background(), clause)
	require.NoError(t, err)

	for _, prompt := range provider.promptLog() {
		assert.Contains(t, prompt, clause)
	}
}
